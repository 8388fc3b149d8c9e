// Package syntax parses TypeScript, TSX and JavaScript modules into a mutable
// concrete syntax tree and prints the tree back to source.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

var (
	// ErrSyntax marks a source file the grammar could not parse cleanly.
	ErrSyntax = errors.New("syntax error")

	errPoolType   = errors.New("parser pool returned unexpected type")
	errNoRootNode = errors.New("no root node")
)

// fieldNames are probed on every inner node to recover child field names.
var fieldNames = []string{
	"name", "value", "body", "parameters", "parameter", "pattern",
	"left", "right", "function", "arguments", "object", "property",
	"declaration", "source", "key", "kind", "type", "return_type",
	"alias", "label", "open_tag", "close_tag", "constructor",
	"type_arguments", "type_parameters", "condition", "consequence",
	"alternative", "initializer", "increment", "argument", "index",
	"module", "decorator", "handler", "finalizer", "operator",
}

// Tree is a parsed module.
type Tree struct {
	Path     string
	Language Language
	Source   []byte
	Root     *Node

	appended []string
}

// Append adds a synthetic statement at the end of the module.
func (t *Tree) Append(stmt string) {
	t.appended = append(t.appended, stmt)
}

// FirstError returns the first ERROR node in source order, or nil.
func (t *Tree) FirstError() *Node {
	var found *Node

	t.Root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}

		if n.Type == "ERROR" {
			found = n

			return false
		}

		return true
	})

	return found
}

// Parser turns source bytes into trees. It is safe for concurrent use; the
// underlying tree-sitter parsers are pooled per language.
type Parser struct {
	pools sync.Map
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) pool(lang Language) (*sync.Pool, error) {
	if cached, ok := p.pools.Load(lang); ok {
		pool, castOK := cached.(*sync.Pool)
		if castOK {
			return pool, nil
		}
	}

	sl, err := grammar(lang)
	if err != nil {
		return nil, err
	}

	pool := &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(sl)

			return tsParser
		},
	}

	actual, _ := p.pools.LoadOrStore(lang, pool)

	return actual.(*sync.Pool), nil //nolint:forcetypeassert // only *sync.Pool is stored
}

// Parse parses content with the grammar detected from path.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*Tree, error) {
	lang, err := DetectLanguage(path, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p.ParseLanguage(ctx, path, lang, content)
}

// ParseLanguage parses content with an explicit grammar.
func (p *Parser) ParseLanguage(ctx context.Context, path string, lang Language, content []byte) (*Tree, error) {
	pool, err := p.pool(lang)
	if err != nil {
		return nil, err
	}

	tsParser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer pool.Put(tsParser)

	tsTree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	tree := &Tree{Path: path, Language: lang, Source: content}
	tree.Root = tree.convert(root, nil, "")
	// The root spans the whole file so leading and trailing trivia survive printing.
	tree.Root.Start, tree.Root.End = 0, len(content)

	return tree, nil
}

func (t *Tree) convert(sn sitter.Node, parent *Node, field string) *Node {
	start := sn.StartPoint()

	n := &Node{
		tree:   t,
		Parent: parent,
		Type:   sn.Type(),
		Field:  field,
		Start:  int(sn.StartByte()),
		End:    int(sn.EndByte()),
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
		Named:  sn.IsNamed(),
	}

	count := sn.ChildCount()
	if count == 0 {
		return n
	}

	fields := childFields(sn)
	n.Children = make([]*Node, 0, count)

	for idx := range count {
		child := sn.Child(idx)
		if child.IsNull() {
			continue
		}

		key := spanKey{start: child.StartByte(), end: child.EndByte(), typ: child.Type()}
		n.Children = append(n.Children, t.convert(child, n, fields[key]))
	}

	return n
}

type spanKey struct {
	start, end uint
	typ        string
}

// childFields maps each field-bearing child of sn to its field name. Only the
// first child of a repeated field is reported by tree-sitter, so the
// remaining ones keep an empty field.
func childFields(sn sitter.Node) map[spanKey]string {
	fields := make(map[spanKey]string)

	for _, name := range fieldNames {
		child := sn.ChildByFieldName(name)
		if child.IsNull() {
			continue
		}

		key := spanKey{start: child.StartByte(), end: child.EndByte(), typ: child.Type()}
		if _, seen := fields[key]; !seen {
			fields[key] = name
		}
	}

	return fields
}
