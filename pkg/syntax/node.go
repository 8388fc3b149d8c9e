package syntax

import (
	"strconv"
	"strings"
)

// Node is a Go-owned copy of a tree-sitter node. Both named nodes and
// anonymous tokens are kept so the printer can reproduce the source exactly.
type Node struct {
	tree     *Tree
	Parent   *Node
	Type     string
	Field    string
	Children []*Node

	Start  int
	End    int
	Line   int
	Column int

	Named bool

	removed     bool
	replaced    bool
	replacement string
	suffix      string
}

// Text returns the original source text covered by the node.
func (n *Node) Text() string {
	return string(n.tree.Source[n.Start:n.End])
}

// StringValue returns the literal value of a string node.
func (n *Node) StringValue() string {
	text := n.Text()
	if len(text) < 2 {
		return text
	}

	body := text[1 : len(text)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	if v, err := strconv.Unquote(`"` + strings.ReplaceAll(body, `"`, `\"`) + `"`); err == nil {
		return v
	}

	return body
}

// Tree returns the tree owning the node.
func (n *Node) Tree() *Tree {
	return n.tree
}

// ChildByField returns the first child carrying the given field name.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}

	return nil
}

// ChildrenByField returns every child carrying the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node

	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}

	return out
}

// NamedChildren returns the named children in source order.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))

	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}

	return out
}

// FirstNamedChild returns the first named child or nil.
func (n *Node) FirstNamedChild() *Node {
	for _, c := range n.Children {
		if c.Named {
			return c
		}
	}

	return nil
}

// ChildOfType returns the first direct child with the given type.
func (n *Node) ChildOfType(typ string) *Node {
	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}

	return nil
}

// HasToken reports whether an anonymous token child with the given text exists.
func (n *Node) HasToken(tok string) bool {
	for _, c := range n.Children {
		if !c.Named && c.Type == tok {
			return true
		}
	}

	return false
}

// Token returns the anonymous child token with the given text, or nil.
func (n *Node) Token(tok string) *Node {
	for _, c := range n.Children {
		if !c.Named && c.Type == tok {
			return c
		}
	}

	return nil
}

// Ancestor returns the closest ancestor whose type is one of types.
func (n *Node) Ancestor(types ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, t := range types {
			if p.Type == t {
				return p
			}
		}
	}

	return nil
}

// Walk visits the subtree depth first. Returning false from fn skips the
// children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}

	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Replace substitutes the printed form of the node with text.
func (n *Node) Replace(text string) {
	n.replaced = true
	n.replacement = text
}

// Remove drops the node from the printed output.
func (n *Node) Remove() {
	n.removed = true
}

// SetSuffix appends text right after the node in the printed output.
func (n *Node) SetSuffix(text string) {
	n.suffix = text
}

// Removed reports whether the node or one of its ancestors was removed.
func (n *Node) Removed() bool {
	for p := n; p != nil; p = p.Parent {
		if p.removed {
			return true
		}
	}

	return false
}

// Replaced reports whether the node carries a replacement.
func (n *Node) Replaced() bool {
	return n.replaced
}

// String renders a compact s-expression, used in tests and debug logs.
func (n *Node) String() string {
	var sb strings.Builder

	n.sexp(&sb)

	return sb.String()
}

func (n *Node) sexp(sb *strings.Builder) {
	if !n.Named {
		return
	}

	sb.WriteByte('(')

	if n.Field != "" {
		sb.WriteString(n.Field)
		sb.WriteString(": ")
	}

	sb.WriteString(n.Type)

	for _, c := range n.Children {
		if !c.Named {
			continue
		}

		sb.WriteByte(' ')
		c.sexp(sb)
	}

	sb.WriteByte(')')
}
