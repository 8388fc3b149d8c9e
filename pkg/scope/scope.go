// Package scope builds lexical scopes, bindings and reference lists over a
// syntax tree. Every reference records whether it sits in type position.
package scope

import "github.com/FrBosquet/papacore/pkg/syntax"

// Kind classifies how a binding was declared.
type Kind int

// Binding kinds.
const (
	KindImport Kind = iota
	KindVar
	KindLet
	KindConst
	KindFunction
	KindClass
	KindParam
	KindCatch
	KindEnum
	KindNamespace
	KindType
)

var kindNames = [...]string{
	KindImport:    "import",
	KindVar:       "var",
	KindLet:       "let",
	KindConst:     "const",
	KindFunction:  "function",
	KindClass:     "class",
	KindParam:     "param",
	KindCatch:     "catch",
	KindEnum:      "enum",
	KindNamespace: "namespace",
	KindType:      "type",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// ImportKind is the shape of an import specifier.
type ImportKind int

// Import specifier shapes.
const (
	ImportDefault ImportKind = iota
	ImportNamed
	ImportNamespace
)

// ImportInfo describes the import specifier that introduced a binding.
type ImportInfo struct {
	Statement *syntax.Node
	Specifier *syntax.Node
	Kind      ImportKind
	// Imported is the exported name on the source module; "default" for
	// default specifiers and "*" for namespaces.
	Imported string
	Source   string
	// TypeOnly is set for `import type` statements and `type` specifiers.
	TypeOnly bool
}

// Binding is a declared name.
type Binding struct {
	Name       string
	Kind       Kind
	Node       *syntax.Node
	Scope      *Scope
	Import     *ImportInfo
	References []*Reference
}

// Reference is a use site of a name.
type Reference struct {
	Node         *syntax.Node
	Scope        *Scope
	TypePosition bool
	Binding      *Binding
}

// Scope is a lexical scope. Values and types live in separate namespaces;
// imports, classes, enums and namespaces are entered in both.
type Scope struct {
	Node     *syntax.Node
	Parent   *Scope
	Function bool
	Children []*Scope

	values map[string]*Binding
	types  map[string]*Binding
}

func newScope(node *syntax.Node, parent *Scope, function bool) *Scope {
	s := &Scope{
		Node:     node,
		Parent:   parent,
		Function: function,
		values:   make(map[string]*Binding),
		types:    make(map[string]*Binding),
	}

	if parent != nil {
		parent.Children = append(parent.Children, s)
	}

	return s
}

// Own returns the value binding declared directly in s.
func (s *Scope) Own(name string) *Binding {
	return s.values[name]
}

// Lookup resolves a value name through the scope chain.
func (s *Scope) Lookup(name string) *Binding {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.values[name]; ok {
			return b
		}
	}

	return nil
}

// LookupType resolves a type name through the scope chain.
func (s *Scope) LookupType(name string) *Binding {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.types[name]; ok {
			return b
		}
	}

	return nil
}

func (s *Scope) functionScope() *Scope {
	cur := s
	for !cur.Function && cur.Parent != nil {
		cur = cur.Parent
	}

	return cur
}

// Analysis is the result of analyzing one module.
type Analysis struct {
	Module     *Scope
	References []*Reference
	// Imports lists import bindings in source order.
	Imports []*Binding

	decls map[*syntax.Node]*Binding
}

// BindingOf returns the binding declared by the given identifier node.
func (a *Analysis) BindingOf(ident *syntax.Node) *Binding {
	return a.decls[ident]
}

// ImportsOf returns the bindings introduced by one import statement.
func (a *Analysis) ImportsOf(stmt *syntax.Node) []*Binding {
	var out []*Binding

	for _, b := range a.Imports {
		if b.Import.Statement == stmt {
			out = append(out, b)
		}
	}

	return out
}
