package transform

import (
	"github.com/FrBosquet/papacore/pkg/scope"
	"github.com/FrBosquet/papacore/pkg/syntax"
)

// Classification tells whether an import is needed at runtime.
type Classification int

// Classifications.
const (
	TypeOnly Classification = iota
	Value
)

func (c Classification) String() string {
	if c == Value {
		return "value"
	}

	return "type-only"
}

// typeParents are the immediate parents that make a reference type-level.
var typeParents = map[string]bool{
	"nested_type_identifier": true,
	"type_annotation":        true,
	"type_arguments":         true,
	"generic_type":           true,
	"type_query":             true,
}

// Classify decides whether b is used as a runtime value. One value use
// anywhere is enough; unbound or unreferenced bindings are TypeOnly.
func Classify(b *scope.Binding) Classification {
	if b == nil {
		return TypeOnly
	}

	if b.Import != nil && b.Import.TypeOnly {
		return TypeOnly
	}

	for _, ref := range b.References {
		if !inTypePosition(ref) {
			return Value
		}
	}

	return TypeOnly
}

func inTypePosition(ref *scope.Reference) bool {
	if ref.TypePosition {
		return true
	}

	return isTypeNode(ref.Node)
}

func isTypeNode(n *syntax.Node) bool {
	if n.Type == "type_identifier" {
		return true
	}

	return n.Parent != nil && typeParents[n.Parent.Type]
}
