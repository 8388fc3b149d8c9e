package transform

import (
	"github.com/FrBosquet/papacore/pkg/scope"
)

// rewriteGlobals turns unbound references to vocabulary names into member
// accesses on the host namespace. Bindings created by imports that are about
// to be dropped (framework packages, type-only imports) do not shadow.
func (t *Transformer) rewriteGlobals(a *scope.Analysis) int {
	rewritten := 0

	for _, ref := range a.References {
		if inTypePosition(ref) {
			continue
		}

		name := ref.Node.Text()
		if !t.vocabulary.Has(name) || t.shadows(ref.Binding) {
			continue
		}

		if ref.Node.Ancestor("export_clause") != nil {
			continue
		}

		switch ref.Node.Type {
		case "identifier":
			ref.Node.Replace(t.member(name))
		case "shorthand_property_identifier":
			ref.Node.Replace(name + ": " + t.member(name))
		default:
			continue
		}

		rewritten++
	}

	return rewritten
}

func (t *Transformer) shadows(b *scope.Binding) bool {
	if b == nil {
		return false
	}

	if b.Import == nil {
		return true
	}

	return !b.Import.TypeOnly && !t.framework.Has(b.Import.Source)
}

func (t *Transformer) member(name string) string {
	return t.namespace + "." + name
}
