package transform

import (
	"strconv"
	"strings"

	"github.com/FrBosquet/papacore/pkg/scope"
	"github.com/FrBosquet/papacore/pkg/syntax"
)

// rewriteImports replaces every import statement with an awaited load or
// removes it. It returns the module-load strings that were emitted.
func (t *Transformer) rewriteImports(tree *syntax.Tree, a *scope.Analysis) ([]string, error) {
	var loaded []string

	for _, stmt := range tree.Root.Children {
		if stmt.Type != "import_statement" {
			continue
		}

		source, err := t.rewriteImport(tree, a, stmt)
		if err != nil {
			return nil, err
		}

		if source != "" {
			loaded = append(loaded, source)
		}
	}

	return loaded, nil
}

func (t *Transformer) rewriteImport(tree *syntax.Tree, a *scope.Analysis, stmt *syntax.Node) (string, error) {
	if stmt.HasToken("type") || stmt.HasToken("typeof") {
		stmt.Remove()

		return "", nil
	}

	if stmt.ChildOfType("import_require_clause") != nil {
		return "", errorfAt(stmt, ErrUnsupportedImport, "import assignment %q", stmt.Text())
	}

	srcNode := stmt.ChildByField("source")
	if srcNode == nil {
		return "", errorfAt(stmt, ErrUnsupportedImport, "missing module source")
	}

	source := srcNode.StringValue()

	if t.framework.Has(source) {
		stmt.Remove()

		return "", nil
	}

	bindings := a.ImportsOf(stmt)
	if len(bindings) == 0 {
		return "", errorfAt(stmt, ErrEmptyImport, "import of %q binds nothing", source)
	}

	var def, ns *scope.Binding

	named := make([]*scope.Binding, 0, len(bindings))

	for _, b := range bindings {
		if Classify(b) != Value {
			continue
		}

		switch b.Import.Kind {
		case scope.ImportDefault:
			def = b
		case scope.ImportNamespace:
			ns = b
		case scope.ImportNamed:
			named = append(named, b)
		}
	}

	if def == nil && ns == nil && len(named) == 0 {
		stmt.Remove()

		return "", nil
	}

	resolved, err := t.resolveSource(tree.Path, source)
	if err != nil {
		return "", errorAt(srcNode, err)
	}

	load := t.load(resolved)

	var lines []string

	if ns != nil {
		lines = append(lines, "const "+ns.Name+" = "+load+";")
		if def != nil {
			lines = append(lines, "const { default: "+def.Name+" } = "+ns.Name+";")
		}
	} else {
		props := make([]string, 0, len(named)+1)
		if def != nil {
			props = append(props, "default: "+def.Name)
		}

		for _, b := range named {
			props = append(props, property(b.Import.Imported, b.Name))
		}

		lines = append(lines, "const { "+strings.Join(props, ", ")+" } = "+load+";")
	}

	stmt.Replace(strings.Join(lines, "\n"))

	return resolved, nil
}

// resolveSource maps relative specifiers to output paths; bare specifiers pass through.
func (t *Transformer) resolveSource(currentFile, source string) (string, error) {
	if !IsRelative(source) {
		return source, nil
	}

	return t.resolver.Resolve(currentFile, source)
}

func (t *Transformer) load(source string) string {
	return "await " + t.namespace + "." + t.loader + "(" + strconv.Quote(source) + ")"
}

// property renders an object literal or pattern property mapping key to local.
func property(key, local string) string {
	if key == local {
		return local
	}

	if !isIdentifierName(key) {
		key = strconv.Quote(key)
	}

	return key + ": " + local
}
