package transform

import (
	"strings"

	"github.com/FrBosquet/papacore/pkg/scope"
	"github.com/FrBosquet/papacore/pkg/syntax"
)

// defaultLocal names the constant that holds an anonymous default export.
const defaultLocal = "__default"

var typeDeclarations = map[string]bool{
	"interface_declaration":  true,
	"type_alias_declaration": true,
	"ambient_declaration":    true,
	"function_signature":     true,
}

var reservedWords = NewSet(
	"break", "case", "catch", "class", "const", "continue", "debugger", "default", "delete",
	"do", "else", "enum", "export", "extends", "false", "finally", "for", "function", "if",
	"import", "in", "instanceof", "new", "null", "return", "super", "switch", "this", "throw",
	"true", "try", "typeof", "var", "void", "while", "with", "yield", "let", "static",
	"implements", "interface", "package", "private", "protected", "public", "await",
)

// exportEntry is one property of the aggregate return object.
type exportEntry struct {
	key   string
	local string
	// value, when set, is an expression exported in place of local.
	value string
	node  *syntax.Node
}

// exportList accumulates entries in collection order.
type exportList []exportEntry

func (l exportList) keys() []string {
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.key
	}

	return out
}

// returnStatement renders the aggregate return, or "" when nothing is exported.
func (l exportList) returnStatement() (string, error) {
	if len(l) == 0 {
		return "", nil
	}

	props := make([]string, 0, len(l))

	for _, e := range l {
		if e.value != "" {
			props = append(props, property(e.key, e.value))

			continue
		}

		if !isIdentifier(e.local) {
			return "", errorfAt(e.node, ErrInvalidExportName, "%q", e.local)
		}

		props = append(props, property(e.key, e.local))
	}

	return "return { " + strings.Join(props, ", ") + " };", nil
}

// exportAction is the phase-two rewrite decided for one export statement.
type exportAction struct {
	stmt     *syntax.Node
	entries  exportList
	typeOnly bool
}

// collectExports is phase one: it inspects every top-level export statement
// of the snapshot without mutating anything.
func (t *Transformer) collectExports(snapshot []*syntax.Node, a *scope.Analysis) ([]exportAction, exportList, error) {
	var (
		actions []exportAction
		list    exportList
	)

	for _, stmt := range snapshot {
		if stmt.Type != "export_statement" {
			continue
		}

		action, err := t.collectExport(stmt, a)
		if err != nil {
			return nil, nil, err
		}

		actions = append(actions, action)
		list = append(list, action.entries...)
	}

	return actions, list, nil
}

//nolint:gocyclo,cyclop,funlen // mirrors the export grammar one form at a time.
func (t *Transformer) collectExport(stmt *syntax.Node, a *scope.Analysis) (exportAction, error) {
	action := exportAction{stmt: stmt}

	decl := stmt.ChildByField("declaration")
	value := stmt.ChildByField("value")
	source := stmt.ChildByField("source")
	isDefault := stmt.HasToken("default")

	switch {
	case stmt.HasToken("type") && decl == nil:
		action.typeOnly = true

		return action, nil

	case stmt.HasToken("=") && decl == nil && value == nil:
		return action, errorfAt(stmt, ErrUnsupportedExport, "export assignment")

	case stmt.HasToken("namespace") && decl == nil:
		return action, errorfAt(stmt, ErrUnsupportedExport, "namespace export declaration")

	case stmt.HasToken("*") && stmt.ChildOfType("namespace_export") == nil:
		return action, errorfAt(stmt, ErrUnsupportedExport, "wildcard re-export cannot be listed")
	}

	if nsExport := stmt.ChildOfType("namespace_export"); nsExport != nil {
		name := nsExport.FirstNamedChild()
		if name == nil || name.Type != "identifier" {
			return action, errorfAt(stmt, ErrInvalidExportName, "%q", nsExport.Text())
		}

		if source != nil && t.framework.Has(source.StringValue()) {
			return action, errorfAt(stmt, ErrUnsupportedExport, "namespace re-export of framework package")
		}

		action.entries = append(action.entries, exportEntry{key: name.Text(), local: name.Text(), node: name})

		return action, nil
	}

	if clause := stmt.ChildOfType("export_clause"); clause != nil {
		for _, spec := range clause.Children {
			if spec.Type != "export_specifier" || spec.HasToken("type") {
				continue
			}

			name := spec.ChildByField("name")
			if name == nil {
				continue
			}

			local := exportName(name)
			key := local

			if alias := spec.ChildByField("alias"); alias != nil {
				key = exportName(alias)
			}

			entry := exportEntry{key: key, local: local, node: spec}

			switch {
			case source != nil && t.framework.Has(source.StringValue()):
				if exportName(name) == "default" {
					return action, errorfAt(spec, ErrUnsupportedExport, "re-export of framework default")
				}

				entry.value = t.member(exportName(name))
			case source != nil:
				entry.local = key
				if key == "default" {
					entry.local = defaultLocal
				}
			case typeOnlyLocal(a, local):
				continue
			default:
				member, err := t.frameworkMember(a, local, spec)
				if err != nil {
					return action, err
				}

				entry.value = member
			}

			action.entries = append(action.entries, entry)
		}

		return action, nil
	}

	if decl != nil {
		if typeDeclarations[decl.Type] {
			action.typeOnly = true

			return action, nil
		}

		switch decl.Type {
		case "lexical_declaration", "variable_declaration":
			for _, d := range decl.Children {
				if d.Type != "variable_declarator" {
					continue
				}

				for _, ident := range patternNames(d.ChildByField("name")) {
					action.entries = append(action.entries, exportEntry{key: ident.Text(), local: ident.Text(), node: ident})
				}
			}

		case "internal_module", "module", "import_alias":
			return action, errorfAt(decl, ErrUnsupportedExport, "exported %s", decl.Type)

		default:
			name := decl.ChildByField("name")
			if name == nil {
				return action, errorfAt(decl, ErrUnsupportedExport, "exported %s has no name", decl.Type)
			}

			key := name.Text()
			if isDefault {
				key = "default"
			}

			action.entries = append(action.entries, exportEntry{key: key, local: name.Text(), node: name})
		}

		return action, nil
	}

	if value != nil {
		if value.Type == "identifier" && !value.Replaced() {
			if b := a.Module.Lookup(value.Text()); b != nil {
				if typeOnlyLocal(a, value.Text()) {
					action.typeOnly = true

					return action, nil
				}

				member, err := t.frameworkMember(a, value.Text(), value)
				if err != nil {
					return action, err
				}

				action.entries = append(action.entries, exportEntry{
					key: "default", local: value.Text(), value: member, node: value,
				})

				return action, nil
			}
		}

		action.entries = append(action.entries, exportEntry{key: "default", local: defaultLocal, node: value})

		return action, nil
	}

	return action, errorfAt(stmt, ErrUnsupportedExport, "%q", stmt.Text())
}

// rewriteExports is phase two.
func (t *Transformer) rewriteExports(tree *syntax.Tree, actions []exportAction) error {
	for _, action := range actions {
		stmt := action.stmt

		switch {
		case action.typeOnly && stmt.ChildByField("declaration") == nil:
			stmt.Remove()

		case stmt.ChildByField("source") != nil:
			if err := t.rewriteReexport(tree, action); err != nil {
				return err
			}

		case stmt.ChildOfType("export_clause") != nil:
			stmt.Remove()

		case stmt.ChildByField("declaration") != nil:
			removeToken(stmt, "export")
			removeToken(stmt, "default")

		case stmt.ChildByField("value") != nil:
			if len(action.entries) == 1 && action.entries[0].local != defaultLocal {
				stmt.Remove()

				continue
			}

			if tok := stmt.Token("export"); tok != nil {
				tok.Replace("const " + defaultLocal)
			}

			if tok := stmt.Token("default"); tok != nil {
				tok.Replace("=")
			}

			if !stmt.HasToken(";") {
				stmt.SetSuffix(";")
			}
		}
	}

	return nil
}

// rewriteReexport turns `export ... from` into a load binding the exported names.
func (t *Transformer) rewriteReexport(tree *syntax.Tree, action exportAction) error {
	stmt := action.stmt
	srcNode := stmt.ChildByField("source")

	if len(action.entries) == 0 || t.framework.Has(srcNode.StringValue()) {
		stmt.Remove()

		return nil
	}

	resolved, err := t.resolveSource(tree.Path, srcNode.StringValue())
	if err != nil {
		return errorAt(srcNode, err)
	}

	load := t.load(resolved)

	if stmt.ChildOfType("namespace_export") != nil {
		stmt.Replace("const " + action.entries[0].local + " = " + load + ";")

		return nil
	}

	props := make([]string, 0, len(action.entries))

	for _, spec := range stmt.ChildOfType("export_clause").Children {
		if spec.Type != "export_specifier" || spec.HasToken("type") {
			continue
		}

		name := spec.ChildByField("name")
		if name == nil {
			continue
		}

		local := exportName(name)
		if alias := spec.ChildByField("alias"); alias != nil {
			local = exportName(alias)
		}

		if local == "default" {
			local = defaultLocal
		}

		props = append(props, property(exportName(name), local))
	}

	stmt.Replace("const { " + strings.Join(props, ", ") + " } = " + load + ";")

	return nil
}

// frameworkMember returns the namespace member that stands in for name when
// name is bound by a dropped framework import, or "" for any other binding.
func (t *Transformer) frameworkMember(a *scope.Analysis, name string, at *syntax.Node) (string, error) {
	b := a.Module.Lookup(name)
	if b == nil || b.Import == nil || !t.framework.Has(b.Import.Source) {
		return "", nil
	}

	if b.Import.Kind != scope.ImportNamed {
		return "", errorfAt(at, ErrUnsupportedExport, "re-export of framework import %q", name)
	}

	return t.member(b.Import.Imported), nil
}

func removeToken(n *syntax.Node, tok string) {
	if c := n.Token(tok); c != nil {
		c.Remove()
	}
}

func exportName(n *syntax.Node) string {
	if n.Type == "string" {
		return n.StringValue()
	}

	return n.Text()
}

// typeOnlyLocal reports whether name resolves only to a type-level binding.
func typeOnlyLocal(a *scope.Analysis, name string) bool {
	b := a.Module.Lookup(name)
	if b == nil {
		return a.Module.LookupType(name) != nil
	}

	if b.Kind == scope.KindType {
		return true
	}

	return b.Import != nil && b.Import.TypeOnly
}

// patternNames lists the identifiers bound by a declarator target.
func patternNames(p *syntax.Node) []*syntax.Node {
	if p == nil {
		return nil
	}

	switch p.Type {
	case "identifier", "shorthand_property_identifier_pattern":
		return []*syntax.Node{p}
	case "pair_pattern":
		return patternNames(p.ChildByField("value"))
	case "assignment_pattern", "object_assignment_pattern":
		return patternNames(p.ChildByField("left"))
	case "object_pattern", "array_pattern", "rest_pattern":
		var out []*syntax.Node
		for _, c := range p.NamedChildren() {
			out = append(out, patternNames(c)...)
		}

		return out
	}

	return nil
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}

func isIdentifier(s string) bool {
	return isIdentifierName(s) && !reservedWords.Has(s)
}
