package scope

import (
	"unicode"
	"unicode/utf8"

	"github.com/FrBosquet/papacore/pkg/syntax"
)

// typeContexts are subtrees whose identifiers are type-level only.
var typeContexts = map[string]bool{
	"type_annotation":           true,
	"opting_type_annotation":    true,
	"omitting_type_annotation":  true,
	"asserts_annotation":        true,
	"type_predicate_annotation": true,
	"type_arguments":            true,
	"type_parameters":           true,
	"implements_clause":         true,
	"extends_type_clause":       true,
	"type_query":                true,
	"ambient_declaration":       true,
	"index_signature":           true,
	"abstract_method_signature": true,
}

var functionTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var jsxNameParents = map[string]bool{
	"jsx_opening_element":      true,
	"jsx_closing_element":      true,
	"jsx_self_closing_element": true,
}

type analyzer struct {
	a       *Analysis
	pending []*Reference
}

// Analyze walks the module once, declaring bindings as it goes, and resolves
// references afterwards so hoisted declarations are visible everywhere.
func Analyze(tree *syntax.Tree) *Analysis {
	w := &analyzer{
		a: &Analysis{decls: make(map[*syntax.Node]*Binding)},
	}

	w.a.Module = newScope(tree.Root, nil, true)
	w.children(tree.Root, w.a.Module, false)
	w.resolve()

	return w.a
}

func (w *analyzer) resolve() {
	for _, ref := range w.pending {
		name := ref.Node.Text()

		var b *Binding
		if ref.Node.Type == "type_identifier" {
			b = ref.Scope.LookupType(name)
		} else {
			b = ref.Scope.Lookup(name)
		}

		ref.Binding = b
		if b != nil {
			b.References = append(b.References, ref)
		}

		w.a.References = append(w.a.References, ref)
	}

	w.pending = nil
}

func (w *analyzer) declare(ident *syntax.Node, s *Scope, kind Kind, info *ImportInfo) *Binding {
	name := ident.Text()

	if existing, ok := s.values[name]; ok && kind != KindType {
		w.a.decls[ident] = existing

		return existing
	}

	if existing, ok := s.types[name]; ok && kind == KindType {
		w.a.decls[ident] = existing

		return existing
	}

	b := &Binding{Name: name, Kind: kind, Node: ident, Scope: s, Import: info}
	w.a.decls[ident] = b

	switch kind {
	case KindType:
		s.types[name] = b
	case KindImport, KindClass, KindEnum, KindNamespace:
		s.values[name] = b
		if _, ok := s.types[name]; !ok {
			s.types[name] = b
		}
	default:
		s.values[name] = b
	}

	if info != nil {
		w.a.Imports = append(w.a.Imports, b)
	}

	return b
}

func (w *analyzer) reference(n *syntax.Node, s *Scope, typeMode bool) {
	w.pending = append(w.pending, &Reference{Node: n, Scope: s, TypePosition: typeMode})
}

func (w *analyzer) children(n *syntax.Node, s *Scope, typeMode bool) {
	for _, c := range n.Children {
		if c.Named {
			w.visit(c, s, typeMode)
		}
	}
}

//nolint:gocyclo,cyclop,funlen // one dispatch over the grammar's node types.
func (w *analyzer) visit(n *syntax.Node, s *Scope, typeMode bool) {
	if typeContexts[n.Type] {
		typeMode = true
	}

	switch n.Type {
	case "comment", "property_identifier", "private_property_identifier",
		"statement_identifier", "string", "number", "regex", "template_string_fragment":
		return

	case "identifier":
		if isIntrinsicJSXName(n) || n.Parent.Type == "jsx_namespace_name" {
			return
		}

		w.reference(n, s, typeMode)

	case "shorthand_property_identifier":
		w.reference(n, s, typeMode)

	case "type_identifier":
		w.reference(n, s, true)

	case "nested_type_identifier":
		if mod := n.ChildByField("module"); mod != nil {
			w.visit(mod, s, true)
		} else if first := n.FirstNamedChild(); first != nil {
			w.visit(first, s, true)
		}

	case "nested_identifier":
		if first := n.FirstNamedChild(); first != nil {
			w.visit(first, s, typeMode)
		}

	case "import_statement":
		w.importStatement(n, s)

	case "export_statement":
		w.exportStatement(n, s, typeMode)

	case "lexical_declaration", "variable_declaration":
		w.variableDeclaration(n, s, typeMode)

	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByField("name"); name != nil {
			w.declare(name, s, KindFunction, nil)
		}

		w.function(n, s, typeMode)

	case "function_signature":
		if name := n.ChildByField("name"); name != nil {
			w.declare(name, s, KindFunction, nil)
		}

		w.function(n, s, true)

	case "function_expression", "function", "generator_function", "arrow_function", "method_definition":
		w.function(n, s, typeMode)

	case "class_declaration", "abstract_class_declaration":
		if name := n.ChildByField("name"); name != nil {
			w.declare(name, s, KindClass, nil)
		}

		w.class(n, s, typeMode)

	case "class":
		w.class(n, s, typeMode)

	case "interface_declaration", "type_alias_declaration":
		if name := n.ChildByField("name"); name != nil {
			w.declare(name, s, KindType, nil)
		}

		inner := newScope(n, s, false)
		for _, c := range n.Children {
			if c.Named && c.Field != "name" {
				w.visit(c, inner, true)
			}
		}

	case "type_parameter":
		if name := n.ChildByField("name"); name != nil {
			w.declare(name, s, KindType, nil)
		}

		for _, c := range n.Children {
			if c.Named && c.Field != "name" {
				w.visit(c, s, true)
			}
		}

	case "enum_declaration":
		if name := n.ChildByField("name"); name != nil {
			w.declare(name, s, KindEnum, nil)
		}

		if body := n.ChildByField("body"); body != nil {
			w.enumBody(body, s, typeMode)
		}

	case "internal_module", "module":
		name := n.ChildByField("name")
		if name != nil && name.Type == "identifier" {
			w.declare(name, s, KindNamespace, nil)
		}

		if body := n.ChildByField("body"); body != nil {
			w.children(body, newScope(body, s, false), typeMode)
		}

	case "statement_block", "switch_body", "class_body":
		w.children(n, newScope(n, s, false), typeMode)

	case "for_statement":
		w.children(n, newScope(n, s, false), typeMode)

	case "for_in_statement":
		w.forIn(n, s, typeMode)

	case "catch_clause":
		inner := newScope(n, s, false)
		if param := n.ChildByField("parameter"); param != nil {
			w.pattern(param, inner, inner, KindCatch, typeMode)
		}

		for _, c := range n.Children {
			if !c.Named || c.Field == "parameter" {
				continue
			}

			if c.Field == "body" {
				w.children(c, inner, typeMode)
			} else {
				w.visit(c, inner, typeMode)
			}
		}

	case "member_expression":
		if obj := n.ChildByField("object"); obj != nil {
			w.visit(obj, s, typeMode)
		}

	case "pair":
		for _, c := range n.Children {
			if c.Named && (c.Field != "key" || c.Type == "computed_property_name") {
				w.visit(c, s, typeMode)
			}
		}

	case "as_expression", "satisfies_expression":
		first := true

		for _, c := range n.Children {
			if !c.Named {
				continue
			}

			w.visit(c, s, typeMode || !first)
			first = false
		}

	case "import_alias":
		if name := n.ChildByField("name"); name != nil {
			w.declare(name, s, KindConst, nil)
		}

	default:
		w.children(n, s, typeMode)
	}
}

func (w *analyzer) importStatement(n *syntax.Node, s *Scope) {
	info := ImportInfo{Statement: n, TypeOnly: n.HasToken("type") || n.HasToken("typeof")}

	if src := n.ChildByField("source"); src != nil {
		info.Source = src.StringValue()
	}

	if req := n.ChildOfType("import_require_clause"); req != nil {
		if src := req.ChildByField("source"); src != nil {
			info.Source = src.StringValue()
		} else if str := req.ChildOfType("string"); str != nil {
			info.Source = str.StringValue()
		}

		if ident := req.ChildOfType("identifier"); ident != nil {
			spec := info
			spec.Specifier, spec.Kind, spec.Imported = req, ImportNamespace, "*"
			w.declare(ident, s, KindImport, &spec)
		}

		return
	}

	clause := n.ChildOfType("import_clause")
	if clause == nil {
		return
	}

	for _, c := range clause.Children {
		switch c.Type {
		case "identifier":
			spec := info
			spec.Specifier, spec.Kind, spec.Imported = c, ImportDefault, "default"
			w.declare(c, s, KindImport, &spec)

		case "namespace_import":
			if ident := c.ChildOfType("identifier"); ident != nil {
				spec := info
				spec.Specifier, spec.Kind, spec.Imported = c, ImportNamespace, "*"
				w.declare(ident, s, KindImport, &spec)
			}

		case "named_imports":
			for _, is := range c.Children {
				if is.Type != "import_specifier" {
					continue
				}

				name := is.ChildByField("name")
				local := is.ChildByField("alias")

				if local == nil {
					local = name
				}

				if name == nil || local == nil {
					continue
				}

				imported := name.Text()
				if name.Type == "string" {
					imported = name.StringValue()
				}

				spec := info
				spec.Specifier, spec.Kind, spec.Imported = is, ImportNamed, imported
				spec.TypeOnly = info.TypeOnly || is.HasToken("type") || is.HasToken("typeof")
				w.declare(local, s, KindImport, &spec)
			}
		}
	}
}

func (w *analyzer) exportStatement(n *syntax.Node, s *Scope, typeMode bool) {
	hasSource := n.ChildByField("source") != nil
	typeOnly := n.HasToken("type")

	for _, c := range n.Children {
		if !c.Named || c.Field == "source" {
			continue
		}

		switch c.Type {
		case "export_clause":
			if hasSource {
				continue
			}

			for _, spec := range c.Children {
				if spec.Type != "export_specifier" {
					continue
				}

				name := spec.ChildByField("name")
				if name == nil || name.Type == "string" {
					continue
				}

				w.reference(name, s, typeMode || typeOnly || spec.HasToken("type"))
			}

		case "namespace_export":
			continue

		default:
			w.visit(c, s, typeMode)
		}
	}
}

func (w *analyzer) variableDeclaration(n *syntax.Node, s *Scope, typeMode bool) {
	kind, target := KindVar, s.functionScope()

	switch {
	case n.HasToken("let"):
		kind, target = KindLet, s
	case n.HasToken("const"):
		kind, target = KindConst, s
	}

	for _, d := range n.Children {
		if d.Type != "variable_declarator" {
			continue
		}

		if name := d.ChildByField("name"); name != nil {
			w.pattern(name, s, target, kind, typeMode)
		}

		for _, c := range d.Children {
			if c.Named && c.Field != "name" {
				w.visit(c, s, typeMode)
			}
		}
	}
}

// pattern declares every name bound by a binding pattern in target and
// visits default values and computed keys as ordinary expressions in s.
func (w *analyzer) pattern(p *syntax.Node, s, target *Scope, kind Kind, typeMode bool) {
	switch p.Type {
	case "identifier", "shorthand_property_identifier_pattern":
		w.declare(p, target, kind, nil)

	case "object_pattern", "array_pattern", "rest_pattern":
		for _, c := range p.Children {
			if c.Named {
				w.pattern(c, s, target, kind, typeMode)
			}
		}

	case "pair_pattern":
		if key := p.ChildByField("key"); key != nil && key.Type == "computed_property_name" {
			w.visit(key, s, typeMode)
		}

		if value := p.ChildByField("value"); value != nil {
			w.pattern(value, s, target, kind, typeMode)
		}

	case "assignment_pattern", "object_assignment_pattern":
		if left := p.ChildByField("left"); left != nil {
			w.pattern(left, s, target, kind, typeMode)
		}

		if right := p.ChildByField("right"); right != nil {
			w.visit(right, s, typeMode)
		}

	case "required_parameter", "optional_parameter":
		for _, c := range p.Children {
			if !c.Named {
				continue
			}

			switch {
			case c.Field == "pattern":
				w.pattern(c, s, target, kind, typeMode)
			case c.Field == "value":
				w.visit(c, s, typeMode)
			case c.Type == "type_annotation":
				w.visit(c, s, true)
			}
		}

	case "comment", "this", "accessibility_modifier", "override_modifier":
		return

	default:
		w.visit(p, s, typeMode)
	}
}

func (w *analyzer) function(n *syntax.Node, s *Scope, typeMode bool) {
	fn := newScope(n, s, true)

	for _, c := range n.Children {
		if !c.Named {
			continue
		}

		switch {
		case c.Field == "name":
			if c.Type == "computed_property_name" {
				w.visit(c, s, typeMode)
			} else if n.Type != "function_declaration" && n.Type != "generator_function_declaration" &&
				n.Type != "method_definition" && n.Type != "function_signature" && c.Type == "identifier" {
				w.declare(c, fn, KindFunction, nil)
			}

		case c.Type == "formal_parameters":
			for _, p := range c.Children {
				if p.Named {
					w.pattern(p, fn, fn, KindParam, typeMode)
				}
			}

		case c.Field == "parameter":
			w.pattern(c, fn, fn, KindParam, typeMode)

		case c.Field == "body" && c.Type == "statement_block":
			w.children(c, fn, typeMode)

		default:
			w.visit(c, fn, typeMode)
		}
	}
}

func (w *analyzer) class(n *syntax.Node, s *Scope, typeMode bool) {
	inner := newScope(n, s, false)

	for _, c := range n.Children {
		if !c.Named {
			continue
		}

		switch {
		case c.Field == "name":
			if n.Type == "class" {
				w.declare(c, inner, KindClass, nil)
			}

		case c.Field == "body":
			w.children(c, inner, typeMode)

		default:
			w.visit(c, inner, typeMode)
		}
	}
}

func (w *analyzer) forIn(n *syntax.Node, s *Scope, typeMode bool) {
	inner := newScope(n, s, false)

	kind, declared := KindVar, false

	if k := n.ChildByField("kind"); k != nil {
		declared = true

		switch k.Type {
		case "let":
			kind = KindLet
		case "const":
			kind = KindConst
		}
	}

	for _, c := range n.Children {
		if !c.Named {
			continue
		}

		if c.Field == "left" && declared {
			target := inner
			if kind == KindVar {
				target = s.functionScope()
			}

			w.pattern(c, inner, target, kind, typeMode)

			continue
		}

		w.visit(c, inner, typeMode)
	}
}

func (w *analyzer) enumBody(body *syntax.Node, s *Scope, typeMode bool) {
	for _, m := range body.Children {
		if m.Type != "enum_assignment" {
			continue
		}

		if value := m.ChildByField("value"); value != nil {
			w.visit(value, s, typeMode)
		}
	}
}

// isIntrinsicJSXName reports whether n is a lowercase JSX tag name such as
// <div>, which names a host element rather than a binding.
func isIntrinsicJSXName(n *syntax.Node) bool {
	if n.Parent == nil || !jsxNameParents[n.Parent.Type] {
		return false
	}

	r, _ := utf8.DecodeRuneInString(n.Text())

	return unicode.IsLower(r)
}
