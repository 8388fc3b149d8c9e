package transform

import (
	"math"
	"strconv"
	"strings"

	"github.com/FrBosquet/papacore/pkg/syntax"
)

// typeOnlyNodes have no runtime meaning and are dropped wherever they appear.
var typeOnlyNodes = map[string]bool{
	"type_annotation":           true,
	"opting_type_annotation":    true,
	"omitting_type_annotation":  true,
	"asserts_annotation":        true,
	"type_predicate_annotation": true,
	"type_arguments":            true,
	"type_parameters":           true,
	"accessibility_modifier":    true,
	"override_modifier":         true,
	"abstract_method_signature": true,
	"index_signature":           true,
	"method_signature":          true,
}

// typeStatements are removed together with an enclosing export statement.
var typeStatements = map[string]bool{
	"interface_declaration":  true,
	"type_alias_declaration": true,
	"ambient_declaration":    true,
	"function_signature":     true,
}

// EraseTypes removes TypeScript-only syntax from tree so it prints as
// JavaScript. Enums are compiled to plain object literals.
func EraseTypes(tree *syntax.Tree) error {
	var err error

	tree.Root.Walk(func(n *syntax.Node) bool {
		if err != nil || n.Removed() || n.Replaced() {
			return false
		}

		if typeOnlyNodes[n.Type] {
			n.Remove()

			return false
		}

		if typeStatements[n.Type] {
			removeStatement(n)

			return false
		}

		err = eraseNode(tree, n)

		return err == nil
	})

	return err
}

//nolint:gocyclo,cyclop // one case per construct.
func eraseNode(tree *syntax.Tree, n *syntax.Node) error {
	switch n.Type {
	case "class_heritage":
		if impl := n.ChildOfType("implements_clause"); impl != nil {
			if n.ChildOfType("extends_clause") == nil {
				n.Remove()
			} else {
				impl.Remove()
			}
		}

	case "as_expression", "satisfies_expression":
		seenExpr := false

		for _, c := range n.Children {
			if seenExpr {
				c.Remove()
			} else if c.Named {
				seenExpr = true
			}
		}

	case "non_null_expression":
		removeToken(n, "!")

	case "optional_parameter", "method_definition":
		removeToken(n, "?")

	case "variable_declarator":
		removeToken(n, "!")

	case "required_parameter":
		if n.ChildOfType("accessibility_modifier") != nil || n.ChildOfType("override_modifier") != nil ||
			n.HasToken("readonly") {
			return errorfAt(n, ErrUnsupportedSyntax, "constructor parameter property %q", n.Text())
		}

		if p := n.ChildByField("pattern"); p != nil && p.Type == "this" {
			return errorfAt(n, ErrUnsupportedSyntax, "this parameter")
		}

	case "public_field_definition":
		if n.HasToken("declare") || n.HasToken("abstract") {
			n.Remove()

			return nil
		}

		for _, tok := range []string{"?", "!", "readonly"} {
			removeToken(n, tok)
		}

	case "abstract_class_declaration", "abstract_class":
		removeToken(n, "abstract")

	case "enum_declaration":
		return compileEnum(tree, n)

	case "internal_module", "module", "import_alias":
		return errorfAt(n, ErrUnsupportedSyntax, "%s", n.Type)
	}

	return nil
}

func removeStatement(n *syntax.Node) {
	if n.Parent != nil && n.Parent.Type == "export_statement" {
		n.Parent.Remove()

		return
	}

	n.Remove()
}

// enumState tracks what the previous enum member evaluated to, which decides
// the value of an implicit member that follows it.
type enumState int

const (
	enumNumber enumState = iota
	enumExpression
	enumString
)

type enumMember struct {
	key   string
	name  string
	value string
}

// compileEnum replaces an enum declaration with a const object. Implicit
// members count up from the previous member. When an initializer refers to
// another member, or follows a computed one, the object is filled one
// assignment at a time so earlier members are in scope.
//
//nolint:gocognit // one branch per member shape.
func compileEnum(tree *syntax.Tree, n *syntax.Node) error {
	name := n.ChildByField("name")
	body := n.ChildByField("body")

	if name == nil || body == nil {
		return errorfAt(n, ErrUnsupportedSyntax, "malformed enum")
	}

	enum := name.Text()

	var (
		members  []enumMember
		next     float64
		state    = enumNumber
		prev     string
		seen     = map[string]bool{}
		stepwise bool
	)

	for _, m := range body.Children {
		if !m.Named || m.Type == "comment" {
			continue
		}

		keyNode, valueNode := m, (*syntax.Node)(nil)
		if m.Type == "enum_assignment" {
			keyNode, valueNode = m.ChildByField("name"), m.ChildByField("value")
		}

		if keyNode == nil {
			return errorfAt(m, ErrUnsupportedSyntax, "enum member %q", m.Text())
		}

		key := keyNode.Text()

		var value string

		switch {
		case valueNode == nil && state == enumNumber:
			value = formatNumber(next)
			next++

		case valueNode == nil && state == enumExpression:
			value = enumAccess(enum, prev) + " + 1"
			stepwise = true

		case valueNode == nil:
			return errorfAt(m, ErrUnsupportedSyntax, "enum member %s needs an initializer", key)

		default:
			refers := qualifyEnumRefs(valueNode, enum, seen)
			stepwise = stepwise || refers
			value = tree.PrintNode(valueNode)

			f, err := strconv.ParseFloat(strings.ReplaceAll(value, " ", ""), 64)

			switch {
			case err == nil && !refers:
				state, next = enumNumber, f+1
			case valueNode.Type == "string" || valueNode.Type == "template_string":
				state = enumString
			default:
				state = enumExpression
			}
		}

		memberName := key
		if keyNode.Type == "string" {
			memberName = keyNode.StringValue()
		}

		seen[memberName] = true
		prev = memberName
		members = append(members, enumMember{key: key, name: memberName, value: value})
	}

	if !stepwise {
		props := make([]string, 0, len(members))
		for _, m := range members {
			props = append(props, m.key+": "+m.value)
		}

		n.Replace("const " + enum + " = { " + strings.Join(props, ", ") + " };")

		return nil
	}

	lines := make([]string, 0, len(members)+1)
	lines = append(lines, "const "+enum+" = {};")

	for _, m := range members {
		lines = append(lines, enumAccess(enum, m.name)+" = "+m.value+";")
	}

	n.Replace(strings.Join(lines, "\n"))

	return nil
}

// qualifyEnumRefs rewrites bare references to earlier members inside an
// initializer to property accesses on the enum object. It reports whether
// the initializer refers to the enum at all.
func qualifyEnumRefs(value *syntax.Node, enum string, members map[string]bool) bool {
	refers := false

	value.Walk(func(c *syntax.Node) bool {
		if c.Type != "identifier" {
			return true
		}

		switch {
		case c.Text() == enum:
			refers = true
		case members[c.Text()]:
			c.Replace(enumAccess(enum, c.Text()))
			refers = true
		}

		return false
	})

	return refers
}

func enumAccess(enum, member string) string {
	if isIdentifierName(member) {
		return enum + "." + member
	}

	return enum + "[" + strconv.Quote(member) + "]"
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}
