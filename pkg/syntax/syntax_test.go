package syntax_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrBosquet/papacore/pkg/syntax"
)

func parse(t *testing.T, path, src string) *syntax.Tree {
	t.Helper()

	tree, err := syntax.NewParser().Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)

	return tree
}

func findFirst(root *syntax.Node, typ string) *syntax.Node {
	var found *syntax.Node

	root.Walk(func(n *syntax.Node) bool {
		if found != nil {
			return false
		}

		if n.Type == typ {
			found = n

			return false
		}

		return true
	})

	return found
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want syntax.Language
	}{
		{"src/App.tsx", syntax.TSX},
		{"src/App.jsx", syntax.TSX},
		{"src/util.ts", syntax.TypeScript},
		{"src/util.mts", syntax.TypeScript},
		{"src/util.js", syntax.JavaScript},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := syntax.DetectLanguage(tt.path, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectLanguage_Unknown(t *testing.T) {
	t.Parallel()

	_, err := syntax.DetectLanguage("README.md", []byte("# hello\n"))
	require.ErrorIs(t, err, syntax.ErrUnknownLanguage)
}

func TestPrint_Unmodified(t *testing.T) {
	t.Parallel()

	src := "// header\nimport { a } from './a';\n\nexport const b: number = a(1);\n"
	tree := parse(t, "src/x.ts", src)

	assert.Equal(t, src, tree.Print())
	assert.Nil(t, tree.FirstError())
}

func TestNode_Positions(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "const a = 1;\n  let b = a;\n")

	decl := findFirst(tree.Root, "lexical_declaration")
	require.NotNil(t, decl)
	assert.Equal(t, 1, decl.Line)
	assert.Equal(t, 1, decl.Column)

	ident := findFirst(decl, "identifier")
	require.NotNil(t, ident)
	assert.Equal(t, "a", ident.Text())

	var second *syntax.Node

	for _, c := range tree.Root.NamedChildren() {
		if c.Line == 2 {
			second = c
		}
	}

	require.NotNil(t, second)
	assert.Equal(t, 3, second.Column)
}

func TestNode_Fields(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "import { a as b } from './a';\n")

	spec := findFirst(tree.Root, "import_specifier")
	require.NotNil(t, spec)
	require.NotNil(t, spec.ChildByField("name"))
	require.NotNil(t, spec.ChildByField("alias"))
	assert.Equal(t, "a", spec.ChildByField("name").Text())
	assert.Equal(t, "b", spec.ChildByField("alias").Text())

	stmt := findFirst(tree.Root, "import_statement")
	require.NotNil(t, stmt)
	require.NotNil(t, stmt.ChildByField("source"))
	assert.Equal(t, "'./a'", stmt.ChildByField("source").Text())
}

func TestPrint_RemoveStatementLine(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "import { a } from './a';\nconst b = 1;\n")

	findFirst(tree.Root, "import_statement").Remove()

	assert.Equal(t, "const b = 1;\n", tree.Print())
}

func TestPrint_RemoveCollapsesBlankLines(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "const a = 1;\n\nimport type { T } from './t';\n\nconst b = 2;\n")
	findFirst(tree.Root, "import_statement").Remove()
	assert.Equal(t, "const a = 1;\n\nconst b = 2;\n", tree.Print())

	tree = parse(t, "src/x.ts", "import {\n  a,\n  b,\n} from './a';\n\nf();\n")
	findFirst(tree.Root, "import_statement").Remove()
	assert.Equal(t, "f();\n", tree.Print())
}

func TestPrint_RemoveTakesDanglingSemicolon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "own line",
			src:  "abstract class A {\n  abstract m(): void;\n  x = 1;\n}\n",
			want: "abstract class A {\n  x = 1;\n}\n",
		},
		{
			name: "inline",
			src:  "abstract class A { abstract m(): void; x = 1; }\n",
			want: "abstract class A { x = 1; }\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := parse(t, "src/x.ts", tt.src)

			member := findFirst(tree.Root, "abstract_method_signature")
			require.NotNil(t, member)
			member.Remove()

			assert.Equal(t, tt.want, tree.Print())
		})
	}
}

func TestPrint_RemoveInline(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "let x: number = 5;\n")

	ann := findFirst(tree.Root, "type_annotation")
	require.NotNil(t, ann)
	ann.Remove()

	assert.Equal(t, "let x = 5;\n", tree.Print())
}

func TestPrint_ReplaceAndAppend(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "useState(0);")

	findFirst(tree.Root, "identifier").Replace("dc.useState")
	tree.Append("return { a };")

	assert.Equal(t, "dc.useState(0);\nreturn { a };\n", tree.Print())
}

func TestPrintNode(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "f(a + b);")

	call := findFirst(tree.Root, "call_expression")
	require.NotNil(t, call)

	findFirst(call, "identifier").Replace("g")

	assert.Equal(t, "g(a + b)", tree.PrintNode(call))
}

func TestFirstError(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.ts", "const = ;\n")

	assert.NotNil(t, tree.FirstError())
}

func TestNode_String(t *testing.T) {
	t.Parallel()

	tree := parse(t, "src/x.js", "a;")

	assert.Equal(t, "(program (expression_statement (identifier)))", tree.Root.String())
}
