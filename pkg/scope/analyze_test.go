package scope_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrBosquet/papacore/pkg/scope"
	"github.com/FrBosquet/papacore/pkg/syntax"
)

func analyze(t *testing.T, path, src string) *scope.Analysis {
	t.Helper()

	tree, err := syntax.NewParser().Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)

	return scope.Analyze(tree)
}

func importNamed(t *testing.T, a *scope.Analysis, name string) *scope.Binding {
	t.Helper()

	for _, b := range a.Imports {
		if b.Name == name {
			return b
		}
	}

	t.Fatalf("import %q not found", name)

	return nil
}

func TestAnalyze_ImportShapes(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.ts", `import D, { a, b as c, type T } from './mod';
import * as ns from "pkg";
import type { U } from './types';
`)

	require.Len(t, a.Imports, 6)

	d := importNamed(t, a, "D")
	assert.Equal(t, scope.ImportDefault, d.Import.Kind)
	assert.Equal(t, "default", d.Import.Imported)
	assert.Equal(t, "./mod", d.Import.Source)

	c := importNamed(t, a, "c")
	assert.Equal(t, scope.ImportNamed, c.Import.Kind)
	assert.Equal(t, "b", c.Import.Imported)
	assert.False(t, c.Import.TypeOnly)

	assert.True(t, importNamed(t, a, "T").Import.TypeOnly)
	assert.True(t, importNamed(t, a, "U").Import.TypeOnly)

	ns := importNamed(t, a, "ns")
	assert.Equal(t, scope.ImportNamespace, ns.Import.Kind)
	assert.Equal(t, "pkg", ns.Import.Source)

	assert.Len(t, a.ImportsOf(d.Import.Statement), 4)
}

func TestAnalyze_TypePositions(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.ts", `import { Foo, Bar, Baz } from './x';
let v: Foo = Baz();
function f(p: Array<Foo>): typeof Bar { return p as any; }
`)

	foo := importNamed(t, a, "Foo")
	require.Len(t, foo.References, 2)

	for _, ref := range foo.References {
		assert.True(t, ref.TypePosition)
	}

	bar := importNamed(t, a, "Bar")
	require.Len(t, bar.References, 1)
	assert.True(t, bar.References[0].TypePosition)

	baz := importNamed(t, a, "Baz")
	require.Len(t, baz.References, 1)
	assert.False(t, baz.References[0].TypePosition)
}

func TestAnalyze_Shadowing(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.tsx", `const useState = () => {};
useState();
function C() {
  return useEffect(() => {});
}
`)

	var unbound, bound []string

	for _, ref := range a.References {
		if ref.Binding == nil {
			unbound = append(unbound, ref.Node.Text())
		} else {
			bound = append(bound, ref.Node.Text())
		}
	}

	assert.Contains(t, bound, "useState")
	assert.Contains(t, unbound, "useEffect")
	assert.NotContains(t, unbound, "useState")
}

func TestAnalyze_HoistingAndParams(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.ts", `run(x);
function run({ a, b: [c] }, ...rest) {
  if (true) { var hoisted = a + c; }
  return hoisted;
}
var x = 1;
`)

	kinds := map[string]scope.Kind{}

	for _, ref := range a.References {
		if ref.Binding != nil {
			kinds[ref.Node.Text()] = ref.Binding.Kind
		}
	}

	assert.Equal(t, scope.KindFunction, kinds["run"])
	assert.Equal(t, scope.KindVar, kinds["x"])
	assert.Equal(t, scope.KindParam, kinds["a"])
	assert.Equal(t, scope.KindParam, kinds["c"])
	assert.Equal(t, scope.KindVar, kinds["hoisted"])
}

func TestAnalyze_JSXNames(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.tsx", `export const App = () => <div><Fragment>{label}</Fragment></div>;
`)

	var names []string
	for _, ref := range a.References {
		names = append(names, ref.Node.Text())
	}

	assert.NotContains(t, names, "div")
	assert.Contains(t, names, "Fragment")
	assert.Contains(t, names, "label")
}

func TestAnalyze_ObjectKeysAndMembers(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.ts", `const o = { useState: 1, memo };
o.useState;
`)

	var names []string
	for _, ref := range a.References {
		names = append(names, ref.Node.Text())
	}

	assert.ElementsMatch(t, []string{"memo", "o"}, names)
}

func TestAnalyze_ExportClauseReferences(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.ts", `import { A, B } from './x';
export { A };
export type { B };
export { C } from './c';
`)

	a1 := importNamed(t, a, "A")
	require.Len(t, a1.References, 1)
	assert.False(t, a1.References[0].TypePosition)

	b := importNamed(t, a, "B")
	require.Len(t, b.References, 1)
	assert.True(t, b.References[0].TypePosition)
}

func TestAnalyze_TypeDeclarations(t *testing.T) {
	t.Parallel()

	a := analyze(t, "src/x.ts", `interface Props<T> { value: T }
type Alias = Props<string>;
`)

	props := a.Module.LookupType("Props")
	require.NotNil(t, props)
	assert.Equal(t, scope.KindType, props.Kind)
	require.Len(t, props.References, 1)
	assert.Nil(t, a.Module.Lookup("Props"))
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "import", scope.KindImport.String())
	assert.Equal(t, "type", scope.KindType.String())
	assert.Equal(t, "unknown", scope.Kind(99).String())
}
