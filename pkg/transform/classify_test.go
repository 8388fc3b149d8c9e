package transform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrBosquet/papacore/pkg/scope"
	"github.com/FrBosquet/papacore/pkg/syntax"
	"github.com/FrBosquet/papacore/pkg/transform"
)

func classifyAll(t *testing.T, src string) map[string]transform.Classification {
	t.Helper()

	tree, err := syntax.NewParser().Parse(context.Background(), "/p/src/a.tsx", []byte(src))
	require.NoError(t, err)

	a := scope.Analyze(tree)
	out := make(map[string]transform.Classification, len(a.Imports))

	for _, b := range a.Imports {
		out[b.Name] = transform.Classify(b)
	}

	return out
}

func TestClassify(t *testing.T) {
	t.Parallel()

	got := classifyAll(t, `import { Called, Annotated, Generic, Qualified, Queried, Unused, type Marked } from './x';
import Default, * as NS from './y';
Called();
let a: Annotated;
let g: Array<Generic> = [];
let q: Qualified.Inner;
let t: typeof Queried;
const el = <Default />;
Marked();
`)

	assert.Equal(t, transform.Value, got["Called"])
	assert.Equal(t, transform.TypeOnly, got["Annotated"])
	assert.Equal(t, transform.TypeOnly, got["Generic"])
	assert.Equal(t, transform.TypeOnly, got["Qualified"])
	assert.Equal(t, transform.TypeOnly, got["Queried"])
	assert.Equal(t, transform.TypeOnly, got["Unused"])
	assert.Equal(t, transform.TypeOnly, got["Marked"])
	assert.Equal(t, transform.Value, got["Default"])
	assert.Equal(t, transform.TypeOnly, got["NS"])
}

func TestClassify_OneValueUseWins(t *testing.T) {
	t.Parallel()

	got := classifyAll(t, `import { Both } from './x';
let a: Both;
const b = Both;
`)

	assert.Equal(t, transform.Value, got["Both"])
}

func TestClassify_NilBinding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, transform.TypeOnly, transform.Classify(nil))
	assert.Equal(t, "type-only", transform.TypeOnly.String())
	assert.Equal(t, "value", transform.Value.String())
}
