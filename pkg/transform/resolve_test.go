package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrBosquet/papacore/pkg/transform"
)

func TestPathResolver_Resolve(t *testing.T) {
	t.Parallel()

	fs := newFakeFS(
		"/home/u/lib/src/components/Button.tsx",
		"/home/u/lib/src/hooks/useToggle.ts",
		"/home/u/lib/src/legacy/util.js",
		"/home/u/lib/src/both.tsx",
		"/home/u/lib/src/both.ts",
	)
	r := transform.NewPathResolver(fs)

	tests := []struct {
		name      string
		current   string
		specifier string
		want      string
	}{
		{"tsx sibling", "/home/u/lib/src/components/Card.tsx", "./Button", "components/Button.jsx"},
		{"ts in other dir", "/home/u/lib/src/components/Card.tsx", "../hooks/useToggle", "hooks/useToggle.js"},
		{"js kept", "/home/u/lib/src/index.ts", "./legacy/util", "legacy/util.js"},
		{"tsx wins over ts", "/home/u/lib/src/index.ts", "./both", "both.jsx"},
		{"explicit extension", "/home/u/lib/src/index.ts", "./hooks/useToggle.ts", "hooks/useToggle.js"},
		{"missing stays bare", "/home/u/lib/src/index.ts", "./nope", "nope"},
		{"dotted name not probed", "/home/u/lib/src/index.ts", "./Button.stories", "Button.stories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve(tt.current, tt.specifier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathResolver_NoSourceRoot(t *testing.T) {
	t.Parallel()

	_, err := transform.NewPathResolver(newFakeFS()).Resolve("/home/u/lib/app/index.ts", "./x")
	require.ErrorIs(t, err, transform.ErrNoSourceRoot)
}

func TestPathResolver_FirstSrcSegmentIsRoot(t *testing.T) {
	t.Parallel()

	fs := newFakeFS("/w/src/pkg/src/a.ts")
	r := transform.NewPathResolver(fs)

	got, err := r.Resolve("/w/src/pkg/src/b.ts", "./a")
	require.NoError(t, err)
	assert.Equal(t, "pkg/src/a.js", got)
}

func TestIsRelative(t *testing.T) {
	t.Parallel()

	assert.True(t, transform.IsRelative("./a"))
	assert.True(t, transform.IsRelative("../a"))
	assert.False(t, transform.IsRelative("preact"))
	assert.False(t, transform.IsRelative("@scope/pkg"))
}
