package transform_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/FrBosquet/papacore/pkg/transform"
)

type fixture struct {
	Name    string   `yaml:"name"`
	Path    string   `yaml:"path"`
	Files   []string `yaml:"files"`
	Input   string   `yaml:"input"`
	Output  string   `yaml:"output"`
	Exports []string `yaml:"exports"`
	Error   string   `yaml:"error"`
}

var sentinels = map[string]error{
	"ErrEmptyImport":       transform.ErrEmptyImport,
	"ErrUnsupportedImport": transform.ErrUnsupportedImport,
	"ErrUnsupportedExport": transform.ErrUnsupportedExport,
	"ErrInvalidExportName": transform.ErrInvalidExportName,
	"ErrNoSourceRoot":      transform.ErrNoSourceRoot,
	"ErrSyntax":            transform.ErrSyntax,
	"ErrUnsupportedSyntax": transform.ErrUnsupportedSyntax,
}

type fakeFS map[string]bool

func (f fakeFS) Exists(path string) bool {
	return f[path]
}

func newFakeFS(files ...string) fakeFS {
	fs := fakeFS{}
	for _, f := range files {
		fs[f] = true
	}

	return fs
}

func loadFixtures(t *testing.T) []fixture {
	t.Helper()

	data, err := os.ReadFile("testdata/cases.yaml")
	require.NoError(t, err)

	var cases []fixture
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)

	return cases
}

func newTransformer(t *testing.T, files ...string) *transform.Transformer {
	t.Helper()

	tr, err := transform.New(transform.Options{
		Resolver: transform.NewPathResolver(newFakeFS(files...)),
	})
	require.NoError(t, err)

	return tr
}

func TestTransform_Fixtures(t *testing.T) {
	t.Parallel()

	for _, tc := range loadFixtures(t) {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			tr := newTransformer(t, tc.Files...)

			res, err := tr.Transform(context.Background(), tc.Path, []byte(tc.Input))

			if tc.Error != "" {
				want, ok := sentinels[tc.Error]
				require.True(t, ok, "unknown sentinel %s", tc.Error)
				require.ErrorIs(t, err, want)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.Output, res.Code)

			if len(tc.Exports) > 0 {
				assert.Equal(t, tc.Exports, res.Exports)
			} else {
				assert.Empty(t, res.Exports)
			}
		})
	}
}

func TestTransform_ErrorLocation(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t)

	_, err := tr.Transform(context.Background(), "/project/src/a.ts", []byte("const a = 1;\n  import './side';\n"))
	require.Error(t, err)

	var terr *transform.Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "/project/src/a.ts", terr.Path)
	assert.Equal(t, 2, terr.Line)
	assert.Equal(t, 3, terr.Column)
	assert.ErrorIs(t, err, transform.ErrEmptyImport)
	assert.Contains(t, err.Error(), "/project/src/a.ts:2:3")
}

func TestTransform_NoReturnWithoutExports(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, "/project/src/x.ts")

	res, err := tr.Transform(context.Background(), "/project/src/a.tsx",
		[]byte("import { h } from './x';\nconst el = h('div');\n"))
	require.NoError(t, err)
	assert.NotContains(t, res.Code, "return")
	assert.Equal(t, []string{"x.js"}, res.Imports)
}

func TestTransform_CustomNamespace(t *testing.T) {
	t.Parallel()

	tr, err := transform.New(transform.Options{
		Namespace:  "host",
		Loader:     "load",
		Vocabulary: []string{"signal"},
		Resolver:   transform.NewPathResolver(newFakeFS()),
	})
	require.NoError(t, err)

	res, err := tr.Transform(context.Background(), "/p/src/a.js",
		[]byte("import { x } from 'pkg';\nsignal(x);\nuseState();\n"))
	require.NoError(t, err)
	assert.Equal(t, "const { x } = await host.load(\"pkg\");\nhost.signal(x);\nuseState();\n", res.Code)
	assert.Equal(t, 1, res.Globals)
}

func TestTransform_KeepsTypesWhenNotStripping(t *testing.T) {
	t.Parallel()

	tr, err := transform.New(transform.Options{KeepTypes: true, Resolver: transform.NewPathResolver(newFakeFS())})
	require.NoError(t, err)

	res, err := tr.Transform(context.Background(), "/p/src/a.ts", []byte("export const n: number = 1;\n"))
	require.NoError(t, err)
	assert.Equal(t, "const n: number = 1;\nreturn { n };\n", res.Code)
}

func TestTransform_ZeroOptionsEraseTypes(t *testing.T) {
	t.Parallel()

	tr, err := transform.New(transform.Options{})
	require.NoError(t, err)

	res, err := tr.Transform(context.Background(), "/p/src/a.ts", []byte("export const n: number = 1;\n"))
	require.NoError(t, err)
	assert.Equal(t, "const n = 1;\nreturn { n };\n", res.Code)
}

func TestTransform_Deterministic(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, "/project/src/ui/Button.tsx")
	src := []byte("import { Button } from './ui/Button';\nButton();\n")

	first, err := tr.Transform(context.Background(), "/project/src/App.tsx", src)
	require.NoError(t, err)

	second, err := tr.Transform(context.Background(), "/project/src/App.tsx", src)
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, []string{"ui/Button.jsx"}, first.Imports)
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := transform.New(transform.Options{Namespace: "not valid"})
	require.Error(t, err)

	_, err = transform.New(transform.Options{Loader: "a-b"})
	require.Error(t, err)
}
