package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrBosquet/papacore/pkg/config"
	"github.com/FrBosquet/papacore/pkg/transform"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	cfg, err := config.LoadConfig(root, "")
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "src", cfg.SrcDir)
	assert.Equal(t, "dist", cfg.DistDir)
	assert.Empty(t, cfg.TargetVault)
	assert.Equal(t, "dc", cfg.Transform.Namespace)
	assert.Equal(t, "require", cfg.Transform.Loader)
	assert.Equal(t, transform.DefaultVocabulary(), cfg.Transform.Vocabulary)
	assert.Equal(t, transform.DefaultFrameworkPackages(), cfg.Transform.FrameworkPackages)
	assert.True(t, cfg.Transform.StripTypes)
	assert.True(t, cfg.Build.Stories)
	assert.Equal(t, uint64(1000000), cfg.MaxFileSizeBytes())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "papacore", cfg.Telemetry.ServiceName)
	assert.Equal(t, filepath.Join(root, "src"), cfg.SrcPath())
	assert.Equal(t, filepath.Join(root, "dist"), cfg.DistPath())
}

func TestLoadConfigFromJSON(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, root, "papacore.json", `{
  "targetVault": "/vault/scripts",
  "transform": { "namespace": "host", "vocabulary": ["useQuery"] }
}`)

	cfg, err := config.LoadConfig(root, "")
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "/vault/scripts", cfg.TargetVault)
	assert.Equal(t, "host", cfg.Transform.Namespace)
	assert.Equal(t, []string{"useQuery"}, cfg.Transform.Vocabulary)

	opts := cfg.TransformOptions()
	assert.Equal(t, "host", opts.Namespace)
	assert.Equal(t, "require", opts.Loader)
	assert.False(t, opts.KeepTypes)
}

func TestLoadConfigFromExplicitYAML(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, root, "custom.yaml", `
src_dir: source
dist_dir: /abs/out
target_vault: vault
build:
  workers: 2
  stories: false
  max_file_size: 2MiB
logging:
  level: debug
  format: json
`)

	cfg, err := config.LoadConfig(root, path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "source"), cfg.SrcPath())
	assert.Equal(t, "/abs/out", cfg.DistPath())
	assert.Equal(t, "vault", cfg.TargetVault)
	assert.Equal(t, 2, cfg.Build.Workers)
	assert.False(t, cfg.Build.Stories)
	assert.Equal(t, uint64(2*1024*1024), cfg.MaxFileSizeBytes())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(t.TempDir(), "/does/not/exist.yaml")
	require.Error(t, err)
}

func TestLoadConfigSchemaViolation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "papacore.yaml", `
bogus: true
logging:
  level: loud
`)

	_, err := config.LoadConfig(root, "")
	require.ErrorIs(t, err, config.ErrSchema)

	var schemaErr *config.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Len(t, schemaErr.Problems, 2)
}

func TestLoadConfigSemanticValidation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "papacore.yaml", "src_dir: same\ndist_dir: same/\n")

	_, err := config.LoadConfig(root, "")
	require.ErrorIs(t, err, config.ErrSameDirs)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PAPACORE_TRANSFORM_NAMESPACE", "envns")
	t.Setenv("PAPACORE_LOGGING_LEVEL", "warn")

	cfg, err := config.LoadConfig(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "envns", cfg.Transform.Namespace)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfigDotEnv(t *testing.T) {
	// Register the variable so its original state is restored, then clear it
	// so the .env value is not shadowed.
	t.Setenv("PAPACORE_TARGET_VAULT", "")
	require.NoError(t, os.Unsetenv("PAPACORE_TARGET_VAULT"))

	root := t.TempDir()
	writeFile(t, root, ".env", "PAPACORE_TARGET_VAULT=/from/dotenv\n")

	cfg, err := config.LoadConfig(root, "")
	require.NoError(t, err)

	assert.Equal(t, "/from/dotenv", cfg.TargetVault)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *config.Config {
		return &config.Config{
			SrcDir:  "src",
			DistDir: "dist",
			Build:   config.BuildConfig{MaxFileSize: "1MB"},
			Logging: config.LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"valid", func(*config.Config) {}, nil},
		{"empty src", func(c *config.Config) { c.SrcDir = "" }, config.ErrEmptyDir},
		{"negative workers", func(c *config.Config) { c.Build.Workers = -1 }, config.ErrInvalidWorkers},
		{"bad size", func(c *config.Config) { c.Build.MaxFileSize = "lots" }, config.ErrInvalidMaxFileSize},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, config.ErrInvalidLogLevel},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, config.ErrInvalidLogFormat},
		{"bad ratio", func(c *config.Config) { c.Telemetry.SampleRatio = 1.5 }, config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := config.Validate(cfg)
			if tt.want == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, config.ValidateFile(writeFile(t, dir, "empty.yaml", "")))
	require.NoError(t, config.ValidateFile(writeFile(t, dir, "ok.json", `{"build": {"workers": 4}}`)))

	err := config.ValidateFile(writeFile(t, dir, "bad.json", `{"build": {"workers": "four"}}`))
	require.ErrorIs(t, err, config.ErrSchema)

	err = config.ValidateFile(writeFile(t, dir, "broken.json", `{`))
	require.Error(t, err)
	require.NotErrorIs(t, err, config.ErrSchema)

	assert.Contains(t, string(config.Schema()), `"target_vault"`)
}
