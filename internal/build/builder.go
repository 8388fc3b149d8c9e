// Package build compiles a papacore project: every TypeScript module under
// the source directory is rewritten into a host script under the output
// directory, story modules get a markdown page that renders them, and the
// results are optionally installed into a vault.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FrBosquet/papacore/pkg/config"
	"github.com/FrBosquet/papacore/pkg/observability"
	"github.com/FrBosquet/papacore/pkg/transform"
)

// Sentinel errors.
var (
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrUnsafeDist    = errors.New("refusing to clean output directory")
	ErrMissingSource = errors.New("source directory not found")
	ErrNotSource     = errors.New("not a module source file")
)

const (
	kindModule = "module"
	kindStory  = "story"

	dirPerm  = 0o755
	filePerm = 0o644

	tracerName = "papacore/build"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger; the transformer logs through it too.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithTracer sets the tracer used for build and per-file spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Builder) { b.tracer = tracer }
}

// WithMetrics sets the instruments recorded per file.
func WithMetrics(metrics *observability.BuildMetrics) Option {
	return func(b *Builder) { b.metrics = metrics }
}

// WithWorkers overrides build.workers from the configuration.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithClock replaces time.Now for story timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithResolver replaces the transformer's path resolver.
func WithResolver(resolver *transform.PathResolver) Option {
	return func(b *Builder) { b.resolver = resolver }
}

// Builder compiles one project. It is safe to call CompileFile concurrently.
type Builder struct {
	cfg         *config.Config
	transformer *transform.Transformer
	resolver    *transform.PathResolver
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.BuildMetrics
	now         func() time.Time
	workers     int
	maxSize     uint64
	srcDir      string
	distDir     string
}

// New creates a Builder for cfg.
func New(cfg *config.Config, opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:     cfg,
		workers: cfg.Build.Workers,
		maxSize: cfg.MaxFileSizeBytes(),
		srcDir:  cfg.SrcPath(),
		distDir: cfg.DistPath(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	if b.tracer == nil {
		b.tracer = otel.Tracer(tracerName)
	}

	if b.workers <= 0 {
		b.workers = runtime.NumCPU()
	}

	topts := cfg.TransformOptions()
	topts.Logger = b.logger
	topts.Resolver = b.resolver

	t, err := transform.New(topts)
	if err != nil {
		return nil, fmt.Errorf("configure transformer: %w", err)
	}

	b.transformer = t

	return b, nil
}

// Build cleans the output directory and compiles every module under the
// source directory. A failing file does not stop the others; all failures
// are returned joined once every file ran.
func (b *Builder) Build(ctx context.Context) (*Summary, error) {
	start := time.Now()

	ctx, span := b.tracer.Start(ctx, "papacore.build",
		trace.WithAttributes(
			attribute.String("build.src", b.srcDir),
			attribute.String("build.dist", b.distDir),
		),
	)
	defer span.End()

	if err := b.clean(); err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	files, err := b.Discover()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	b.logger.InfoContext(ctx, "building", "files", len(files), "workers", min(b.workers, max(len(files), 1)))

	results := b.compileAll(ctx, files)

	summary := newSummary(results, time.Since(start))
	span.SetAttributes(
		attribute.Int("build.files", len(results)),
		attribute.Int("build.failed", summary.Failed),
	)

	errs := make([]error, 0, summary.Failed)

	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}

	if joined := errors.Join(errs...); joined != nil {
		span.SetStatus(codes.Error, "some files failed")

		return summary, joined
	}

	return summary, nil
}

// Discover lists the module sources under the source directory in lexical
// order: .ts and .tsx files, without declaration files.
func (b *Builder) Discover() ([]string, error) {
	info, err := os.Stat(b.srcDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, b.srcDir)
	}

	var files []string

	err = filepath.WalkDir(b.srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if !d.IsDir() && isModuleSource(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", b.srcDir, err)
	}

	slices.Sort(files)

	return files, nil
}

func (b *Builder) compileAll(ctx context.Context, files []string) []FileResult {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results
	}

	workers := min(b.workers, len(files))
	jobs := make(chan int, workers)

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
	)

	total := int64(len(files))

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range jobs {
				results[idx] = b.CompileFile(ctx, files[idx])

				done := completed.Add(1)
				b.logger.DebugContext(ctx, "progress", "done", done, "total", total)
			}
		}()
	}

	for idx := range files {
		if ctx.Err() != nil {
			results[idx] = FileResult{Source: b.relSource(files[idx]), Err: ctx.Err()}

			continue
		}

		jobs <- idx
	}

	close(jobs)
	wg.Wait()

	return results
}

// CompileFile transforms one source file, writes its output and story page,
// and installs both into the vault when one is configured. Failures are
// logged and returned in the result.
func (b *Builder) CompileFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	res := FileResult{Source: b.relSource(path)}

	ctx, span := b.tracer.Start(ctx, "papacore.compile",
		trace.WithAttributes(attribute.String("file", res.Source)),
	)
	defer span.End()

	err := b.compile(ctx, path, &res)
	res.Duration = time.Since(start)

	if err != nil {
		res.Err = fmt.Errorf("compile %s: %w", res.Source, err)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.logger.ErrorContext(ctx, "compile failed", "file", res.Source, "error", err)
		b.record(ctx, kindModule, observability.StatusError, res.Duration, 0)

		return res
	}

	b.logger.InfoContext(ctx, "compiled", "file", res.Source, "output", res.Output)
	b.record(ctx, kindModule, observability.StatusOK, res.Duration, res.Bytes)

	if res.Story != "" {
		b.record(ctx, kindStory, observability.StatusOK, 0, res.StoryBytes)
	}

	return res
}

func (b *Builder) compile(ctx context.Context, path string, res *FileResult) error {
	outExt, ok := outputExtension(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSource, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	if b.maxSize > 0 && uint64(info.Size()) > b.maxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, info.Size(), b.maxSize)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	out, err := b.transformer.Transform(ctx, path, src)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(b.srcDir, path)
	if err != nil {
		return fmt.Errorf("relative path: %w", err)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + outExt
	outPath := filepath.Join(b.distDir, rel)

	if err := writeFile(outPath, []byte(out.Code)); err != nil {
		return err
	}

	res.Output = filepath.ToSlash(rel)
	res.Bytes = len(out.Code)
	res.Exports = out.Exports

	if b.cfg.Build.Stories && isStory(path) {
		page := b.storyPage(out.Exports, res.Output)
		mdRel := strings.TrimSuffix(rel, outExt) + ".md"

		if err := writeFile(filepath.Join(b.distDir, mdRel), []byte(page)); err != nil {
			return err
		}

		res.Story = filepath.ToSlash(mdRel)
		res.StoryBytes = len(page)

		if err := b.install(mdRel); err != nil {
			return err
		}
	}

	return b.install(rel)
}

// install copies a dist-relative file into the vault.
func (b *Builder) install(rel string) error {
	if b.cfg.TargetVault == "" {
		return nil
	}

	vault := b.cfg.TargetVault
	if !filepath.IsAbs(vault) {
		vault = filepath.Join(b.cfg.ProjectRoot, vault)
	}

	if err := copyFile(filepath.Join(b.distDir, rel), filepath.Join(vault, rel)); err != nil {
		return fmt.Errorf("install into vault: %w", err)
	}

	return nil
}

// clean empties the output directory. It refuses paths that would take the
// project or its sources with them.
func (b *Builder) clean() error {
	dist := filepath.Clean(b.distDir)
	root := filepath.Clean(b.cfg.ProjectRoot)

	if dist == root || dist == filepath.Dir(dist) || isWithin(b.srcDir, dist) {
		return fmt.Errorf("%w: %s", ErrUnsafeDist, dist)
	}

	if err := os.RemoveAll(dist); err != nil {
		return fmt.Errorf("clean %s: %w", dist, err)
	}

	if err := os.MkdirAll(dist, dirPerm); err != nil {
		return fmt.Errorf("create %s: %w", dist, err)
	}

	return nil
}

func (b *Builder) record(ctx context.Context, kind, status string, d time.Duration, written int) {
	if b.metrics != nil {
		b.metrics.RecordFile(ctx, kind, status, d, written)
	}
}

func (b *Builder) relSource(path string) string {
	rel, err := filepath.Rel(b.srcDir, path)
	if err != nil {
		return path
	}

	return filepath.ToSlash(rel)
}

func isModuleSource(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}

	_, ok := outputExtension(path)

	return ok
}

func outputExtension(path string) (string, bool) {
	switch filepath.Ext(path) {
	case ".tsx":
		return ".jsx", true
	case ".ts":
		return ".js", true
	default:
		return "", false
	}
}

func isStory(path string) bool {
	return strings.HasSuffix(path, ".stories.tsx")
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func copyFile(from, to string) error {
	data, err := os.ReadFile(from)
	if err != nil {
		return fmt.Errorf("read %s: %w", from, err)
	}

	return writeFile(to, data)
}
