package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem answers existence probes for the path resolver.
type FileSystem interface {
	Exists(path string) bool
}

// OSFileSystem probes the real filesystem.
type OSFileSystem struct{}

// Exists reports whether path names an existing file or directory.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// probeExtensions are tried in order on extension-less specifiers.
var probeExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// outputExtensions maps source extensions to compiled extensions.
var outputExtensions = map[string]string{
	".tsx": ".jsx",
	".ts":  ".js",
}

const (
	srcSegment  = "/src/"
	distSegment = "/dist/"
	distDir     = "dist"
)

// PathResolver maps relative import specifiers to paths relative to the
// project's output root.
type PathResolver struct {
	fs FileSystem
}

// NewPathResolver creates a resolver probing fs. A nil fs uses the OS.
func NewPathResolver(fs FileSystem) *PathResolver {
	if fs == nil {
		fs = OSFileSystem{}
	}

	return &PathResolver{fs: fs}
}

// IsRelative reports whether specifier is a relative module path.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, ".")
}

// Resolve returns the module-load string for specifier imported from
// currentFile. currentFile must be absolute and contain a /src/ segment.
func (r *PathResolver) Resolve(currentFile, specifier string) (string, error) {
	current := filepath.ToSlash(currentFile)

	srcIndex := strings.Index(current, srcSegment)
	if srcIndex < 0 {
		return "", fmt.Errorf("%w: %s", ErrNoSourceRoot, currentFile)
	}

	target := filepath.Join(filepath.Dir(currentFile), filepath.FromSlash(specifier))

	if filepath.Ext(target) == "" {
		for _, ext := range probeExtensions {
			if r.fs.Exists(target + ext) {
				target += ext

				break
			}
		}
	}

	if out, ok := outputExtensions[filepath.Ext(target)]; ok {
		target = strings.TrimSuffix(target, filepath.Ext(target)) + out
	}

	output := strings.Replace(filepath.ToSlash(target), srcSegment, distSegment, 1)
	distRoot := current[:srcIndex] + "/" + distDir

	rel, err := filepath.Rel(filepath.FromSlash(distRoot), filepath.FromSlash(output))
	if err != nil {
		return "", fmt.Errorf("resolve %s from %s: %w", specifier, currentFile, err)
	}

	return filepath.ToSlash(rel), nil
}
