package transform

import (
	"errors"
	"fmt"

	"github.com/FrBosquet/papacore/pkg/syntax"
)

// Sentinel errors.
var (
	// ErrEmptyImport is returned for an import with no specifiers that is not type-only.
	ErrEmptyImport = errors.New("import has no specifiers")
	// ErrUnsupportedImport is returned for import forms the host cannot load.
	ErrUnsupportedImport = errors.New("unsupported import form")
	// ErrUnsupportedExport is returned for export forms that cannot become a return entry.
	ErrUnsupportedExport = errors.New("unsupported export form")
	// ErrInvalidExportName is returned when an exported local is not a bare identifier.
	ErrInvalidExportName = errors.New("exported name is not a valid identifier")
	// ErrNoSourceRoot is returned when the current file does not live under a /src/ directory.
	ErrNoSourceRoot = errors.New("file is not under a src directory")
	// ErrSyntax is returned when the source does not parse.
	ErrSyntax = syntax.ErrSyntax
	// ErrUnsupportedSyntax is returned for TypeScript constructs with runtime semantics that are not compiled.
	ErrUnsupportedSyntax = errors.New("unsupported syntax")
)

// Error is a transform failure located in a source file.
type Error struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorAt locates err at node n.
func errorAt(n *syntax.Node, err error) *Error {
	return &Error{Path: n.Tree().Path, Line: n.Line, Column: n.Column, Err: err}
}

// errorfAt locates a sentinel wrapped with detail at node n.
func errorfAt(n *syntax.Node, sentinel error, format string, args ...any) *Error {
	return errorAt(n, fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}
