// Package transform rewrites ES modules written in TypeScript or JavaScript
// into scripts for a host that loads modules with an awaited global loader
// and exposes framework primitives on a global namespace object.
package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/FrBosquet/papacore/pkg/scope"
	"github.com/FrBosquet/papacore/pkg/syntax"
)

// Default host names.
const (
	DefaultNamespace = "dc"
	DefaultLoader    = "require"
)

var errInvalidOption = errors.New("invalid transform option")

// Options configures a Transformer. Zero values select the defaults.
type Options struct {
	// Namespace is the host's global object, "dc" by default.
	Namespace string
	// Loader is the loading method on Namespace, "require" by default.
	Loader string
	// FrameworkPackages are module sources whose imports are dropped.
	FrameworkPackages []string
	// Vocabulary lists identifiers rewritten to Namespace members.
	Vocabulary []string
	// KeepTypes skips erasing TypeScript syntax after the module rewrite.
	KeepTypes bool
	// Resolver maps relative specifiers; defaults to one probing the OS.
	Resolver *PathResolver
	// Parser is shared between transformers when set.
	Parser *syntax.Parser
	Logger *slog.Logger
}

// Result is the output of one file transform.
type Result struct {
	Code string
	// Exports are the keys of the aggregate return object, in order.
	Exports []string
	// Imports are the module-load strings emitted, in order.
	Imports []string
	// Globals counts identifiers rewritten to namespace members.
	Globals int
}

// Transformer runs the rewrite pipeline. It holds no per-file state and is
// safe for concurrent use.
type Transformer struct {
	namespace  string
	loader     string
	framework  Set
	vocabulary Set
	keepTypes  bool
	resolver   *PathResolver
	parser     *syntax.Parser
	logger     *slog.Logger
}

// New validates opts and creates a Transformer.
func New(opts Options) (*Transformer, error) {
	t := &Transformer{
		namespace:  opts.Namespace,
		loader:     opts.Loader,
		keepTypes:  opts.KeepTypes,
		resolver:   opts.Resolver,
		parser:     opts.Parser,
		logger:     opts.Logger,
	}

	if t.namespace == "" {
		t.namespace = DefaultNamespace
	}

	if t.loader == "" {
		t.loader = DefaultLoader
	}

	if !isIdentifier(t.namespace) {
		return nil, fmt.Errorf("%w: namespace %q", errInvalidOption, t.namespace)
	}

	if !isIdentifierName(t.loader) {
		return nil, fmt.Errorf("%w: loader %q", errInvalidOption, t.loader)
	}

	framework := opts.FrameworkPackages
	if framework == nil {
		framework = defaultFrameworkPackages
	}

	vocabulary := opts.Vocabulary
	if vocabulary == nil {
		vocabulary = defaultVocabulary
	}

	t.framework = NewSet(framework...)
	t.vocabulary = NewSet(vocabulary...)

	if t.resolver == nil {
		t.resolver = NewPathResolver(nil)
	}

	if t.parser == nil {
		t.parser = syntax.NewParser()
	}

	if t.logger == nil {
		t.logger = slog.Default()
	}

	return t, nil
}

// Transform rewrites one module. path locates the file for relative import
// resolution and error reports.
func (t *Transformer) Transform(ctx context.Context, path string, src []byte) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", path, err)
	}

	tree, err := t.parser.Parse(ctx, abs, src)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", path, err)
	}

	return t.TransformTree(ctx, tree)
}

// TransformTree rewrites an already parsed module in place and prints it.
func (t *Transformer) TransformTree(ctx context.Context, tree *syntax.Tree) (*Result, error) {
	if bad := tree.FirstError(); bad != nil {
		return nil, errorfAt(bad, ErrSyntax, "unexpected %q", truncate(bad.Text(), 40))
	}

	analysis := scope.Analyze(tree)
	res := &Result{}

	res.Globals = t.rewriteGlobals(analysis)

	// The top-level statement list is snapshotted before any export node is touched.
	snapshot := append([]*syntax.Node(nil), tree.Root.Children...)

	actions, exports, err := t.collectExports(snapshot, analysis)
	if err != nil {
		return nil, err
	}

	ret, err := exports.returnStatement()
	if err != nil {
		return nil, err
	}

	res.Imports, err = t.rewriteImports(tree, analysis)
	if err != nil {
		return nil, err
	}

	if err := t.rewriteExports(tree, actions); err != nil {
		return nil, err
	}

	if ret != "" {
		tree.Append(ret)
	}

	if !t.keepTypes {
		if err := EraseTypes(tree); err != nil {
			return nil, err
		}
	}

	res.Code = tree.Print()
	res.Exports = exports.keys()

	t.logger.DebugContext(ctx, "transformed module",
		"path", tree.Path,
		"imports", len(res.Imports),
		"exports", len(res.Exports),
		"globals", res.Globals,
	)

	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
