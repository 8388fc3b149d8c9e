package build

import "fmt"

// storyExport picks the component a story page renders: the only exported
// name when the module exports one, "default" otherwise.
func storyExport(exports []string) string {
	if len(exports) == 1 {
		return exports[0]
	}

	return "default"
}

// storyPage renders the markdown page for a compiled story module. exports
// are the module's export keys and importPath is the output-root-relative
// path of the compiled module.
func (b *Builder) storyPage(exports []string, importPath string) string {
	name := storyExport(exports)
	binding := name

	// "default" is reserved; it cannot be destructured into a local name.
	if name == "default" {
		binding = "default: Story"
		name = "Story"
	}

	loader := b.cfg.Transform.Namespace + "." + b.cfg.Transform.Loader

	return fmt.Sprintf("\n\n```datacorejsx\n// Papacore build %d\nconst { %s } = await %s('%s');\n\nreturn <%s />\n```\n",
		b.now().UnixMilli(), binding, loader, importPath, name)
}
