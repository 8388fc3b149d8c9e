package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/FrBosquet/papacore/pkg/observability"
	"github.com/FrBosquet/papacore/pkg/transform"
)

func newTransformCommand(flags *globalFlags) *cobra.Command {
	var (
		showDiff bool
		noStrip  bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Rewrite a single module and print the result",
		Long: `Rewrite one module the way build does and print the script, or a line diff
against the source with --diff.

Examples:
  papacore transform src/components/Button.tsx
  papacore transform --diff src/components/Button.tsx
  papacore transform --no-strip -o /tmp/Button.tsx src/components/Button.tsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, err := flags.open(observability.ModeTransform, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sess.close(ctx)

			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			opts := sess.cfg.TransformOptions()
			opts.Logger = sess.logger()

			if noStrip {
				opts.KeepTypes = true
			}

			t, err := transform.New(opts)
			if err != nil {
				return err
			}

			ctx, span := sess.providers.Tracer.Start(ctx, "papacore.transform")
			defer span.End()

			res, err := t.Transform(ctx, args[0], src)
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(res.Code), 0o644); err != nil { //nolint:gosec // output is a user-chosen script path
					return fmt.Errorf("write %s: %w", output, err)
				}
			}

			switch {
			case showDiff:
				writeLineDiff(cmd.OutOrStdout(), string(src), res.Code)
			case output == "":
				fmt.Fprint(cmd.OutOrStdout(), res.Code)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a line diff against the source instead of the script")
	cmd.Flags().BoolVar(&noStrip, "no-strip", false, "keep TypeScript syntax in the output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the script to this file")

	return cmd
}

// writeLineDiff prints a unified-style line diff: removed lines in red with
// "-", added lines in green with "+", unchanged lines indented.
func writeLineDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				removed.Fprintf(w, "-%s\n", line)
			case diffmatchpatch.DiffInsert:
				added.Fprintf(w, "+%s\n", line)
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(w, " %s\n", line)
			}
		}
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}
