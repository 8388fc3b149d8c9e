package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FrBosquet/papacore/internal/build"
	"github.com/FrBosquet/papacore/pkg/observability"
)

func newBuildCommand(flags *globalFlags) *cobra.Command {
	var (
		workers   int
		noStories bool
		summary   bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile every module under the source directory",
		Long: `Clean the output directory, compile every .ts and .tsx module under the
source directory, write a story page for each *.stories.tsx module, and copy the
results into the target vault when one is configured.

Examples:
  papacore build
  papacore build -p ./my-vault-project -w 4
  papacore build --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sess, err := flags.open(observability.ModeBuild, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sess.close(ctx)

			if noStories {
				sess.cfg.Build.Stories = false
			}

			opts := []build.Option{
				build.WithLogger(sess.logger()),
				build.WithTracer(sess.providers.Tracer),
				build.WithMetrics(sess.providers.Metrics),
			}

			if cmd.Flags().Changed("workers") {
				opts = append(opts, build.WithWorkers(workers))
			}

			builder, err := build.New(sess.cfg, opts...)
			if err != nil {
				return err
			}

			result, buildErr := builder.Build(ctx)
			if result == nil {
				return buildErr
			}

			out := cmd.OutOrStdout()

			if summary && !flags.quiet {
				result.Render(out)
			}

			if buildErr != nil {
				color.New(color.FgRed).Fprintf(out, "Build finished with %d failed file(s)\n", result.Failed)

				return fmt.Errorf("build: %w", buildErr)
			}

			if !flags.quiet {
				color.New(color.FgGreen).Fprintf(out, "Build completed: %d file(s), %d stor%s in %s\n",
					result.Compiled, result.Stories, plural(result.Stories, "y", "ies"), result.Duration.Round(time.Millisecond))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of parallel workers (default: build.workers or number of CPUs)")
	cmd.Flags().BoolVar(&noStories, "no-stories", false, "skip story pages")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a per-file summary table")

	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
