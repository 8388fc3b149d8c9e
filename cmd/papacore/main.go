// Package main provides the entry point for the papacore CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FrBosquet/papacore/pkg/config"
	"github.com/FrBosquet/papacore/pkg/observability"
	"github.com/FrBosquet/papacore/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := newRootCommand().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbose    bool
	quiet      bool
	noColor    bool
	project    string
	configPath string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "papacore",
		Short: "Compile TypeScript component modules into vault scripts",
		Long: `Papacore rewrites TypeScript and TSX modules into scripts a note vault can
load with an awaited loader, and builds story pages that render them.

Commands:
  build      Compile the project into the output directory
  transform  Rewrite a single file and print the result
  config     Show or validate the project configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "suppress output")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	pf.StringVarP(&flags.project, "project", "p", ".", "project root directory")
	pf.StringVarP(&flags.configPath, "config", "c", "", "configuration file (default: papacore.{json,yaml} in the project root)")

	rootCmd.AddCommand(
		newBuildCommand(flags),
		newTransformCommand(flags),
		newConfigCommand(flags),
		newVersionCommand(),
	)

	return rootCmd
}

// session is the loaded configuration and telemetry of one command run.
type session struct {
	cfg       *config.Config
	providers observability.Providers
}

func (s *session) logger() *slog.Logger {
	return s.providers.Logger
}

// close flushes telemetry. A flush failure is logged, not returned.
func (s *session) close(ctx context.Context) {
	if err := s.providers.Shutdown(ctx); err != nil {
		s.providers.Logger.WarnContext(ctx, "telemetry shutdown", "error", err)
	}
}

func (f *globalFlags) open(mode observability.AppMode, logOut io.Writer) (*session, error) {
	cfg, err := config.LoadConfig(f.project, f.configPath)
	if err != nil {
		return nil, err
	}

	obsCfg := observability.FromSettings(settingsOf(cfg), mode, version.Version)
	obsCfg.LogOutput = logOut

	switch {
	case f.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case f.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return &session{cfg: cfg, providers: providers}, nil
}

func settingsOf(cfg *config.Config) observability.Settings {
	return observability.Settings{
		LogLevel:           cfg.Logging.Level,
		LogFormat:          cfg.Logging.Format,
		ServiceName:        cfg.Telemetry.ServiceName,
		Environment:        cfg.Telemetry.Environment,
		OTLPEndpoint:       cfg.Telemetry.OTLPEndpoint,
		OTLPHeaders:        cfg.Telemetry.OTLPHeaders,
		OTLPInsecure:       cfg.Telemetry.OTLPInsecure,
		SampleRatio:        cfg.Telemetry.SampleRatio,
		ShutdownTimeoutSec: cfg.Telemetry.ShutdownTimeoutSec,
	}
}
