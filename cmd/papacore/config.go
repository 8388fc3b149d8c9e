package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/FrBosquet/papacore/pkg/config"
)

func newConfigCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the project configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.LoadConfig(flags.project, flags.configPath)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()

				if cfg.File != "" {
					fmt.Fprintf(out, "# %s\n", cfg.File)
				}

				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)

				if err := enc.Encode(cfg); err != nil {
					return fmt.Errorf("encode config: %w", err)
				}

				return enc.Close()
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the configuration file against the schema and semantic rules",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.LoadConfig(flags.project, flags.configPath)
				if err != nil {
					color.New(color.FgRed).Fprintln(cmd.OutOrStdout(), "Configuration is invalid")

					return err
				}

				source := cfg.File
				if source == "" {
					source = "defaults"
				}

				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Configuration is valid (%s)\n", source)

				return nil
			},
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON schema for configuration files",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.OutOrStdout().Write(config.Schema()) //nolint:errcheck // best-effort stdout
			},
		},
	)

	return cmd
}
