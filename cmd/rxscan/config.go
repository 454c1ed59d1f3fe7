package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rxscan/internal/api"
	"github.com/jackzampolin/rxscan/internal/config"
	"github.com/jackzampolin/rxscan/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		path := cfgFile
		if path == "" {
			path = h.ConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Prompt overrides go in %s\n", h.PromptsPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with API keys masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		if file := e.config.ConfigFile(); file != "" && !api.IsStructuredOutput() {
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", file)
		}
		cfg := e.config.Get().Redacted()
		if api.IsStructuredOutput() {
			return api.Output(cfg)
		}
		// Text output has no useful rendering for a nested struct.
		return api.OutputTo(cmd.OutOrStdout(), api.OutputFormatYAML, cfg)
	},
}

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults [key]",
	Short: "List default settings, or describe one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := config.DefaultEntries()
		if len(args) == 1 {
			entry, err := config.Describe(args[0])
			if err != nil {
				return err
			}
			entries = []config.Entry{*entry}
		}
		if api.IsStructuredOutput() {
			return api.Output(entries)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tDEFAULT\tDESCRIPTION")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%v\t%s\n", e.Key, e.Value, e.Description)
		}
		return tw.Flush()
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema config files are validated against",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(config.SchemaJSON())
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configDefaultsCmd, configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}
