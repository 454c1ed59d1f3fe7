package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rxscan/internal/api"
	"github.com/jackzampolin/rxscan/internal/config"
	"github.com/jackzampolin/rxscan/internal/home"
	"github.com/jackzampolin/rxscan/internal/prompts"
	"github.com/jackzampolin/rxscan/internal/providers"
	"github.com/jackzampolin/rxscan/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "rxscan",
	Short: "Extract medicines from handwritten prescriptions with LLM consensus",
	Long: `rxscan reads a photographed handwritten prescription and returns the
medicines on it, with dosage and instructions.

The pipeline:
  - Several recognition passes over the image at increasing temperature
  - Parsing every pass into medicine candidates with confidence
  - Grouping candidates by list position or by name
  - Grounded web search verification of each group against regional registries
  - One consolidation call that writes the final list`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.rxscan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "rxscan home directory (default: ~/.rxscan)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "warn", "log level: debug, info, warn or error",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, err := api.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		api.SetOutputFormat(format)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the stderr logger from --log-level.
func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}

// env is the shared state commands that talk to providers need.
type env struct {
	logger   *slog.Logger
	home     *home.Dir
	config   *config.Manager
	registry *providers.Registry
	prompts  *prompts.Resolver
}

// loadEnv resolves the home directory, loads config and builds the provider
// registry and prompt resolver.
func loadEnv() (*env, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, err
	}
	mgr.SetLogger(logger)
	cfg := mgr.Get()
	if file := mgr.ConfigFile(); file != "" {
		logger.Debug("loaded config", "file", file)
	}

	registry := providers.NewRegistry()
	registry.SetLogger(logger)
	registry.Reload(cfg.ToProviderRegistryConfig())

	return &env{
		logger:   logger,
		home:     h,
		config:   mgr,
		registry: registry,
		prompts:  prompts.NewResolver(promptsDir(cfg, h), logger),
	}, nil
}

// promptsDir returns the configured override directory or the home default.
func promptsDir(cfg *config.Config, h *home.Dir) string {
	if cfg.Pipeline.PromptsDir != "" {
		return cfg.Pipeline.PromptsDir
	}
	return h.PromptsPath()
}
