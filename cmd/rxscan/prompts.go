package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rxscan/internal/api"
	"github.com/jackzampolin/rxscan/internal/pipeline"
	"github.com/jackzampolin/rxscan/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect the prompts each stage sends",
	Long: `Every stage prompt is a Go template with an embedded default. A file named
<key>.tmpl in the prompts directory (pipeline.prompts_dir, default
~/.rxscan/prompts) replaces the default for that key.`,
}

// promptInfo is one row of `prompts list`.
type promptInfo struct {
	Key         string   `json:"key" yaml:"key"`
	Description string   `json:"description" yaml:"description"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Override    bool     `json:"override" yaml:"override"`
	Hash        string   `json:"hash" yaml:"hash"`
}

// loadPrompts returns a resolver with every stage prompt registered and the
// override directory it reads from.
func loadPrompts() (*prompts.Resolver, string, error) {
	e, err := loadEnv()
	if err != nil {
		return nil, "", err
	}
	pipeline.RegisterPrompts(e.prompts)
	return e.prompts, promptsDir(e.config.Get(), e.home), nil
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt keys and whether they are overridden",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, _, err := loadPrompts()
		if err != nil {
			return err
		}

		var infos []promptInfo
		for _, p := range resolver.AllEmbedded() {
			resolved, err := resolver.Resolve(p.Key)
			if err != nil {
				return err
			}
			infos = append(infos, promptInfo{
				Key:         p.Key,
				Description: p.Description,
				Variables:   resolved.Variables,
				Override:    resolved.IsOverride,
				Hash:        resolved.Hash[:12],
			})
		}
		if api.IsStructuredOutput() {
			return api.Output(infos)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tSOURCE\tHASH\tDESCRIPTION")
		for _, info := range infos {
			source := "embedded"
			if info.Override {
				source = "override"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Key, source, info.Hash, info.Description)
		}
		return tw.Flush()
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the prompt text a stage will use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, _, err := loadPrompts()
		if err != nil {
			return err
		}
		resolved, err := resolver.Resolve(args[0])
		if err != nil {
			return err
		}
		if api.IsStructuredOutput() {
			return api.Output(resolved)
		}
		fmt.Fprint(cmd.OutOrStdout(), resolved.Text)
		return nil
	},
}

var promptsExportForce bool

var promptsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the embedded prompts into the prompts directory for editing",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, dir, err := loadPrompts()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}

		for _, p := range resolver.AllEmbedded() {
			path := filepath.Join(dir, p.Key+".tmpl")
			if _, err := os.Stat(path); err == nil && !promptsExportForce {
				fmt.Fprintf(cmd.OutOrStdout(), "skip  %s (exists)\n", path)
				continue
			}
			if err := os.WriteFile(path, []byte(p.Text), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	promptsExportCmd.Flags().BoolVar(&promptsExportForce, "force", false, "overwrite existing override files")
	promptsCmd.AddCommand(promptsListCmd, promptsShowCmd, promptsExportCmd)
	rootCmd.AddCommand(promptsCmd)
}
