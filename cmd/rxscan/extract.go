package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rxscan/internal/api"
	"github.com/jackzampolin/rxscan/internal/config"
	"github.com/jackzampolin/rxscan/internal/ingest"
	"github.com/jackzampolin/rxscan/internal/pipeline"
)

// overrides are the per-invocation pipeline flags shared by extract and watch.
type overrides struct {
	mode                string
	passes              int
	provider            string
	verifyProvider      string
	consolidateProvider string
	region              string
	registries          []string
	parallelism         int
	ungrounded          bool
}

func (o *overrides) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.mode, "mode", "", "extraction mode, one of the names listed by rxscan modes")
	f.IntVar(&o.passes, "passes", 0, "number of recognition passes")
	f.StringVar(&o.provider, "provider", "", "LLM provider for recognition (and for every stage without its own)")
	f.StringVar(&o.verifyProvider, "verify-provider", "", "LLM provider for verification")
	f.StringVar(&o.consolidateProvider, "consolidate-provider", "", "LLM provider for consolidation")
	f.StringVar(&o.region, "region", "", "region whose drug registries ground verification")
	f.StringSliceVar(&o.registries, "registry", nil, "drug registry to name in verification prompts (repeatable)")
	f.IntVar(&o.parallelism, "parallelism", 0, "concurrent verification calls")
	f.BoolVar(&o.ungrounded, "no-grounding", false, "run consolidation without web search")
}

// apply returns a copy of cfg with the flags that were set layered on top.
func (o *overrides) apply(cfg *config.Config) *config.Config {
	out := *cfg
	if o.mode != "" {
		out.Pipeline.Mode = o.mode
	}
	if o.passes > 0 {
		out.Pipeline.Passes = o.passes
	}
	if o.provider != "" {
		out.Defaults.LLMProvider = o.provider
	}
	if o.verifyProvider != "" {
		out.Defaults.VerifyProvider = o.verifyProvider
	}
	if o.consolidateProvider != "" {
		out.Defaults.ConsolidateProvider = o.consolidateProvider
	}
	if o.region != "" {
		out.Pipeline.Region = o.region
	}
	if len(o.registries) > 0 {
		out.Pipeline.Registries = o.registries
	}
	if o.parallelism > 0 {
		out.Pipeline.VerifyParallelism = o.parallelism
	}
	if o.ungrounded {
		out.Pipeline.ConsolidateGrounded = false
	}
	return &out
}

var (
	extractFlags  overrides
	extractReport bool
	extractTrace  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract the medicines from a prescription image or PDF",
	Long: `Run the full pipeline over one prescription scan and print the
consolidated medicine list.

With --report the recognition passes, candidate groups and verifications
are printed as well. --trace adds every LLM call with its prompt and response.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}

		scan, err := ingest.Load(args[0], e.logger)
		if err != nil {
			return err
		}

		cfg := extractFlags.apply(e.config.Get())
		p, err := pipeline.NewFromConfig(cfg, e.registry, e.prompts, e.logger)
		if err != nil {
			return err
		}

		report, err := p.Run(cmd.Context(), pipeline.Input{Image: scan.Image, Source: scan.Path})
		if err != nil {
			return err
		}
		return printResult(cmd, report, extractReport, extractTrace)
	},
}

// extractResult is the structured output without --report.
type extractResult struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Mode   string `json:"mode" yaml:"mode"`
	Source string `json:"source" yaml:"source"`
	Final  string `json:"final" yaml:"final"`
}

func printResult(cmd *cobra.Command, report *pipeline.Report, full, trace bool) error {
	if !trace {
		report.Calls = nil
	}
	out := cmd.OutOrStdout()

	if api.IsStructuredOutput() {
		if full || trace {
			return api.OutputTo(out, api.GetOutputFormat(), report)
		}
		return api.OutputTo(out, api.GetOutputFormat(), extractResult{
			RunID:  report.RunID,
			Mode:   report.Mode,
			Source: report.Source,
			Final:  report.Final,
		})
	}

	if full || trace {
		writeReport(out, report)
		return nil
	}
	fmt.Fprintln(out, strings.TrimSpace(report.Final))
	return nil
}

func init() {
	extractFlags.register(extractCmd)
	extractCmd.Flags().BoolVar(&extractReport, "report", false, "print every intermediate stage")
	extractCmd.Flags().BoolVar(&extractTrace, "trace", false, "include every LLM call in the report")
	rootCmd.AddCommand(extractCmd)
}
