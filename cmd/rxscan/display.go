package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/jackzampolin/rxscan/internal/pipeline"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgYellow)
	failColor   = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

// writeReport renders a run report for the terminal.
func writeReport(w io.Writer, r *pipeline.Report) {
	headerColor.Fprintf(w, "=== %s ===\n", displaySource(r))
	fmt.Fprintf(w, "Run:  %s\n", r.RunID)
	fmt.Fprintf(w, "Mode: %s\n\n", r.Mode)

	if len(r.Passes) > 0 {
		labelColor.Fprintf(w, "Recognition passes (%d):\n", len(r.Passes))
		for _, p := range r.Passes {
			fmt.Fprintf(w, "  pass %d @ %.2f\n", p.Index, p.Temperature)
			writeIndented(w, p.Text, "    ")
		}
		fmt.Fprintln(w)
	}

	if len(r.Groups) > 0 {
		labelColor.Fprintf(w, "Candidate groups (%d from %d candidates):\n", len(r.Groups), len(r.Candidates))
		for _, g := range r.Groups {
			fmt.Fprintf(w, "  %d. %s\n", g.Position, g.Summary)
		}
		fmt.Fprintln(w)
	}

	if len(r.Verifications) > 0 {
		labelColor.Fprintln(w, "Verifications:")
		for _, v := range r.Verifications {
			title := fmt.Sprintf("  [%d] %s", v.Position, v.Original)
			if v.Failed {
				failColor.Fprintln(w, title+" (failed)")
			} else {
				fmt.Fprintln(w, title)
			}
			writeIndented(w, v.Text, "    ")
			for _, s := range v.Sources {
				dimColor.Fprintf(w, "    source: %s\n", s.URI)
			}
		}
		fmt.Fprintln(w)
	}

	labelColor.Fprintln(w, "Final:")
	writeIndented(w, r.Final, "  ")

	if len(r.Timings) > 0 {
		fmt.Fprintln(w)
		parts := make([]string, 0, len(r.Timings))
		for _, t := range r.Timings {
			d := time.Duration(t.Seconds * float64(time.Second)).Round(time.Millisecond)
			parts = append(parts, fmt.Sprintf("%s %s", t.Stage, d))
		}
		dimColor.Fprintf(w, "timings: %s\n", strings.Join(parts, ", "))
	}
	if r.Usage != nil {
		dimColor.Fprintf(w, "calls: %d (%d failed), tokens: %d\n", r.Usage.Count, r.Usage.ErrorCount, r.Usage.TotalTokens)
	}

	if len(r.Calls) > 0 {
		fmt.Fprintln(w)
		labelColor.Fprintf(w, "LLM calls (%d):\n", len(r.Calls))
		for _, c := range r.Calls {
			status := "ok"
			if !c.Success {
				status = "failed: " + c.Error
			}
			fmt.Fprintf(w, "  %s/%s %s %s (%s)\n", c.Stage, c.ItemKey, c.Provider, c.Model, status)
		}
	}
}

func displaySource(r *pipeline.Report) string {
	if r.Source != "" {
		return r.Source
	}
	return "prescription"
}

func writeIndented(w io.Writer, text, indent string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		dimColor.Fprintf(w, "%s(empty)\n", indent)
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "%s%s\n", indent, line)
	}
}
