package pipeline

import (
	"context"
	"sort"

	"github.com/jackzampolin/rxscan/internal/candidate"
	"github.com/jackzampolin/rxscan/internal/grouping"
	"github.com/jackzampolin/rxscan/internal/jobs"
	"github.com/jackzampolin/rxscan/internal/prompts/recognize"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// recognitionUnits builds one work unit per temperature.
func (r *run) recognitionUnits(img providers.Image, temps []float64) ([]*jobs.WorkUnit, error) {
	override := r.promptText(r.mode.RecognizeKey)
	units := make([]*jobs.WorkUnit, len(temps))
	for i, t := range temps {
		unit, err := recognize.CreateWorkUnit(recognize.Input{
			Key:            r.mode.RecognizeKey,
			Pass:           i + 1,
			Image:          img,
			Temperature:    t,
			MaxTokens:      r.opts.MaxTokens,
			PromptOverride: override,
		})
		if err != nil {
			return nil, err
		}
		units[i] = unit
	}
	return units, nil
}

// recognize runs every pass concurrently and returns the successful ones
// ordered by ascending temperature. Failed passes are dropped.
func (r *run) recognize(ctx context.Context, units []*jobs.WorkUnit, temps []float64) []Pass {
	results := jobs.RunBatch(ctx, r.recognizer, units, len(units))

	passes := make([]Pass, 0, len(results))
	for i, res := range results {
		if !res.Success {
			continue
		}
		passes = append(passes, Pass{
			Index:       i + 1,
			Temperature: temps[i],
			Text:        res.Content(),
		})
	}
	sort.SliceStable(passes, func(i, j int) bool {
		return passes[i].Temperature < passes[j].Temperature
	})

	if len(passes) < len(units) {
		r.logger.Warn("recognition passes failed", "failed", len(units)-len(passes), "of", len(units))
	}
	for _, pass := range passes {
		r.logger.Debug("recognition pass", "pass", pass.Index, "temperature", pass.Temperature, "text", pass.Text)
	}
	return passes
}

// parsePasses collects candidates from every pass, in pass order.
func parsePasses(passes []Pass) []candidate.Candidate {
	texts := make([]string, len(passes))
	for i, pass := range passes {
		texts[i] = pass.Text
	}
	candidates := candidate.ParseAll(texts)
	if candidates == nil {
		candidates = []candidate.Candidate{}
	}
	return candidates
}

// group applies the mode's grouping strategy.
func (r *run) group(candidates []candidate.Candidate) []grouping.Group {
	strategy, err := grouping.Lookup(r.mode.Strategy)
	if err != nil {
		r.logger.Error("grouping strategy unavailable", "strategy", r.mode.Strategy, "error", err)
		return []grouping.Group{}
	}
	groups := strategy.Group(candidates)
	if groups == nil {
		groups = []grouping.Group{}
	}
	for _, g := range groups {
		r.logger.Debug("candidate group", "key", g.Key, "summary", g.Summary)
	}
	return groups
}
