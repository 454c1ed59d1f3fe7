package pipeline

import (
	"context"

	"github.com/jackzampolin/rxscan/internal/grouping"
	"github.com/jackzampolin/rxscan/internal/jobs"
	"github.com/jackzampolin/rxscan/internal/prompts/verify"
)

// verify checks every group with one grounded call, at most
// VerifyParallelism at a time. The result has one entry per group in group
// order; a failed call leaves an "Error: ..." placeholder.
func (r *run) verify(ctx context.Context, groups []grouping.Group) []Verification {
	out := make([]Verification, len(groups))
	override := r.promptText(r.mode.VerifyKey)

	units := make([]*jobs.WorkUnit, 0, len(groups))
	slots := make([]int, 0, len(groups))
	for i, g := range groups {
		out[i] = Verification{
			Key:      g.Key,
			Position: g.Position,
			Original: g.Best().Name,
			Dosage:   g.Dosage(),
		}

		unit, err := verify.CreateWorkUnit(verify.Input{
			Key:            r.mode.VerifyKey,
			Group:          g,
			Region:         r.opts.Region,
			Registries:     r.opts.Registries,
			Temperature:    r.opts.VerifyTemperature,
			MaxTokens:      r.opts.MaxTokens,
			PromptOverride: override,
		})
		if err != nil {
			r.logger.Warn("verification prompt failed", "group", g.Key, "error", err)
			out[i].Text, out[i].Failed = errorText(err), true
			continue
		}
		units = append(units, unit)
		slots = append(slots, i)
	}

	limit := min(r.opts.VerifyParallelism, len(units))
	results := jobs.RunBatch(ctx, r.verifier, units, limit)

	for j, res := range results {
		v := &out[slots[j]]
		if !res.Success {
			v.Text, v.Failed = errorText(res.Error), true
			continue
		}
		v.Text = res.Content()
		v.Sources = res.ChatResult.Sources
	}
	return out
}
