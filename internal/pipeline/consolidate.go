package pipeline

import (
	"context"

	"github.com/jackzampolin/rxscan/internal/prompts/consolidate"
)

// consolidate asks for the final list in one call and returns the answer
// verbatim. A failure becomes the "Error: ..." text rather than aborting.
func (r *run) consolidate(ctx context.Context, verifications []Verification) string {
	entries := make([]consolidate.Entry, len(verifications))
	for i, v := range verifications {
		entries[i] = consolidate.Entry{
			Index:    i + 1,
			Position: v.Position,
			Original: v.Original,
			Dosage:   v.Dosage,
			Text:     v.Text,
		}
	}

	unit, err := consolidate.CreateWorkUnit(consolidate.Input{
		Key:            r.mode.ConsolidateKey,
		Region:         r.opts.Region,
		Entries:        entries,
		Temperature:    r.opts.ConsolidateTemperature,
		Grounded:       r.opts.ConsolidateGrounded,
		MaxTokens:      r.opts.MaxTokens,
		PromptOverride: r.promptText(r.mode.ConsolidateKey),
	})
	if err != nil {
		r.logger.Warn("consolidation prompt failed", "error", err)
		return errorText(err)
	}

	res := r.consolidator.Process(ctx, unit)
	if !res.Success {
		return errorText(res.Error)
	}
	return res.Content()
}
