package pipeline

import (
	"context"

	"github.com/jackzampolin/rxscan/internal/prompts/direct"
)

// runDirect reads, searches and corrects the prescription in a single
// grounded call on the verification provider. The report keeps the usual
// shape with empty intermediate stages.
func (r *run) runDirect(ctx context.Context, in Input) (*Report, error) {
	unit, err := direct.CreateWorkUnit(direct.Input{
		Image:          in.Image,
		Region:         r.opts.Region,
		Registries:     r.opts.Registries,
		Temperature:    r.opts.ConsolidateTemperature,
		MaxTokens:      r.opts.MaxTokens,
		PromptOverride: r.promptText(direct.PromptKey),
	})
	if err != nil {
		return nil, err
	}

	report := r.newReport(in)
	sw := newStopwatch(r.logger)
	r.logger.Info("run started", "source", in.Source)

	sw.time(StageConsolidate, func() {
		res := r.verifier.Process(ctx, unit)
		if !res.Success {
			report.Final = errorText(res.Error)
			return
		}
		report.Final = res.Content()
	})

	return r.finish(ctx, report, sw)
}
