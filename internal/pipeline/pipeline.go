// Package pipeline runs the multi-pass extraction: recognition passes at
// increasing temperature, parsing, grouping, grounded verification of each
// group and a final consolidation call.
//
// Every stage is a full barrier. Per-call failures are recovered inside the
// stage (an excluded pass, an "Error: ..." placeholder) so a run always
// produces a report once its input has been validated.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/rxscan/internal/candidate"
	"github.com/jackzampolin/rxscan/internal/config"
	"github.com/jackzampolin/rxscan/internal/grouping"
	"github.com/jackzampolin/rxscan/internal/jobs"
	"github.com/jackzampolin/rxscan/internal/llmcall"
	"github.com/jackzampolin/rxscan/internal/metrics"
	"github.com/jackzampolin/rxscan/internal/prompts"
	"github.com/jackzampolin/rxscan/internal/prompts/consolidate"
	"github.com/jackzampolin/rxscan/internal/prompts/direct"
	"github.com/jackzampolin/rxscan/internal/prompts/recognize"
	"github.com/jackzampolin/rxscan/internal/prompts/verify"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// ErrNoImage is returned by Run when the input carries no image bytes.
var ErrNoImage = errors.New("no image data")

// Input is one prescription to extract.
type Input struct {
	Image  providers.Image
	Source string // file name, for reports and logs
}

// Config configures a Pipeline.
type Config struct {
	// Providers resolves the stage providers by name at the start of
	// every run, so a reloaded registry takes effect on the next run.
	Providers *providers.Registry

	RecognizeProvider   string
	VerifyProvider      string // empty: RecognizeProvider
	ConsolidateProvider string // empty: RecognizeProvider

	Options Options

	Modes   *ModeRegistry     // nil: DefaultModes()
	Prompts *prompts.Resolver // nil: embedded prompts only
	Logger  *slog.Logger
}

// Pipeline runs extractions. It is safe for concurrent use; concurrent runs
// share one rate limiter per provider.
type Pipeline struct {
	providers *providers.Registry
	modes     *ModeRegistry
	prompts   *prompts.Resolver
	logger    *slog.Logger

	mu                  sync.RWMutex
	options             Options
	recognizeProvider   string
	verifyProvider      string
	consolidateProvider string

	limitersMu sync.Mutex
	limiters   map[string]*providers.RateLimiter
}

// New validates cfg and creates a pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Providers == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	modes := cfg.Modes
	if modes == nil {
		modes = DefaultModes()
	}
	if err := cfg.Options.Validate(modes); err != nil {
		return nil, err
	}
	if cfg.Prompts != nil {
		RegisterPrompts(cfg.Prompts)
	}

	p := &Pipeline{
		providers: cfg.Providers,
		modes:     modes,
		prompts:   cfg.Prompts,
		logger:    logger.With("component", "pipeline"),
		limiters:  make(map[string]*providers.RateLimiter),
	}
	p.setProviders(cfg.RecognizeProvider, cfg.VerifyProvider, cfg.ConsolidateProvider)
	p.options = cfg.Options
	return p, nil
}

// NewFromConfig creates a pipeline from the loaded configuration.
func NewFromConfig(c *config.Config, registry *providers.Registry, resolver *prompts.Resolver, logger *slog.Logger) (*Pipeline, error) {
	return New(Config{
		Providers:           registry,
		RecognizeProvider:   c.Defaults.LLMProvider,
		VerifyProvider:      c.Defaults.VerifyProviderName(),
		ConsolidateProvider: c.Defaults.ConsolidateProviderName(),
		Options:             OptionsFromConfig(c.Pipeline),
		Prompts:             resolver,
		Logger:              logger,
	})
}

// Reconfigure swaps options and provider selection for subsequent runs.
// Runs already in flight keep the values they started with.
func (p *Pipeline) Reconfigure(c *config.Config) error {
	opts := OptionsFromConfig(c.Pipeline)
	if err := opts.Validate(p.modes); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = opts
	p.setProvidersLocked(c.Defaults.LLMProvider, c.Defaults.VerifyProviderName(), c.Defaults.ConsolidateProviderName())
	return nil
}

// Options returns the options the next run will use.
func (p *Pipeline) Options() Options {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.options
}

// Modes returns the registered modes.
func (p *Pipeline) Modes() *ModeRegistry {
	return p.modes
}

func (p *Pipeline) setProviders(recognizeName, verifyName, consolidateName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setProvidersLocked(recognizeName, verifyName, consolidateName)
}

func (p *Pipeline) setProvidersLocked(recognizeName, verifyName, consolidateName string) {
	if verifyName == "" {
		verifyName = recognizeName
	}
	if consolidateName == "" {
		consolidateName = recognizeName
	}
	p.recognizeProvider = recognizeName
	p.verifyProvider = verifyName
	p.consolidateProvider = consolidateName
}

// limiter returns the shared rate limiter for a provider.
func (p *Pipeline) limiter(name string, client providers.LLMClient) *providers.RateLimiter {
	p.limitersMu.Lock()
	defer p.limitersMu.Unlock()
	rl, ok := p.limiters[name]
	if !ok || rl.Status().RequestsPerSecond != client.RequestsPerSecond() {
		rl = providers.NewRateLimiter(client.RequestsPerSecond())
		p.limiters[name] = rl
	}
	return rl
}

// run is the state of one extraction.
type run struct {
	id      string
	mode    Mode
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Recorder
	calls   *llmcall.Recorder
	prompts *prompts.Resolver

	recognizer   *jobs.Worker
	verifier     *jobs.Worker
	consolidator *jobs.Worker
}

// newRun snapshots options and resolves a worker per stage.
func (p *Pipeline) newRun() (*run, error) {
	p.mu.RLock()
	opts := p.options
	names := [3]string{p.recognizeProvider, p.verifyProvider, p.consolidateProvider}
	p.mu.RUnlock()

	mode, err := p.modes.Get(opts.Mode)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	r := &run{
		id:      id,
		mode:    mode,
		opts:    opts,
		logger:  p.logger.With("run_id", id, "mode", mode.Name),
		metrics: metrics.NewRecorder(id),
		calls:   llmcall.NewRecorder(),
		prompts: p.prompts,
	}

	workers := make([]*jobs.Worker, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: no LLM provider configured", providers.ErrProviderNotFound)
		}
		client, err := p.providers.GetLLM(name)
		if err != nil {
			return nil, err
		}
		w, err := jobs.NewWorker(jobs.WorkerConfig{
			Name:        name,
			Logger:      r.logger,
			LLMClient:   client,
			RateLimiter: p.limiter(name, client),
			RunID:       id,
			Metrics:     r.metrics,
			Calls:       r.calls,
		})
		if err != nil {
			return nil, err
		}
		workers[i] = w
	}
	r.recognizer, r.verifier, r.consolidator = workers[0], workers[1], workers[2]
	return r, nil
}

// promptText returns the override text for key, or "" to use the embedded
// default.
func (r *run) promptText(key string) string {
	if r.prompts == nil {
		return ""
	}
	p, err := r.prompts.Resolve(key)
	if err != nil || !p.IsOverride {
		return ""
	}
	return p.Text
}

// Run extracts the medicines in one prescription image.
//
// Only invalid input is returned as an error before any call is made: an
// empty image, an unknown mode or a missing provider. If ctx ends mid-run
// the partial report is returned together with ctx's error.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Report, error) {
	if len(in.Image.Data) == 0 {
		return nil, ErrNoImage
	}

	r, err := p.newRun()
	if err != nil {
		return nil, err
	}

	if r.mode.Direct {
		return r.runDirect(ctx, in)
	}

	// Recognition requests are rendered before any call so a broken prompt
	// override fails the run up front.
	temps := r.opts.Temperatures(r.mode)
	units, err := r.recognitionUnits(in.Image, temps)
	if err != nil {
		return nil, err
	}

	report := r.newReport(in)
	sw := newStopwatch(r.logger)
	r.logger.Info("run started", "source", in.Source, "passes", len(units))

	sw.time(StageRecognize, func() {
		report.Passes = r.recognize(ctx, units, temps)
	})
	sw.time(StageParse, func() {
		report.Candidates = parsePasses(report.Passes)
	})
	sw.time(StageGroup, func() {
		report.Groups = r.group(report.Candidates)
	})
	sw.time(StageVerify, func() {
		report.Verifications = r.verify(ctx, report.Groups)
	})
	sw.time(StageConsolidate, func() {
		report.Final = r.consolidate(ctx, report.Verifications)
	})

	return r.finish(ctx, report, sw)
}

func (r *run) newReport(in Input) *Report {
	return &Report{
		RunID:         r.id,
		Mode:          r.mode.Name,
		Source:        in.Source,
		StartedAt:     time.Now().UTC(),
		Passes:        []Pass{},
		Candidates:    []candidate.Candidate{},
		Groups:        []grouping.Group{},
		Verifications: []Verification{},
	}
}

// finish attaches timings, usage and the call trace.
func (r *run) finish(ctx context.Context, report *Report, sw *stopwatch) (*Report, error) {
	report.Timings = sw.finish()
	report.Usage = r.metrics.Summary()
	report.Calls = r.calls.Calls()

	r.logger.Info("run complete",
		"passes", len(report.Passes),
		"candidates", len(report.Candidates),
		"groups", len(report.Groups),
		"calls", report.Usage.Count,
		"failed_calls", report.Usage.ErrorCount,
		"tokens", report.Usage.TotalTokens)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run %s interrupted: %w", r.id, err)
	}
	return report, nil
}

// RegisterPrompts registers every embedded prompt the pipeline uses.
func RegisterPrompts(r *prompts.Resolver) {
	recognize.RegisterPrompts(r)
	verify.RegisterPrompts(r)
	consolidate.RegisterPrompts(r)
	direct.RegisterPrompts(r)
}
