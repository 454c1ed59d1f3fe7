package pipeline

import (
	"errors"
	"fmt"

	"github.com/jackzampolin/rxscan/internal/config"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid pipeline options")

// MaxTemperature is the highest sampling temperature every supported
// provider accepts.
const MaxTemperature = 2.0

// temperatureSlack absorbs float error in base + i*step.
const temperatureSlack = 1e-9

// Options tunes one pipeline run.
type Options struct {
	Mode   string
	Passes int

	// Nil temperatures use the mode's preset.
	TemperatureBase *float64
	TemperatureStep *float64

	VerifyParallelism      int
	VerifyTemperature      float64
	ConsolidateTemperature float64
	ConsolidateGrounded    bool

	Region     string
	Registries []string
	MaxTokens  int
}

// DefaultOptions returns the options of the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig().Pipeline)
}

// OptionsFromConfig maps the pipeline config section to Options.
func OptionsFromConfig(c config.PipelineCfg) Options {
	return Options{
		Mode:                   c.Mode,
		Passes:                 c.Passes,
		TemperatureBase:        c.TemperatureBase,
		TemperatureStep:        c.TemperatureStep,
		VerifyParallelism:      c.VerifyParallelism,
		VerifyTemperature:      c.VerifyTemperature,
		ConsolidateTemperature: c.ConsolidateTemperature,
		ConsolidateGrounded:    c.ConsolidateGrounded,
		Region:                 c.Region,
		Registries:             append([]string(nil), c.Registries...),
		MaxTokens:              c.MaxTokens,
	}
}

// Validate checks the options against the registered modes.
func (o Options) Validate(modes *ModeRegistry) error {
	mode, err := modes.Get(o.Mode)
	if err != nil {
		return err
	}
	if o.Passes < 1 {
		return fmt.Errorf("%w: passes must be at least 1, got %d", ErrInvalidOptions, o.Passes)
	}
	if o.VerifyParallelism < 1 {
		return fmt.Errorf("%w: verify_parallelism must be at least 1, got %d", ErrInvalidOptions, o.VerifyParallelism)
	}
	if o.TemperatureBase != nil && *o.TemperatureBase < 0 {
		return fmt.Errorf("%w: temperature_base must not be negative", ErrInvalidOptions)
	}
	if o.VerifyTemperature < 0 || o.ConsolidateTemperature < 0 {
		return fmt.Errorf("%w: temperatures must not be negative", ErrInvalidOptions)
	}
	if o.VerifyTemperature > MaxTemperature || o.ConsolidateTemperature > MaxTemperature {
		return fmt.Errorf("%w: temperatures must not exceed %.1f", ErrInvalidOptions, MaxTemperature)
	}
	if !mode.Direct {
		for i, t := range o.Temperatures(mode) {
			if t > MaxTemperature+temperatureSlack {
				return fmt.Errorf("%w: pass %d of %d would run at temperature %.2f, above the %.1f maximum; lower passes or temperature_step",
					ErrInvalidOptions, i+1, o.Passes, t, MaxTemperature)
			}
		}
	}
	if o.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative", ErrInvalidOptions)
	}
	return nil
}

// Temperatures returns the recognition temperature of every pass, in pass
// order. Negative results are clamped to 0.
func (o Options) Temperatures(m Mode) []float64 {
	base, step := m.TemperatureBase, m.TemperatureStep
	if o.TemperatureBase != nil {
		base = *o.TemperatureBase
	}
	if o.TemperatureStep != nil {
		step = *o.TemperatureStep
	}

	temps := make([]float64, o.Passes)
	for i := range temps {
		t := base + float64(i)*step
		if t < 0 {
			t = 0
		}
		temps[i] = t
	}
	return temps
}
