package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr(v float64) *float64 { return &v }

func TestOptionsTemperatures(t *testing.T) {
	modes := DefaultModes()
	positional, _ := modes.Get(ModePositional)
	identity, _ := modes.Get(ModeIdentity)

	tests := []struct {
		name string
		mode Mode
		opts Options
		want []float64
	}{
		{"positional preset", positional, Options{Passes: 5}, []float64{0.7, 0.9, 1.1, 1.3, 1.5}},
		{"identity preset", identity, Options{Passes: 3}, []float64{1.0, 1.1, 1.2}},
		{"explicit base", positional, Options{Passes: 2, TemperatureBase: ptr(0)}, []float64{0, 0.2}},
		{"explicit both", identity, Options{Passes: 3, TemperatureBase: ptr(0.5), TemperatureStep: ptr(0.25)}, []float64{0.5, 0.75, 1.0}},
		{"negative clamps", positional, Options{Passes: 2, TemperatureBase: ptr(0.1), TemperatureStep: ptr(-0.5)}, []float64{0.1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.Temperatures(tt.mode)
			if len(got) != len(tt.want) {
				t.Fatalf("Temperatures() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !near(got[i], tt.want[i]) {
					t.Errorf("Temperatures()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	modes := DefaultModes()

	if err := DefaultOptions().Validate(modes); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{"zero passes", func(o *Options) { o.Passes = 0 }, ErrInvalidOptions},
		{"zero parallelism", func(o *Options) { o.VerifyParallelism = 0 }, ErrInvalidOptions},
		{"negative base", func(o *Options) { o.TemperatureBase = ptr(-1) }, ErrInvalidOptions},
		{"negative verify temperature", func(o *Options) { o.VerifyTemperature = -0.1 }, ErrInvalidOptions},
		{"negative max tokens", func(o *Options) { o.MaxTokens = -1 }, ErrInvalidOptions},
		{"unknown mode", func(o *Options) { o.Mode = "nope" }, ErrUnknownMode},
		{"positional passes past max temperature", func(o *Options) { o.Passes = 10 }, ErrInvalidOptions},
		{"identity passes past max temperature", func(o *Options) {
			o.Mode = ModeIdentity
			o.Passes = 12
		}, ErrInvalidOptions},
		{"hot explicit base", func(o *Options) {
			o.Passes = 1
			o.TemperatureBase = ptr(2.5)
		}, ErrInvalidOptions},
		{"hot consolidate temperature", func(o *Options) { o.ConsolidateTemperature = 2.1 }, ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if err := opts.Validate(modes); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidate_TemperatureCeiling(t *testing.T) {
	modes := DefaultModes()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		// 0.7 + 0.2*6 = 1.9
		{"positional seven passes", func(o *Options) { o.Passes = 7 }},
		// 1.0 + 0.1*10 lands on the ceiling
		{"identity eleven passes", func(o *Options) {
			o.Mode = ModeIdentity
			o.Passes = 11
		}},
		{"direct ignores pass temperatures", func(o *Options) {
			o.Mode = ModeDirect
			o.Passes = 20
		}},
		{"negative step keeps many passes low", func(o *Options) {
			o.Passes = 15
			o.TemperatureStep = ptr(-0.1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if err := opts.Validate(modes); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}

	t.Run("error names the offending pass", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Passes = 10
		err := opts.Validate(modes)
		if err == nil || !strings.Contains(err.Error(), "pass 8 of 10") {
			t.Errorf("Validate() error = %v, want it to name pass 8", err)
		}
	})
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Mode != ModePositional || opts.Passes != 5 || opts.VerifyParallelism != 5 {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
	if diff := cmp.Diff([]string{"MedEx", "Arogga"}, opts.Registries); diff != "" {
		t.Errorf("Registries mismatch (-want +got):\n%s", diff)
	}
}

func TestModeRegistry(t *testing.T) {
	t.Run("defaults in order", func(t *testing.T) {
		if diff := cmp.Diff([]string{ModePositional, ModeIdentity, ModeDirect}, DefaultModes().Names()); diff != "" {
			t.Errorf("Names() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		r := DefaultModes()
		err := r.Register(Mode{Name: ModeDirect, Direct: true})
		if !errors.Is(err, ErrModeAlreadyRegistered) {
			t.Errorf("error = %v, want ErrModeAlreadyRegistered", err)
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		r := NewModeRegistry()
		if err := r.Register(Mode{Name: "x", Strategy: "alphabetical"}); err == nil {
			t.Error("expected error for unknown strategy")
		}
		if len(r.List()) != 0 {
			t.Error("failed registration should not add the mode")
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := DefaultModes().Get("nope"); !errors.Is(err, ErrUnknownMode) {
			t.Errorf("error = %v, want ErrUnknownMode", err)
		}
	})

	t.Run("custom mode", func(t *testing.T) {
		r := DefaultModes()
		positional, _ := r.Get(ModePositional)
		positional.Name = "cold"
		positional.TemperatureBase = 0.1
		if err := r.Register(positional); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		got, err := r.Get("cold")
		if err != nil || got.TemperatureBase != 0.1 {
			t.Errorf("Get(cold) = %+v, %v", got, err)
		}
	})
}

func TestTimings(t *testing.T) {
	sw := newStopwatch(discardLogger())
	sw.time(StageParse, func() {})
	timings := sw.finish()

	if len(timings) != 2 || timings[0].Stage != StageParse || timings[1].Stage != StageTotal {
		t.Errorf("timings = %+v", timings)
	}
	if _, ok := timings.Get(StageVerify); ok {
		t.Error("Get() found a stage that never ran")
	}
}
