package sim

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/integrators"
	"github.com/san-kum/biosim/internal/kinetics"
	"github.com/san-kum/biosim/internal/sbml"
)

// LargeRunSteps is the step count above which a run is logged as slow.
const LargeRunSteps = 10000

type Option func(*Simulator)

// WithLogger sets the logger for run progress. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Simulator runs a compiled model. It is immutable once built and safe
// for concurrent Run calls; each run allocates its own state.
type Simulator struct {
	model  *sbml.Model
	net    *kinetics.Network
	logger *slog.Logger
}

// New compiles the model's reactions.
func New(model *sbml.Model, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		model:  model,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	net, err := kinetics.Compile(model)
	if err != nil {
		return nil, fmt.Errorf("compile model %q: %w", model.ID(), err)
	}
	s.net = net

	s.logger.Debug("model compiled",
		slog.String("model", model.ID()),
		slog.Int("species", net.NumSpecies()),
		slog.Int("reactions", net.NumReactions()),
	)
	return s, nil
}

func (s *Simulator) Model() *sbml.Model          { return s.model }
func (s *Simulator) Network() *kinetics.Network { return s.net }

// Run integrates from the model's initial concentrations with the model's
// parameter values.
func (s *Simulator) Run(cfg dynamo.Config) (*dynamo.Result, error) {
	return s.RunFrom(s.model.InitialState(), s.model.ParameterVector(), cfg)
}

// RunFrom integrates from an explicit initial state and parameter
// snapshot, both in model index order. Neither slice is retained.
func (s *Simulator) RunFrom(x0 dynamo.State, params []float64, cfg dynamo.Config) (*dynamo.Result, error) {
	cfg, err := CheckConfig(cfg)
	if err != nil {
		return nil, err
	}

	ode, err := s.net.Bind(params)
	if err != nil {
		return nil, err
	}

	steps := dynamo.StepCount(cfg.TimeEnd, cfg.TimeStep)
	logger := s.logger.With(slog.String("model", s.model.ID()))
	logger.Info("running simulation",
		slog.Float64("time_end", cfg.TimeEnd),
		slog.Float64("time_step", cfg.TimeStep),
		slog.String("method", cfg.Method),
		slog.Int("samples", steps+1),
	)
	if steps > LargeRunSteps {
		logger.Warn("large simulation may be slow", slog.Int("steps", steps))
	}

	start := time.Now()
	result, err := integrators.Integrate(ode, x0, cfg)
	if err != nil {
		return nil, err
	}
	result.SpeciesNames = s.model.SpeciesNames()

	if !result.Final().IsValid() {
		logger.Warn("trajectory contains non-finite values")
	}
	logger.Info("simulation complete",
		slog.Int("samples", result.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// CheckConfig applies defaults and rejects an invalid config or an
// unknown method before any integration work.
func CheckConfig(cfg dynamo.Config) (dynamo.Config, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if _, err := integrators.ParseMethod(cfg.Method); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Simulate runs one full simulation of model under cfg.
func Simulate(model *sbml.Model, cfg dynamo.Config, opts ...Option) (*dynamo.Result, error) {
	cfg, err := CheckConfig(cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(model, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(cfg)
}
