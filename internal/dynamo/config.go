package dynamo

import (
	"errors"
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeEnd  = 100.0
	DefaultTimeStep = 0.1
	DefaultMethod   = "rk4"

	// MaxSteps bounds timeEnd/timeStep.
	MaxSteps = 10_000_000
	// MaxValues bounds the recorded trajectory, samples × species.
	MaxValues = 1 << 28
)

// Config is the closed set of options recognized for one simulation run.
// Method is translated to an integration rule by the integrators package.
type Config struct {
	TimeEnd       float64 `yaml:"timeEnd" json:"timeEnd"`
	TimeStep      float64 `yaml:"timeStep" json:"timeStep"`
	Method        string  `yaml:"method" json:"method"`
	ClampNegative bool    `yaml:"clampNegative" json:"clampNegative"`
}

func DefaultConfig() Config {
	return Config{
		TimeEnd:  DefaultTimeEnd,
		TimeStep: DefaultTimeStep,
		Method:   DefaultMethod,
	}
}

// DecodeConfig reads a YAML or JSON config object. Unknown fields are
// ignored; an absent method falls back to rk4. The result is validated.
func DecodeConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ConfigError{Err: err}
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) WithDefaults() Config {
	if c.Method == "" {
		c.Method = DefaultMethod
	}
	return c
}

// Validate checks timeEnd > 0 and 0 < timeStep <= timeEnd, both finite,
// with at most MaxSteps steps between them.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.TimeEnd, validation.Required, validation.Min(0.0).Exclusive(), validation.By(finite)),
		validation.Field(&c.TimeStep, validation.Required, validation.Min(0.0).Exclusive(), validation.By(finite),
			validation.Max(c.TimeEnd).Error("must not exceed timeEnd"),
			validation.By(c.stepLimit)),
	)
	if err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

func (c *Config) stepLimit(value interface{}) error {
	if c.TimeEnd/c.TimeStep > MaxSteps {
		return fmt.Errorf("timeEnd/timeStep exceeds %d steps", MaxSteps)
	}
	return nil
}

// CheckCapacity rejects a run whose trajectory for numSpecies species
// would hold more than MaxValues values. It assumes a validated config.
func (c Config) CheckCapacity(numSpecies int) error {
	samples := StepCount(c.TimeEnd, c.TimeStep) + 1
	if numSpecies > 0 && samples > MaxValues/numSpecies {
		return &ConfigError{Err: fmt.Errorf("%d samples of %d species exceed %d recorded values", samples, numSpecies, MaxValues)}
	}
	return nil
}

func finite(value interface{}) error {
	v, ok := value.(float64)
	if !ok {
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("must be finite")
	}
	return nil
}

// StepCount is floor(timeEnd/timeStep), tolerating quotients that land a
// rounding error below an integer (0.3/0.1 gives 3).
func StepCount(timeEnd, timeStep float64) int {
	q := timeEnd / timeStep
	n := math.Floor(q)
	if q-n > 1-1e-9 {
		n++
	}
	return int(n)
}
