package config

import (
	"fmt"
	"os"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/models"
	"github.com/san-kum/biosim/internal/sbml"
	"github.com/san-kum/biosim/internal/scan"
)

const (
	DefaultModel     = models.LotkaVolterra
	DefaultDataDir   = "./runs"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultWorkers   = 1
)

// Config is the file configuration of the biosim command. Model is a
// bundled model name or a path to a document.
type Config struct {
	Model                 string             `yaml:"model"`
	Simulation            dynamo.Config      `yaml:"simulation"`
	Parameters            map[string]float64 `yaml:"parameters,omitempty"`
	InitialConcentrations map[string]float64 `yaml:"initial_concentrations,omitempty"`
	Scan                  ScanConfig         `yaml:"scan"`
	DataDir               string             `yaml:"data_dir"`
	LogLevel              string             `yaml:"log_level"`
	LogFormat             string             `yaml:"log_format"`
}

// ScanConfig selects the swept parameter. Explicit Values win over the
// From/To/Points range.
type ScanConfig struct {
	Parameter string    `yaml:"parameter,omitempty"`
	Values    []float64 `yaml:"values,omitempty"`
	From      float64   `yaml:"from,omitempty"`
	To        float64   `yaml:"to,omitempty"`
	Points    int       `yaml:"points,omitempty"`
	Workers   int       `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Simulation: dynamo.DefaultConfig(),
		Scan:       ScanConfig{Workers: DefaultWorkers},
		DataDir:    DefaultDataDir,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Simulation = cfg.Simulation.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	); err != nil {
		return err
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	return c.Scan.Validate()
}

func (s *ScanConfig) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Workers, validation.Min(0)),
		validation.Field(&s.Points, validation.Min(0)),
	)
}

// ResolvedValues returns the values to sweep.
func (s ScanConfig) ResolvedValues() []float64 {
	if len(s.Values) > 0 {
		return append([]float64(nil), s.Values...)
	}
	return scan.Range(s.From, s.To, s.Points)
}

// LoadModel parses the configured model and applies the parameter and
// initial concentration overrides in key order.
func (c *Config) LoadModel() (*sbml.Model, error) {
	src, err := models.Resolve(c.Model)
	if err != nil {
		return nil, err
	}
	m, err := sbml.ParseString(src)
	if err != nil {
		return nil, err
	}
	return c.ApplyOverrides(m)
}

func (c *Config) ApplyOverrides(m *sbml.Model) (*sbml.Model, error) {
	var err error
	for _, id := range sortedKeys(c.Parameters) {
		if m, err = m.WithParameter(id, c.Parameters[id]); err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(c.InitialConcentrations) {
		if m, err = m.WithInitialConcentration(id, c.InitialConcentrations[id]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
