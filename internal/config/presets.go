package config

import (
	"sort"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/models"
)

var Presets = map[string]map[string]*Config{
	models.LotkaVolterra: {
		"default": {
			Model:      models.LotkaVolterra,
			Simulation: dynamo.Config{TimeEnd: 100.0, TimeStep: 0.1, Method: "rk4"},
		},
		"long": {
			Model:      models.LotkaVolterra,
			Simulation: dynamo.Config{TimeEnd: 500.0, TimeStep: 0.05, Method: "rk4"},
		},
		"prey_boom": {
			Model:                 models.LotkaVolterra,
			Simulation:            dynamo.Config{TimeEnd: 100.0, TimeStep: 0.1, Method: "rk4"},
			InitialConcentrations: map[string]float64{"prey": 40.0},
		},
		"predation_sweep": {
			Model:      models.LotkaVolterra,
			Simulation: dynamo.Config{TimeEnd: 50.0, TimeStep: 0.1, Method: "rk4"},
			Scan:       ScanConfig{Parameter: "predation_rate", From: 0.05, To: 0.2, Points: 4, Workers: 4},
		},
	},
	models.Conversion: {
		"slow": {
			Model:      models.Conversion,
			Simulation: dynamo.Config{TimeEnd: 50.0, TimeStep: 0.1, Method: "rk4"},
		},
		"fast": {
			Model:      models.Conversion,
			Simulation: dynamo.Config{TimeEnd: 10.0, TimeStep: 0.01, Method: "rk4"},
			Parameters: map[string]float64{"k1": 1.0},
		},
		"euler": {
			Model:      models.Conversion,
			Simulation: dynamo.Config{TimeEnd: 50.0, TimeStep: 0.5, Method: "euler"},
		},
	},
	models.Dimerization: {
		"equilibrium": {
			Model:      models.Dimerization,
			Simulation: dynamo.Config{TimeEnd: 50.0, TimeStep: 0.01, Method: "rk4"},
		},
		"tight_binding": {
			Model:      models.Dimerization,
			Simulation: dynamo.Config{TimeEnd: 50.0, TimeStep: 0.01, Method: "rk4"},
			Parameters: map[string]float64{"k_on": 10.0},
		},
	},
}

// GetPreset returns a copy of a preset filled with the non-simulation
// defaults, or nil when model or preset is unknown.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}

	cfg := DefaultConfig()
	cfg.Model = p.Model
	cfg.Simulation = p.Simulation.WithDefaults()
	cfg.Parameters = copyMap(p.Parameters)
	cfg.InitialConcentrations = copyMap(p.InitialConcentrations)
	if p.Scan.Parameter != "" {
		cfg.Scan = p.Scan
		cfg.Scan.Values = append([]float64(nil), p.Scan.Values...)
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func copyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
