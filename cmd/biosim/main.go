package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/biosim/internal/config"
	"github.com/san-kum/biosim/internal/logging"
	"github.com/san-kum/biosim/internal/scan"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	timeEnd       float64
	timeStep      float64
	method        string
	clampNegative bool
	paramSets     []string
	initSets      []string
	noSave        bool
	jsonOut       bool

	scanValues []float64
	scanFrom   float64
	scanTo     float64
	scanPoints int
	workers    int

	species     []string
	entry       int
	phase       bool
	xAxis       int
	yAxis       int
	peakSpecies int
	transient   float64
	outPath     string

	gridSpecs []string
	targets   []string
)

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "biosim",
		Short:         "biochemical reaction network simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate a bundled model or SBML file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimulationFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write the result as JSON to stdout")

	scanCmd := &cobra.Command{
		Use:   "scan [model] [parameter]",
		Short: "run one simulation per value of a parameter",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runScan,
	}
	addSimulationFlags(scanCmd)
	scanCmd.Flags().Float64SliceVar(&scanValues, "values", nil, "parameter values")
	scanCmd.Flags().Float64Var(&scanFrom, "from", 0, "range start")
	scanCmd.Flags().Float64Var(&scanTo, "to", 0, "range end")
	scanCmd.Flags().IntVar(&scanPoints, "points", 0, "number of range points")
	scanCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "parallel simulations")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot species trajectories of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&species, "species", nil, "species ids to plot (default all)")
	plotCmd.Flags().IntVar(&entry, "entry", 0, "scan entry to plot")
	plotCmd.Flags().BoolVar(&phase, "phase", false, "phase portrait instead of time series")
	plotCmd.Flags().IntVar(&xAxis, "x-axis", 0, "species index for x-axis")
	plotCmd.Flags().IntVar(&yAxis, "y-axis", 1, "species index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summarize a stored run or scan",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&peakSpecies, "species-index", 0, "species index for scan peaks")
	analyzeCmd.Flags().Float64Var(&transient, "transient", 0, "ignore scan samples before this time")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file (- for stdout)")

	speciesCmd := &cobra.Command{
		Use:   "species [model]",
		Short: "show species, parameters and compiled reactions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showSpecies,
	}
	speciesCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list bundled models",
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model] [method...]",
		Short: "compare integration methods on the same model",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	addSimulationFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark a model across step sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchModel,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file (- for stdout)")
	exportSVGCmd.Flags().IntVar(&entry, "entry", 0, "scan entry to render")
	exportSVGCmd.Flags().BoolVar(&phase, "phase", false, "phase portrait instead of time series")
	exportSVGCmd.Flags().IntVar(&xAxis, "x-axis", 0, "species index for x-axis")
	exportSVGCmd.Flags().IntVar(&yAxis, "y-axis", 1, "species index for y-axis")

	fitCmd := &cobra.Command{
		Use:   "fit [model]",
		Short: "grid-search parameters against target final concentrations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  fitModel,
	}
	addSimulationFlags(fitCmd)
	fitCmd.Flags().StringSliceVar(&gridSpecs, "grid", nil, "parameter grid id=from:to:points")
	fitCmd.Flags().StringSliceVar(&targets, "target", nil, "target final concentration id=value")

	rootCmd.AddCommand(runCmd, scanCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, speciesCmd, modelsCmd, presetsCmd, compareCmd, benchCmd, fitCmd, exportSVGCmd)
	return rootCmd
}

func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&timeEnd, "time-end", 0, "simulation end time")
	cmd.Flags().Float64Var(&timeStep, "time-step", 0, "integration step")
	cmd.Flags().StringVar(&method, "method", "", "integration method (rk4, euler, midpoint, heun)")
	cmd.Flags().BoolVar(&clampNegative, "clamp", false, "clamp negative concentrations to zero after each step")
	cmd.Flags().StringSliceVar(&paramSets, "set", nil, "parameter override id=value")
	cmd.Flags().StringSliceVar(&initSets, "init", nil, "initial concentration override id=value")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
}

// resolveConfig layers preset, config file and flags, in that order, over
// the defaults.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if model != "" {
		cfg.Model = model
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if model != "" {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("time-end") {
		cfg.Simulation.TimeEnd = timeEnd
	}
	if flags.Changed("time-step") {
		cfg.Simulation.TimeStep = timeStep
	}
	if flags.Changed("method") {
		cfg.Simulation.Method = method
	}
	if flags.Changed("clamp") {
		cfg.Simulation.ClampNegative = clampNegative
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = workers
	}

	var err error
	if cfg.Parameters, err = applyAssignments(cfg.Parameters, paramSets); err != nil {
		return nil, err
	}
	if cfg.InitialConcentrations, err = applyAssignments(cfg.InitialConcentrations, initSets); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyAssignments merges "id=value" pairs into dst.
func applyAssignments(dst map[string]float64, pairs []string) (map[string]float64, error) {
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid assignment %q: want id=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid assignment %q: %w", pair, err)
		}
		if dst == nil {
			dst = make(map[string]float64)
		}
		dst[id] = v
	}
	return dst, nil
}

// parseGrid reads "id=from:to:points" specs.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, item := range specs {
		id, raw, ok := strings.Cut(item, "=")
		parts := strings.Split(raw, ":")
		if !ok || id == "" || len(parts) != 3 {
			return nil, nil, fmt.Errorf("invalid grid %q: want id=from:to:points", item)
		}
		from, err1 := strconv.ParseFloat(parts[0], 64)
		to, err2 := strconv.ParseFloat(parts[1], 64)
		points, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || points < 1 {
			return nil, nil, fmt.Errorf("invalid grid %q: want id=from:to:points", item)
		}
		names = append(names, id)
		ranges = append(ranges, scan.Range(from, to, points))
	}
	return names, ranges, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
}
