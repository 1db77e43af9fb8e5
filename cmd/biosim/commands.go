package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/biosim/internal/analysis"
	"github.com/san-kum/biosim/internal/config"
	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/export"
	"github.com/san-kum/biosim/internal/integrators"
	"github.com/san-kum/biosim/internal/kinetics"
	"github.com/san-kum/biosim/internal/metrics"
	"github.com/san-kum/biosim/internal/models"
	"github.com/san-kum/biosim/internal/optim"
	"github.com/san-kum/biosim/internal/sbml"
	"github.com/san-kum/biosim/internal/scan"
	"github.com/san-kum/biosim/internal/sim"
	"github.com/san-kum/biosim/internal/storage"
	"github.com/san-kum/biosim/internal/viz"
)

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func loadModel(cfg *config.Config, logger *slog.Logger) (*sbml.Model, error) {
	model, err := cfg.LoadModel()
	if err != nil {
		return nil, err
	}
	logger.Info("model loaded",
		slog.String("model", model.ID()),
		slog.Int("species", model.NumSpecies()),
		slog.Int("reactions", model.NumReactions()),
	)
	return model, nil
}

func title(text string) string {
	return viz.GradientText(text, lipgloss.Color("#00ffff"), lipgloss.Color("#ff00ff"))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, firstArg(args))
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	model, err := loadModel(cfg, logger)
	if err != nil {
		return err
	}

	s, err := sim.New(model, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := s.Run(cfg.Simulation)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if jsonOut {
		return storage.WriteJSON(os.Stdout, result)
	}

	fmt.Println(title(fmt.Sprintf("%s (%s)", model.Name(), model.ID())))
	fmt.Println(viz.KeyValue("method", cfg.Simulation.Method))
	fmt.Println(viz.KeyValue("samples", result.Len()))
	fmt.Println(viz.KeyValue("elapsed", elapsed))
	fmt.Println()
	fmt.Print(viz.SummaryTable(result, analysis.Summarize(result)))
	fmt.Println()

	values := metrics.Evaluate(result, metrics.Default()...)
	for _, name := range sortedNames(values) {
		fmt.Println(viz.KeyValue(name, fmt.Sprintf("%.6g", values[name])))
	}

	if i, ok := analysis.FirstNonFinite(result); ok {
		fmt.Println(viz.WarningText.Render(fmt.Sprintf("trajectory diverged at t=%g; run not stored", result.Time[i])))
		return nil
	}
	if noSave {
		return nil
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Model:   model.ID(),
		Source:  cfg.Model,
		Config:  cfg.Simulation,
		Species: model.SpeciesIDs(),
		Metrics: values,
	}, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, firstArg(args))
	if err != nil {
		return err
	}
	if len(args) > 1 {
		cfg.Scan.Parameter = args[1]
	}
	if cmd.Flags().Changed("values") {
		cfg.Scan.Values = scanValues
	}
	if cmd.Flags().Changed("points") {
		cfg.Scan.Values = nil
		cfg.Scan.From, cfg.Scan.To, cfg.Scan.Points = scanFrom, scanTo, scanPoints
	}
	if cfg.Scan.Parameter == "" {
		return errors.New("no scan parameter: pass it as an argument or set scan.parameter")
	}
	values := cfg.Scan.ResolvedValues()
	if len(values) == 0 {
		return errors.New("no scan values: use --values or --from/--to/--points")
	}

	logger := newLogger(cfg)
	model, err := loadModel(cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := scan.Scan(model, cfg.Scan.Parameter, values, cfg.Simulation,
		scan.WithWorkers(cfg.Scan.Workers),
		scan.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	fmt.Println(title(fmt.Sprintf("scan %s over %s", model.ID(), cfg.Scan.Parameter)))
	fmt.Println(viz.KeyValue("runs", len(results)))
	fmt.Println(viz.KeyValue("elapsed", time.Since(start)))
	fmt.Println()

	ids := model.SpeciesIDs()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := []string{strings.ToUpper(cfg.Scan.Parameter)}
	for _, id := range ids {
		header = append(header, "FINAL "+id)
	}
	header = append(header, "PERIOD "+ids[0])
	fmt.Fprintln(w, strings.Join(header, "\t"))

	diverged := false
	for _, r := range results {
		row := []string{fmt.Sprintf("%g", r.ParameterValue)}
		for _, v := range r.Results.Final() {
			row = append(row, fmt.Sprintf("%.6g", v))
		}
		period := analysis.DominantPeriod(r.Results.Trajectory(0), cfg.Simulation.TimeStep)
		row = append(row, fmt.Sprintf("%.4g", period))
		fmt.Fprintln(w, strings.Join(row, "\t"))

		if _, ok := analysis.FirstNonFinite(r.Results); ok {
			diverged = true
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if diverged {
		fmt.Println(viz.WarningText.Render("some runs diverged; scan not stored"))
		return nil
	}
	if noSave {
		return nil
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveScan(storage.RunMetadata{
		Model:     model.ID(),
		Source:    cfg.Model,
		Config:    cfg.Simulation,
		Species:   ids,
		Parameter: cfg.Scan.Parameter,
	}, results)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMODEL\tTIME\tEND\tSTEP\tMETHOD\tSAMPLES\tPARAMETER")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%s\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.TimeEnd,
			run.Config.TimeStep,
			run.Config.Method,
			run.Samples,
			run.Parameter,
		)
	}

	return w.Flush()
}

// loadTrajectory returns the run's result, or one entry of a scan.
func loadTrajectory(st *storage.Store, meta *storage.RunMetadata) (*dynamo.Result, string, error) {
	if meta.Kind != storage.KindScan {
		result, err := st.LoadResult(meta.ID)
		if errors.Is(err, storage.ErrNotFound) {
			result, err = st.LoadStates(meta.ID)
		}
		return result, "", err
	}

	results, err := st.LoadScan(meta.ID)
	if err != nil {
		return nil, "", err
	}
	if entry < 0 || entry >= len(results) {
		return nil, "", fmt.Errorf("scan entry %d out of range [0,%d)", entry, len(results))
	}
	label := fmt.Sprintf("%s = %g", meta.Parameter, results[entry].ParameterValue)
	return results[entry].Results, label, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	result, label, err := loadTrajectory(st, meta)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	if label != "" {
		fmt.Printf("entry: %s\n", label)
	}
	fmt.Printf("samples: %d\n\n", result.Len())

	if phase {
		portrait := analysis.PhasePortraitFromResult(result, xAxis, yAxis)
		if portrait == nil {
			return fmt.Errorf("species index out of range: x=%d y=%d (species: %d)", xAxis, yAxis, result.NumSpecies)
		}
		fmt.Printf("phase portrait: %s vs %s\n\n", speciesName(meta, yAxis), speciesName(meta, xAxis))
		fmt.Print(analysis.PhasePortraitToASCII(portrait, 60, 20))
		return nil
	}

	indices := make([]int, 0, len(species))
	for _, id := range species {
		idx := indexOf(meta.Species, id)
		if idx < 0 {
			return fmt.Errorf("unknown species %q (available: %v)", id, meta.Species)
		}
		indices = append(indices, idx)
	}

	graph, err := viz.PlotSpecies(result, indices, viz.DefaultPlotOptions())
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(title("analysis: " + meta.ID))
	fmt.Println(viz.KeyValue("model", meta.Model))

	if meta.Kind == storage.KindScan {
		results, err := st.LoadScan(meta.ID)
		if err != nil {
			return err
		}
		fmt.Println(viz.KeyValue("peaks of", speciesName(meta, peakSpecies)))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tPEAKS\tVALUES\n", strings.ToUpper(meta.Parameter))
		for _, p := range analysis.SweepPeaks(results, peakSpecies, transient) {
			vals := make([]string, 0, len(p.Peaks))
			for _, v := range p.Peaks {
				vals = append(vals, fmt.Sprintf("%.4g", v))
			}
			fmt.Fprintf(w, "%g\t%d\t%s\n", p.Param, len(p.Peaks), strings.Join(vals, " "))
		}
		return w.Flush()
	}

	result, _, err := loadTrajectory(st, meta)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(viz.SummaryTable(result, analysis.Summarize(result)))
	fmt.Println()

	ones := make([]float64, result.NumSpecies)
	for i := range ones {
		ones[i] = 1
	}
	fmt.Println(viz.KeyValue("total drift", fmt.Sprintf("%.3e", analysis.Drift(result, ones))))
	for _, name := range sortedNames(meta.Metrics) {
		fmt.Println(viz.KeyValue(name, fmt.Sprintf("%.6g", meta.Metrics[name])))
	}

	for s := 0; s < result.NumSpecies; s++ {
		series := result.Trajectory(s)
		trend := "oscillating"
		switch {
		case analysis.Monotonic(series, true, 0):
			trend = "increasing"
		case analysis.Monotonic(series, false, 0):
			trend = "decreasing"
		}
		period := analysis.DominantPeriod(series, meta.Config.TimeStep)
		line := trend
		if period > 0 && trend == "oscillating" {
			line = fmt.Sprintf("%s, period %.3f", trend, period)
		}
		fmt.Println(viz.KeyValue(speciesName(meta, s), line))
	}

	if len(result.Values) > 0 {
		spectrum := analysis.PowerSpectrum(powerOfTwoPrefix(result.Trajectory(0)))
		if len(spectrum) > 4 {
			opts := viz.DefaultPlotOptions()
			opts.Caption = "power spectrum (" + speciesName(meta, 0) + ")"
			fmt.Println()
			fmt.Println(viz.PlotSeries(spectrum[1:len(spectrum)/4], opts))
		}
	}
	return nil
}

func powerOfTwoPrefix(data []float64) []float64 {
	n := 1
	for n*2 <= len(data) {
		n *= 2
	}
	return data[:n]
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	if meta.Kind == storage.KindScan {
		results, err := st.LoadScan(meta.ID)
		if err != nil {
			return err
		}
		out := os.Stdout
		if outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	result, _, err := loadTrajectory(st, meta)
	if err != nil {
		return err
	}
	return storage.ExportJSON(outPath, result)
}

func showSpecies(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	model, err := cfg.LoadModel()
	if err != nil {
		return err
	}
	net, err := kinetics.Compile(model)
	if err != nil {
		return err
	}

	fmt.Println(title(fmt.Sprintf("%s (%s)", model.Name(), model.ID())))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tNAME\tCOMPARTMENT\tINITIAL")
	for _, sp := range model.Species() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\n", sp.ID, sp.Name, sp.Compartment, sp.InitialConcentration)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PARAMETER\tVALUE")
	for _, p := range model.Parameters() {
		fmt.Fprintf(w, "%s\t%g\n", p.ID, p.Value)
	}
	fmt.Fprintln(w)

	params := model.ParameterVector()
	laws := net.RateLaws()
	fmt.Fprintln(w, "REACTION\tEQUATION\tCONSTANT\tVALUE\tRESOLVED BY")
	for i, r := range model.Reactions() {
		law := laws[i]
		value := law.Constant.Local
		if law.Constant.Index >= 0 {
			value = params[law.Constant.Index]
		}
		fmt.Fprintf(w, "%s\t%s -> %s\t%s\t%g\t%s\n",
			r.ID,
			equationSide(r.Reactants),
			equationSide(r.Products),
			law.Constant.ID,
			value,
			law.Constant.Source,
		)
	}
	return w.Flush()
}

func equationSide(ids []string) string {
	if len(ids) == 0 {
		return "∅"
	}
	return strings.Join(ids, " + ")
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tID\tSPECIES\tREACTIONS\tPRESETS")
	for _, name := range models.Names() {
		model, err := sbml.ParseString(models.MustSource(name))
		if err != nil {
			return fmt.Errorf("bundled model %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			name, model.ID(), model.NumSpecies(), model.NumReactions(),
			strings.Join(config.ListPresets(name), ","))
	}
	return w.Flush()
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	model, err := loadModel(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	s, err := sim.New(model)
	if err != nil {
		return err
	}

	names := args[1:]
	if len(names) == 0 {
		for _, m := range integrators.Methods() {
			names = append(names, m.String())
		}
	}

	ones := make([]float64, model.NumSpecies())
	for i := range ones {
		ones[i] = 1
	}

	fmt.Printf("comparing methods for %s (step=%g, end=%g)\n\n", model.ID(), cfg.Simulation.TimeStep, cfg.Simulation.TimeEnd)
	fmt.Printf("%-10s  %-6s  %-14s  %-12s  %-10s\n", "method", "order", "final total", "total drift", "time_ms")
	fmt.Println(strings.Repeat("-", 60))

	for _, name := range names {
		m, err := integrators.ParseMethod(name)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		runCfg := cfg.Simulation
		runCfg.Method = m.String()

		start := time.Now()
		result, err := s.Run(runCfg)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		fmt.Printf("%-10s  %-6d  %14.6f  %12.2e  %10.2f\n",
			m, m.Order(), result.Final().Sum(), analysis.Drift(result, ones),
			float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Model = args[0]
	}
	model, err := cfg.LoadModel()
	if err != nil {
		return err
	}
	s, err := sim.New(model)
	if err != nil {
		return err
	}

	ends := []float64{10.0, 100.0}
	steps := []float64{0.1, 0.01, 0.001}

	fmt.Printf("benchmarking %s\n\n", model.ID())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "END\tSTEP\tSAMPLES\tTIME\tSTEPS/SEC")

	for _, end := range ends {
		for _, step := range steps {
			start := time.Now()
			result, err := s.Run(dynamo.Config{TimeEnd: end, TimeStep: step, Method: "rk4"})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%g\t%g\t%d\t%v\t%.0f\n",
				end, step, result.Len(), elapsed, float64(result.Len()-1)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func speciesName(meta *storage.RunMetadata, i int) string {
	if i >= 0 && i < len(meta.Species) {
		return meta.Species[i]
	}
	return fmt.Sprintf("x%d", i)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fitModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, firstArg(args))
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no grid: use --grid id=from:to:points")
	}
	goal, err := applyAssignments(nil, targets)
	if err != nil {
		return err
	}
	if len(goal) == 0 {
		return errors.New("no targets: use --target species=value")
	}

	model, err := loadModel(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	objective, err := optim.FinalTargets(model, goal)
	if err != nil {
		return err
	}

	start := time.Now()
	best, score, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), model, cfg.Simulation, objective)
	if err != nil {
		return err
	}

	fmt.Println(title("fit " + model.ID()))
	for _, name := range names {
		fmt.Println(viz.KeyValue(name, best[name]))
	}
	fmt.Println(viz.KeyValue("squared error", fmt.Sprintf("%.3e", score)))
	fmt.Println(viz.KeyValue("elapsed", time.Since(start)))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, _, err := loadTrajectory(st, meta)
	if err != nil {
		return err
	}

	var doc string
	if phase {
		doc = export.PhasePortraitToSVG(analysis.PhasePortraitFromResult(result, xAxis, yAxis), 600, 600, "#00ff88")
	} else {
		doc = export.TrajectoriesToSVG(result, 800, 400)
	}
	if doc == "" {
		return errors.New("nothing to render: need two finite samples and valid species indices")
	}

	if outPath == "-" {
		_, err = fmt.Println(doc)
		return err
	}
	return os.WriteFile(outPath, []byte(doc), 0644)
}
