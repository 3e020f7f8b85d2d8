package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/celestia/internal/analysis"
	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/export"
	"github.com/san-kum/celestia/internal/metrics"
	"github.com/san-kum/celestia/internal/optim"
	"github.com/san-kum/celestia/internal/scenario"
	"github.com/san-kum/celestia/internal/sim"
	"github.com/san-kum/celestia/internal/storage"
	"github.com/san-kum/celestia/internal/viz"
)

var (
	dataDir       string
	configFile    string
	configPreset  string
	logLevel      string
	dt            float64
	duration      float64
	integrator    string
	seed          int64
	gravity       float64
	mergeDelay    float64
	impactorSpeed float64
	sampleEvery   int
	ensembleRuns  int
	themeName     string
	series        string
	sweepParams   []string
	sweepMetric   string
	outFile       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "celestia",
		Short:         "celestial scenario simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			return viz.RunInteractive(cfg, logger)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".celestia", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&configPreset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.Float64Var(&dt, "dt", config.DefaultFrameDt, "frame delta in seconds")
	pf.Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	pf.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	pf.Int64Var(&seed, "seed", 1, "random seed")
	pf.Float64Var(&gravity, "g", config.DefaultG, "gravitational constant")
	pf.Float64Var(&mergeDelay, "merge-delay", config.DefaultMergeDelay, "seconds between a merge and its spawn")
	pf.Float64Var(&impactorSpeed, "impactor-speed", config.DefaultImpactorSpeed, "giant impact launch speed")
	pf.IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "ticks between stored samples")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and store the result",
		Long:  "run a scenario preset or descriptor file (json or yaml) headless and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().IntVar(&ensembleRuns, "ensemble", 0, "run N seeds in parallel")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&themeName, "theme", viz.Themes[0].Name, "colour theme (t cycles while running)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "body_count", "body_count, kinetic_energy, total_mass or separation")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario and config presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCENARIO\tMODE\tOBJECTS")
			for _, name := range scenario.ListPresets() {
				d, err := scenario.Preset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", name, d.ScenarioType, len(d.Objects))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nconfig presets: %s\n", strings.Join(config.ListPresets(), ", "))
			return nil
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export body paths of a stored run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid search config parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (g, impactor_speed, merge_delay, collision_factor, fixed_dt, duration)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "momentum_drift", "metric to minimize")

	validateCmd := &cobra.Command{
		Use:   "validate [descriptor]",
		Short: "check that a descriptor file builds a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  validateDescriptor,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, analyzeCmd, exportSVGCmd, sweepCmd, presetsCmd, validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup resolves the configuration and logger. Flags override the config
// file or preset only when set on the command line.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg := config.DefaultConfig()
	if configPreset != "" {
		cfg = config.GetPreset(configPreset)
		if cfg == nil {
			return nil, nil, fmt.Errorf("unknown preset: %s (available: %v)", configPreset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("g") {
		cfg.Physics.G = gravity
	}
	if flags.Changed("merge-delay") {
		cfg.Physics.MergeDelay = mergeDelay
	}
	if flags.Changed("impactor-speed") {
		cfg.Cinematic.ImpactorSpeed = impactorSpeed
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "celestia",
	})
	return cfg, logger, nil
}

// resolveScenario accepts a preset name or a descriptor file path. With no
// argument the configured scenario preset is used.
func resolveScenario(cfg *config.Config, args []string) (string, *scenario.Descriptor, error) {
	name := cfg.Scenario
	if len(args) > 0 {
		name = args[0]
	}
	if _, ok := scenario.Presets[name]; ok {
		desc, err := scenario.Preset(name)
		return name, desc, err
	}
	desc, err := scenario.LoadDescriptor(name)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), desc, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	name, desc, err := resolveScenario(cfg, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var results []*sim.Result
	if ensembleRuns > 0 {
		logger.Info("running ensemble", "scenario", name, "runs", ensembleRuns, "seed", cfg.Seed)
		results, err = sim.NewEnsemble(cfg, logger, ensembleRuns, cfg.Seed).Run(ctx, desc)
		if err != nil {
			return err
		}
	} else {
		logger.Info("running", "scenario", name, "ticks", cfg.Steps())
		session, err := sim.NewSession(cfg, logger)
		if err != nil {
			return err
		}
		runner := sim.NewRunner(session)
		for _, m := range metrics.Standard() {
			runner.AddMetric(m)
		}
		result, err := runner.Run(ctx, desc)
		if err != nil {
			return err
		}
		results = []*sim.Result{result}
	}
	elapsed := time.Since(start)

	for i, result := range results {
		runCfg := *cfg
		runCfg.Seed = cfg.Seed + int64(i)
		runID, err := st.Save(name, &runCfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
		fmt.Printf("ticks: %d  samples: %d  events: %d  impact: %v\n",
			result.TicksTaken, len(result.Samples), len(result.Events), result.Impact)
		printMetrics(result.Metrics)
	}
	fmt.Printf("completed in %v\n", elapsed)
	return nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	name, desc, err := resolveScenario(cfg, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	var names []string
	var ranges [][]float64
	for _, p := range sweepParams {
		n, vals, err := optim.ParseParam(p)
		if err != nil {
			return err
		}
		names = append(names, n)
		ranges = append(ranges, vals)
	}
	search, err := optim.NewGridSearch(names, ranges, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("sweeping", "scenario", name, "params", names, "metric", sweepMetric)
	points, best, err := search.Search(ctx, cfg, desc, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PARAMS\t%s\tBODIES\tIMPACT\n", strings.ToUpper(sweepMetric))
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.6f\t%.0f\t%v\n", p, p.Value, p.Result.Metrics["body_count"], p.Result.Impact)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %s (%s=%.6f)\n", best, sweepMetric, best.Value)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	_, desc, err := resolveScenario(cfg, args)
	if err != nil {
		return err
	}
	session, err := sim.NewSession(cfg, logger)
	if err != nil {
		return err
	}
	if err := session.Load(desc); err != nil {
		return err
	}
	// the terminal belongs to the viewer
	logger.SetOutput(io.Discard)
	viz.CurrentTheme = viz.ThemeByName(themeName)
	return viz.Run(session, cfg.Dt, logger)
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
	fmt.Fprintln(w, "ID\tSCENARIO\tMODE\tTIME\tDURATION\tSEED\tBODIES\tIMPACT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%d\t%.0f\t%v\n",
			run.ID,
			run.Scenario,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Seed,
			run.Metrics["body_count"],
			run.Impact,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	data, err := seriesOf(series, samples)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s)\n", meta.Scenario, meta.Mode)
	fmt.Printf("samples: %d\n\n", len(samples))
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(strings.ReplaceAll(series, "_", " ")+" vs time"),
	))
	return nil
}

// seriesOf extracts one value per sample.
func seriesOf(name string, samples []sim.Sample) ([]float64, error) {
	data := make([]float64, 0, len(samples))
	for _, s := range samples {
		var v float64
		switch name {
		case "body_count":
			v = float64(len(s.Bodies))
		case "total_mass":
			for _, b := range s.Bodies {
				v += b.Mass
			}
		case "kinetic_energy":
			for _, b := range s.Bodies {
				v += 0.5 * b.Mass * b.Velocity.LengthSq()
			}
		case "separation":
			if len(s.Bodies) < 2 {
				v = 0
			} else {
				bodies := append([]sim.BodyState(nil), s.Bodies...)
				sort.Slice(bodies, func(i, j int) bool { return bodies[i].ID < bodies[j].ID })
				v = bodies[0].Position.DistanceTo(bodies[1].Position)
			}
		default:
			return nil, fmt.Errorf("unknown series %q", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		data = append(data, v)
	}
	return data, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	events, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Scenario = meta.Scenario
	cfg.Dt = meta.Dt
	cfg.Duration = meta.Duration
	cfg.Seed = meta.Seed
	cfg.Integrator = meta.Integrator
	cfg.Physics.G = meta.G
	result := &sim.Result{
		Mode:       meta.Mode,
		Samples:    samples,
		Events:     events,
		Metrics:    meta.Metrics,
		TicksTaken: meta.Ticks,
		Impact:     meta.Impact,
	}

	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return storage.ExportJSON(w, meta.Scenario, cfg, result)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("not enough samples to analyze")
	}

	tracks := analysis.Tracks(samples)
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s)\n\n", meta.Scenario, meta.Mode)
	fmt.Print(analysis.Portrait(tracks, 72, 24))

	center, ok := analysis.Central(tracks)
	if !ok {
		return nil
	}
	sampleDt := samples[1].Time - samples[0].Time
	fmt.Printf("\norbits about %s:\n", center.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tPERIAPSIS\tAPOAPSIS\tECC\tPERIOD")
	for _, o := range analysis.Orbits(tracks, sampleDt) {
		period := "-"
		if o.Periodic {
			period = fmt.Sprintf("%.2fs", o.Period)
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.3f\t%s\n", o.Name, o.MinRadius, o.MaxRadius, o.Eccentricity(), period)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	svg := export.TracksToSVG(analysis.Tracks(samples), 800, 800)
	if svg == "" {
		return fmt.Errorf("no data to export")
	}
	path := outFile
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func validateDescriptor(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	desc, err := scenario.LoadDescriptor(args[0])
	if err != nil {
		return err
	}
	env := scenario.Env{G: cfg.Physics.G, Rand: rand.New(rand.NewSource(cfg.Seed))}
	s, err := scenario.NewRegistry().Build(desc, env)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %s with %d bodies\n", s.Mode, len(s.Bodies))
	for _, b := range s.Bodies {
		fmt.Printf("  %-12s mass=%.2f radius=%.2f star=%v\n", b.Name, b.Mass, b.Radius, b.IsStar)
	}
	if s.Trigger != nil {
		fmt.Println("  triggerable")
	}
	return nil
}
