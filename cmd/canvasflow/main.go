package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/canvasflow/internal/config"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/scenario"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	dt          float64
	duration    float64
	sampleEvery int
	noSave      bool

	genNodes  int
	seed      int64
	workspace string
	frameRate int

	benchSizes []int
	benchSteps int

	tuneParams  []string
	tuneMetric  string
	tuneWorkers int
	tuneTop     int

	svgOut  string
	svgRun  string
	svgSize []int
)

// main registers commands and flags and executes the root command. It exits
// with status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "canvasflow",
		Short:         "force-directed canvas physics lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(os.Stderr)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "", "run directory (defaults to the config's output_dir)")
	pf.StringVar(&configFile, "config", "", "session config file (yaml)")
	pf.StringVar(&preset, "preset", "", "physics preset (overrides the config)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text or json")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "replay a scenario and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (defaults to the config)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "maximum duration (defaults to the config)")
	runCmd.Flags().IntVar(&sampleEvery, "every", 1, "store positions every N frames")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	guiCmd := &cobra.Command{
		Use:   "gui [scenario]",
		Short: "interactive window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	for _, c := range []*cobra.Command{liveCmd, guiCmd} {
		c.Flags().IntVar(&genNodes, "nodes", 40, "generated node count when no scenario is given")
		c.Flags().Int64Var(&seed, "seed", 1, "seed for the generated canvas")
		c.Flags().StringVar(&workspace, "workspace", "", "restore positions from a saved workspace")
	}
	guiCmd.Flags().IntVar(&frameRate, "fps", 0, "simulation rate (defaults to the config)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput on generated canvases",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{100, 1000, 5000}, "node counts")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 300, "steps per size")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "seed for the generated canvases")

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid search physics parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "sweep, e.g. springDamping=10:40:4 or springStiffness=60,120 (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "settle_time", "metric to minimise")
	tuneCmd.Flags().IntVar(&tuneWorkers, "workers", 0, "parallel trials (0 = one per CPU)")
	tuneCmd.Flags().IntVar(&tuneTop, "top", 10, "ranked trials to print")
	tuneCmd.Flags().Float64Var(&duration, "time", 0, "maximum duration per trial (defaults to the config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot kinetic energy and peak speed of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the run's position rows as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write the whole run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [scenario]",
		Short: "settle a scenario and draw it as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&svgRun, "run", "", "draw the trajectories of a stored run instead")
	exportSVGCmd.Flags().IntSliceVar(&svgSize, "size", []int{1200, 800}, "trajectory image size")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list physics presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, benchCmd, tuneCmd, listCmd, showCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, snapshotCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("bad --log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(logFormat) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("bad --log-format %q: want text or json", logFormat)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// session loads the config file (or defaults) and applies flag overrides.
func session() (*config.Config, dynamo.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, dynamo.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		cfg.Preset = preset
	}
	if dataDir != "" {
		cfg.OutputDir = dataDir
	}
	engine, err := cfg.Engine()
	if err != nil {
		return nil, dynamo.Config{}, fmt.Errorf("%w (presets: %v)", err, config.ListPresets())
	}
	return cfg, engine, nil
}

// loadScenario reads the named file, or generates a canvas when none is given.
func loadScenario(args []string) (*scenario.Scenario, error) {
	if len(args) == 0 {
		return scenario.Generate(genNodes, seed), nil
	}
	return scenario.Load(args[0])
}
