package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/canvasflow/internal/config"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/metrics"
	"github.com/san-kum/canvasflow/internal/optim"
	"github.com/san-kum/canvasflow/internal/scenario"
	"github.com/san-kum/canvasflow/internal/sim"
	"github.com/san-kum/canvasflow/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, engine, err := session()
	if err != nil {
		return err
	}
	s, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	opts := scenario.Options{
		Dt:              cfg.Dt,
		Duration:        cfg.Duration,
		StopWhenSettled: true,
		Metrics:         metrics.Default(engine.RepulsionMargin),
		Logger:          slog.Default(),
	}
	if dt > 0 {
		opts.Dt = dt
	}
	if duration > 0 {
		opts.Duration = duration
	}
	rec := storage.NewRecorder(sampleEvery)
	opts.OnFrame = rec.Observe

	start := time.Now()
	res, err := scenario.NewRunner(opts).Run(cmd.Context(), s, engine)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("scenario:  %s\n", orDefault(res.Name, args[0]))
	fmt.Printf("steps:     %d (%.2fs simulated, %v wall)\n", res.Steps, res.Time, elapsed.Round(time.Millisecond))
	fmt.Printf("settled:   %v\n", res.Settled)
	for _, name := range metrics.Names(opts.Metrics) {
		fmt.Printf("  %-15s %.4f\n", name, res.Metrics[name])
	}

	if noSave {
		return nil
	}
	st := storage.New(cfg.OutputDir)
	id, err := st.Save(storage.RunMetadata{
		Scenario: orDefault(res.Name, args[0]),
		Preset:   cfg.Preset,
		Dt:       opts.Dt,
		Duration: res.Time,
		Steps:    res.Steps,
		Nodes:    len(res.Final),
		Settled:  res.Settled,
		Params:   engine.Params(),
		Metrics:  res.Metrics,
	}, rec)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Printf("saved:     %s\n", id)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func runBench(cmd *cobra.Command, args []string) error {
	_, engine, err := session()
	if err != nil {
		return err
	}
	if benchSteps <= 0 {
		return fmt.Errorf("--steps must be positive")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODES\tEDGES\tSTEPS\tTOTAL\tPER STEP\tAWAKE")
	for _, n := range benchSizes {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		s := scenario.Generate(n, seed)
		d := sim.New(engine, sim.WithLogger(quietLogger()))
		s.Setup(d)

		awake := true
		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			awake = d.Tick(scenario.DefaultDt)
		}
		total := time.Since(start)

		slog.Debug("bench size done", "nodes", n, "total", total)
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%v\t%v\n", n, len(s.Edges), benchSteps,
			total.Round(time.Millisecond), (total / time.Duration(benchSteps)).Round(time.Microsecond), awake)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, engine, err := session()
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required (known: %s)", strings.Join(paramNames(engine), ", "))
	}
	s, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneParams))
	ranges := make([][]float64, 0, len(tuneParams))
	for _, p := range tuneParams {
		name, values, err := optim.ParseRange(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	gs := optim.NewGridSearch(names, ranges)
	gs.Workers = tuneWorkers

	opts := scenario.Options{
		Dt:              cfg.Dt,
		Duration:        cfg.Duration,
		StopWhenSettled: true,
		Logger:          quietLogger(),
	}
	if duration > 0 {
		opts.Duration = duration
	}

	slog.Info("tuning", "scenario", args[0], "metric", tuneMetric, "trials", len(gs.Combinations()))
	best, val, trials, err := gs.Search(cmd.Context(), optim.ScenarioObjective(s, engine, opts, tuneMetric))
	if err != nil {
		return err
	}

	ranked := optim.Ranked(trials)
	if failed := len(trials) - len(ranked); failed > 0 {
		slog.Warn("some trials failed", "failed", failed)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\t%s\t%s\n", strings.Join(names, "\t"), strings.ToUpper(tuneMetric))
	for i, t := range ranked {
		if tuneTop > 0 && i >= tuneTop {
			break
		}
		cols := make([]string, len(names))
		for j, n := range names {
			cols[j] = fmt.Sprintf("%g", t.Params[n])
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\n", i+1, strings.Join(cols, "\t"), t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.4f with %s\n", tuneMetric, val, formatParams(best))
	return nil
}

func paramNames(c dynamo.Config) []string {
	params := c.Params()
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func formatParams(p map[string]float64) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

func listPresets(cmd *cobra.Command, args []string) error {
	def := dynamo.DefaultConfig()
	defaults := def.Params()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tOVERRIDES")
	for _, name := range config.ListPresets() {
		c := dynamo.DefaultConfig()
		c.Merge(*config.GetPreset(name))
		changed := make(map[string]float64)
		for k, v := range c.Params() {
			if v != defaults[k] {
				changed[k] = v
			}
		}
		fmt.Fprintf(w, "%s\t%s\n", name, orDefault(formatParams(changed), "-"))
	}
	return w.Flush()
}

// settle replays s until it comes to rest.
func settle(ctx context.Context, cfg *config.Config, engine dynamo.Config, s *scenario.Scenario) (*scenario.Result, error) {
	return scenario.NewRunner(scenario.Options{
		Dt:              cfg.Dt,
		Duration:        cfg.Duration,
		StopWhenSettled: true,
		Logger:          slog.Default(),
	}).Run(ctx, s, engine)
}
