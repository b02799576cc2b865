// Package optim searches physics parameters for the configuration that makes
// a scenario behave best.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/metrics"
	"github.com/san-kum/canvasflow/internal/scenario"
)

// Objective scores one parameter combination. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Trial is the outcome of one combination.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// Workers bounds the number of concurrent evaluations. Zero means one per CPU.
	Workers int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Combinations enumerates the cartesian product in odometer order, the last
// parameter varying fastest.
func (g *GridSearch) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.combine(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) combine(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		*out = append(*out, params)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.combine(depth+1, current, out)
	}
	delete(current, name)
}

// Search evaluates every combination and returns the one with the lowest
// value. Ties go to the earlier combination. Failed trials are reported but
// only fail the search when nothing succeeded.
func (g *GridSearch) Search(ctx context.Context, evaluate Objective) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	combos := g.Combinations()
	trials := make([]Trial, len(combos))

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, params := range combos {
		wg.Add(1)
		go func(idx int, params map[string]float64) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			trials[idx].Params = params
			if err := ctx.Err(); err != nil {
				trials[idx].Err = err
				return
			}
			trials[idx].Value, trials[idx].Err = evaluate(ctx, params)
		}(i, params)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, trials, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var errs []error
	for _, t := range trials {
		if t.Err != nil {
			errs = append(errs, t.Err)
			continue
		}
		if bestParams == nil || t.Value < best {
			best = t.Value
			bestParams = t.Params
		}
	}

	if bestParams == nil {
		return nil, 0, trials, fmt.Errorf("all %d trials failed: %w", len(trials), errors.Join(errs...))
	}
	return bestParams, best, trials, nil
}

// ScenarioObjective replays s once per combination on top of base and
// reports the named metric.
func ScenarioObjective(s *scenario.Scenario, base dynamo.Config, opts scenario.Options, metric string) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return 0, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return 0, err
		}

		run := opts
		run.Metrics = metrics.Default(cfg.RepulsionMargin)
		run.OnFrame = nil
		res, err := scenario.NewRunner(run).Run(ctx, s, cfg)
		if err != nil {
			return 0, err
		}

		v, ok := res.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("unknown metric %q (have %v)", metric, metrics.Names(run.Metrics))
		}
		return v, nil
	}
}

// Ranked returns the successful trials sorted by value.
func Ranked(trials []Trial) []Trial {
	out := make([]Trial, 0, len(trials))
	for _, t := range trials {
		if t.Err == nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
