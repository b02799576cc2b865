package optim

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/scenario"
)

func TestCombinations(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	combos := g.Combinations()

	if len(combos) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(combos))
	}
	if combos[0]["a"] != 1 || combos[0]["b"] != 10 {
		t.Errorf("unexpected first combination %v", combos[0])
	}
	if combos[1]["a"] != 1 || combos[1]["b"] != 20 {
		t.Errorf("last parameter should vary fastest, got %v", combos[1])
	}
	if combos[5]["a"] != 2 || combos[5]["b"] != 30 {
		t.Errorf("unexpected last combination %v", combos[5])
	}
}

func TestSearch_Minimises(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{-2, -1, 0, 1, 2}, {0, 3, 6}})
	g.Workers = 3

	var calls atomic.Int32
	bowl := func(_ context.Context, p map[string]float64) (float64, error) {
		calls.Add(1)
		return (p["x"]-1)*(p["x"]-1) + (p["y"]-3)*(p["y"]-3), nil
	}

	best, val, trials, err := g.Search(context.Background(), bowl)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["x"] != 1 || best["y"] != 3 || val != 0 {
		t.Errorf("expected minimum at (1, 3), got %v = %v", best, val)
	}
	if calls.Load() != 15 || len(trials) != 15 {
		t.Errorf("expected 15 evaluations, got %d calls and %d trials", calls.Load(), len(trials))
	}

	ranked := Ranked(trials)
	if ranked[0].Value != 0 || ranked[len(ranked)-1].Value != 18 {
		t.Errorf("unexpected ranking ends %v, %v", ranked[0].Value, ranked[len(ranked)-1].Value)
	}
}

func TestSearch_TiesGoFirst(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{5, 6, 7}})
	flat := func(context.Context, map[string]float64) (float64, error) { return 1, nil }

	best, _, _, err := g.Search(context.Background(), flat)
	if err != nil {
		t.Fatal(err)
	}
	if best["x"] != 5 {
		t.Errorf("expected the first combination on a tie, got %v", best)
	}
}

func TestSearch_Failures(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	boom := errors.New("boom")

	partial := func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 2 {
			return 0, boom
		}
		return p["x"], nil
	}
	best, val, trials, err := g.Search(context.Background(), partial)
	if err != nil {
		t.Fatalf("a partial failure should not fail the search: %v", err)
	}
	if best["x"] != 1 || val != 1 {
		t.Errorf("unexpected best %v = %v", best, val)
	}
	if len(Ranked(trials)) != 2 {
		t.Errorf("failed trial should be left out of the ranking")
	}

	all := func(context.Context, map[string]float64) (float64, error) { return 0, boom }
	if _, _, _, err := g.Search(context.Background(), all); !errors.Is(err, boom) {
		t.Errorf("expected the trial error, got %v", err)
	}

	if _, _, _, err := NewGridSearch([]string{"x"}, nil).Search(context.Background(), all); err == nil {
		t.Error("expected an error for mismatched ranges")
	}
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, _, _, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScenarioObjective(t *testing.T) {
	s, err := scenario.Parse([]byte("nodes: [{id: a, type: note}, {id: b, type: note, x: 30}]\n"))
	if err != nil {
		t.Fatal(err)
	}
	opts := scenario.Options{Duration: 20, StopWhenSettled: true}
	obj := ScenarioObjective(s, dynamo.DefaultConfig(), opts, "settle_time")

	g := NewGridSearch([]string{"springDamping"}, [][]float64{{12, 18, 30}})
	best, val, trials, err := g.Search(context.Background(), obj)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if _, ok := best["springDamping"]; !ok {
		t.Errorf("best params missing the swept parameter: %v", best)
	}
	if val <= 0 || val >= 20 {
		t.Errorf("expected a settle time inside the run, got %v", val)
	}
	for _, tr := range trials {
		if tr.Err != nil {
			t.Errorf("trial %v failed: %v", tr.Params, tr.Err)
		}
	}

	bad := ScenarioObjective(s, dynamo.DefaultConfig(), opts, "nope")
	if _, err := bad(context.Background(), nil); err == nil {
		t.Error("expected an error for an unknown metric")
	}
	if _, err := obj(context.Background(), map[string]float64{"velocityDecay": 2}); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := obj(context.Background(), map[string]float64{"gravity": 1}); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for an unknown parameter, got %v", err)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		want    []float64
		wantErr bool
	}{
		{"springStiffness=60,120,240", "springStiffness", []float64{60, 120, 240}, false},
		{"springDamping=10:40:4", "springDamping", []float64{10, 20, 30, 40}, false},
		{"x=1", "x", []float64{1}, false},
		{"x=1:2:1", "", nil, true},
		{"x=a,b", "", nil, true},
		{"=1,2", "", nil, true},
		{"noequals", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, vals, err := ParseRange(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %v %v", name, vals)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.name || len(vals) != len(tt.want) {
				t.Fatalf("got %s %v, want %s %v", name, vals, tt.name, tt.want)
			}
			for i := range vals {
				if math.Abs(vals[i]-tt.want[i]) > 1e-9 {
					t.Errorf("value %d: got %v, want %v", i, vals[i], tt.want[i])
				}
			}
		})
	}
}
