package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/sim"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "canvas.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

var sample = []NodePosition{
	{ID: "b", Type: bounds.Entity, Position: dynamo.Vec3{X: 10, Y: -4.5}},
	{ID: "a", Type: bounds.Article, Position: dynamo.Vec3{X: 1, Y: 2, Z: 3}, Locked: true},
}

func TestSaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assertNoError(t, s.Save(ctx, "research", sample))

	got, err := s.Load(ctx, "research")
	assertNoError(t, err)

	want := []NodePosition{sample[1], sample[0]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSaveReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assertNoError(t, s.Save(ctx, "ws", sample))
	assertNoError(t, s.Save(ctx, "ws", sample[:1]))

	got, err := s.Load(ctx, "ws")
	assertNoError(t, err)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only b after the second save, got %v", got)
	}
}

func TestSaveEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assertNoError(t, s.Save(ctx, "blank", nil))
	got, err := s.Load(ctx, "blank")
	assertNoError(t, err)
	if len(got) != 0 {
		t.Errorf("expected empty workspace, got %v", got)
	}
}

func TestWorkspacesAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assertNoError(t, s.Save(ctx, "one", sample))
	assertNoError(t, s.Save(ctx, "two", sample[:1]))

	ws, err := s.Workspaces(ctx)
	assertNoError(t, err)
	if len(ws) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(ws))
	}
	counts := map[string]int{}
	for _, w := range ws {
		counts[w.Name] = w.Nodes
		if w.SavedAt.IsZero() {
			t.Errorf("%s has no save time", w.Name)
		}
	}
	if counts["one"] != 2 || counts["two"] != 1 {
		t.Errorf("unexpected node counts %v", counts)
	}

	assertNoError(t, s.Delete(ctx, "one"))
	if _, err := s.Load(ctx, "one"); !errors.Is(err, dynamo.ErrUnknownWorkspace) {
		t.Errorf("expected ErrUnknownWorkspace after delete, got %v", err)
	}
	if err := s.Delete(ctx, "one"); !errors.Is(err, dynamo.ErrUnknownWorkspace) {
		t.Errorf("expected ErrUnknownWorkspace on second delete, got %v", err)
	}

	ws, err = s.Workspaces(ctx)
	assertNoError(t, err)
	if len(ws) != 1 || ws[0].Name != "two" {
		t.Errorf("expected only two to remain, got %v", ws)
	}
}

func TestInMemory(t *testing.T) {
	s, err := Open(":memory:")
	assertNoError(t, err)
	defer s.Close()

	ctx := context.Background()
	assertNoError(t, s.Save(ctx, "mem", sample))
	got, err := s.Load(ctx, "mem")
	assertNoError(t, err)
	if len(got) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(got))
	}
}

func TestDriverRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	nodes := []sim.Node{
		{ID: "a", Type: bounds.Claim, Position: dynamo.Vec3{X: 0, Y: 0}},
		{ID: "b", Type: bounds.Note, Position: dynamo.Vec3{X: 600, Y: 0}, Locked: true},
	}
	d := sim.New(dynamo.DefaultConfig())
	d.Sync(nodes, nil)

	assertNoError(t, s.Save(ctx, "live", FromNodes(nodes)))
	loaded, err := s.Load(ctx, "live")
	assertNoError(t, err)

	restored := sim.New(dynamo.DefaultConfig())
	restored.Sync(Nodes(loaded), nil)

	if !reflect.DeepEqual(restored.Positions(), d.Positions()) {
		t.Errorf("restored positions %v differ from %v", restored.Positions(), d.Positions())
	}
	if b, ok := restored.Body("b"); !ok || !b.Locked {
		t.Error("lock flag lost in the round trip")
	}
}
