package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/san-kum/canvasflow/internal/config"
	"github.com/san-kum/canvasflow/internal/gui"
	"github.com/san-kum/canvasflow/internal/scenario"
	"github.com/san-kum/canvasflow/internal/sim"
	"github.com/san-kum/canvasflow/internal/snapshot"
	"github.com/san-kum/canvasflow/internal/viz"
)

// canvas builds a driver for the interactive views, restoring positions from
// --workspace when given.
func canvas(ctx context.Context, cfg *config.Config, args []string, opts ...sim.Option) (*sim.Driver, []sim.Node, string, error) {
	engine, err := cfg.Engine()
	if err != nil {
		return nil, nil, "", err
	}

	var s *scenario.Scenario
	if len(args) > 0 || workspace == "" {
		if s, err = loadScenario(args); err != nil {
			return nil, nil, "", err
		}
	}

	d := sim.New(engine, opts...)
	if s == nil {
		nodes, err := restore(ctx, cfg, nil)
		if err != nil {
			return nil, nil, "", err
		}
		d.Sync(nodes, nil)
		return d, nodes, workspace, nil
	}

	s.Setup(d)
	nodes := s.NodeList()
	title := orDefault(s.Name, fmt.Sprintf("generated %d", len(nodes)))
	if workspace != "" {
		if nodes, err = restore(ctx, cfg, nodes); err != nil {
			return nil, nil, "", err
		}
		d.Sync(nodes, s.EdgeList())
		title += " @ " + workspace
	}
	return d, nodes, title, nil
}

// restore reads the saved workspace. With base set, saved positions are
// applied to the matching nodes and the rest are left alone.
func restore(ctx context.Context, cfg *config.Config, base []sim.Node) ([]sim.Node, error) {
	st, err := snapshot.Open(cfg.Snapshots)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	saved, err := st.Load(ctx, workspace)
	if err != nil {
		return nil, fmt.Errorf("workspace %q: %w", workspace, err)
	}
	if base == nil {
		return snapshot.Nodes(saved), nil
	}

	byID := make(map[string]snapshot.NodePosition, len(saved))
	for _, p := range saved {
		byID[p.ID] = p
	}
	out := append([]sim.Node(nil), base...)
	for i := range out {
		if p, ok := byID[out[i].ID]; ok {
			out[i].Position = p.Position
			out[i].Locked = p.Locked
		}
	}
	return out, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := session()
	if err != nil {
		return err
	}
	// Anything written to the terminal would tear the alternate screen.
	d, nodes, title, err := canvas(cmd.Context(), cfg, args, sim.WithLogger(quietLogger()))
	if err != nil {
		return err
	}
	return viz.Run(viz.NewModel(d, nodes, title))
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, _, err := session()
	if err != nil {
		return err
	}
	if frameRate > 0 {
		cfg.FrameRate = frameRate
	}
	d, nodes, title, err := canvas(cmd.Context(), cfg, args,
		sim.WithLogger(slog.Default()), sim.WithFrameRate(cfg.FrameRate))
	if err != nil {
		return err
	}
	return gui.Run(cmd.Context(), d, nodes, title, slog.Default())
}
