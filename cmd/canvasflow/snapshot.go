package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/export"
	"github.com/san-kum/canvasflow/internal/scenario"
	"github.com/san-kum/canvasflow/internal/sim"
	"github.com/san-kum/canvasflow/internal/snapshot"
)

func snapshotCommand() *cobra.Command {
	var svgPath string

	snapCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "save and restore workspace positions",
	}

	saveCmd := &cobra.Command{
		Use:   "save [scenario]",
		Short: "settle a scenario and save its positions as a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := session()
			if err != nil {
				return err
			}
			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			name := workspace
			if name == "" {
				name = orDefault(s.Name, args[0])
			}

			res, err := settle(cmd.Context(), cfg, engine, s)
			if err != nil {
				return err
			}

			st, err := snapshot.Open(cfg.Snapshots)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Save(cmd.Context(), name, snapshot.FromNodes(res.Nodes)); err != nil {
				return err
			}
			fmt.Printf("saved %d nodes to workspace %q (settled: %v)\n", len(res.Nodes), name, res.Settled)
			return nil
		},
	}
	saveCmd.Flags().StringVar(&workspace, "workspace", "", "workspace name (defaults to the scenario name)")

	loadCmd := &cobra.Command{
		Use:   "load [workspace]",
		Short: "print a workspace's positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := session()
			if err != nil {
				return err
			}
			st, err := snapshot.Open(cfg.Snapshots)
			if err != nil {
				return err
			}
			defer st.Close()

			saved, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("workspace %q: %w", args[0], err)
			}

			if svgPath != "" {
				d := sim.New(engine, sim.WithLogger(quietLogger()))
				d.Sync(snapshot.Nodes(saved), nil)
				var bodies dynamo.Bodies
				d.Inspect(func(f dynamo.Frame) {
					bodies = make(dynamo.Bodies, len(f.Bodies))
					for id, b := range f.Bodies {
						c := *b
						bodies[id] = &c
					}
				})
				return writeOut(svgPath, export.SnapshotToSVG(bodies, nil))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tX\tY\tZ\tLOCKED")
			for _, p := range saved {
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\t%v\n", p.ID, p.Type, p.Position.X, p.Position.Y, p.Position.Z, p.Locked)
			}
			return w.Flush()
		},
	}
	loadCmd.Flags().StringVar(&svgPath, "svg", "", "draw the workspace to this SVG file instead")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := session()
			if err != nil {
				return err
			}
			st, err := snapshot.Open(cfg.Snapshots)
			if err != nil {
				return err
			}
			defer st.Close()

			wss, err := st.Workspaces(cmd.Context())
			if err != nil {
				return err
			}
			if len(wss) == 0 {
				fmt.Println("no workspaces saved")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WORKSPACE\tNODES\tSAVED")
			for _, ws := range wss {
				fmt.Fprintf(w, "%s\t%d\t%s\n", ws.Name, ws.Nodes, ws.SavedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [workspace]",
		Short: "delete a saved workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := session()
			if err != nil {
				return err
			}
			st, err := snapshot.Open(cfg.Snapshots)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("workspace %q: %w", args[0], err)
			}
			fmt.Printf("deleted workspace %q\n", args[0])
			return nil
		},
	}

	snapCmd.AddCommand(saveCmd, loadCmd, listCmd, deleteCmd)
	return snapCmd
}
