package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/canvasflow/internal/export"
	"github.com/san-kum/canvasflow/internal/scenario"
	"github.com/san-kum/canvasflow/internal/storage"
)

func runStore() (*storage.Store, error) {
	cfg, _, err := session()
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.OutputDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tPRESET\tNODES\tSTEPS\tSETTLED\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%v\t%s\n",
			r.ID, r.Scenario, orDefault(r.Preset, "-"), r.Nodes, r.Steps, r.Settled, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	rows, err := st.LoadEnergy(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("run %s has no energy samples", args[0])
	}

	ke := make([]float64, len(rows))
	speed := make([]float64, len(rows))
	for i, r := range rows {
		ke[i] = r.KineticEnergy
		speed[i] = r.PeakSpeed
	}

	fmt.Println(asciigraph.Plot(ke, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("kinetic energy")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(speed, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("peak speed")))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	rows, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	return st.ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	var out string
	switch {
	case svgRun != "":
		if len(svgSize) != 2 {
			return fmt.Errorf("--size wants width,height")
		}
		st, err := runStore()
		if err != nil {
			return err
		}
		rows, err := st.LoadFrames(svgRun)
		if err != nil {
			return err
		}
		out = export.TrajectoryToSVG(storage.Trajectories(rows), svgSize[0], svgSize[1])
		if out == "" {
			return fmt.Errorf("run %s has too few samples to draw", svgRun)
		}
	case len(args) == 1:
		cfg, engine, err := session()
		if err != nil {
			return err
		}
		s, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		res, err := settle(cmd.Context(), cfg, engine, s)
		if err != nil {
			return err
		}
		out = export.SnapshotToSVG(res.Bodies, s.EdgeList())
	default:
		return fmt.Errorf("give a scenario or --run")
	}
	return writeOut(svgOut, out)
}

func writeOut(path, content string) error {
	if path == "" {
		_, err := fmt.Print(content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
