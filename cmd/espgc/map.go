package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/espgc/heap/alloc"
)

var (
	mapOpts  = mapDefaults()
	mapWidth int
)

func mapDefaults() workloadOptions {
	o := defaultWorkloadOptions()
	o.Ops = 300
	o.ArenaCells = 256
	o.MaxArenas = 4
	o.CollectEvery = 100
	return o
}

func init() {
	cmd := newMapCmd()
	addWorkloadFlags(cmd, &mapOpts)
	cmd.Flags().IntVar(&mapWidth, "width", 64, "Cells per map row")
	rootCmd.AddCommand(cmd)
}

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Draw the arenas after a seeded workload",
		Long: `The map command runs a short stress workload and draws every arena
cell by cell: object starts (white or black), extent cells, free runs
held by the Quipu and the untouched bump region.

Example:
  espgc map --seed 3 --ops 500
  espgc map --arena-cells 128 --width 32 --no-color`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(mapOpts, mapWidth)
		},
	}
	return cmd
}

func runMap(opts workloadOptions, width int) error {
	opts.Verify = true
	w, err := newWorkload(opts)
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := w.Run(); err != nil {
		return err
	}

	width = max(width, 8)
	owners := make([]*alloc.Owner, 0, w.h.Stats().Arenas)
	for id := range w.h.Stats().Arenas {
		o, _ := w.h.Owner(id)
		owners = append(owners, o)
	}
	if jsonOut {
		type arenaMap struct {
			Arena int      `json:"arena"`
			Bump  int      `json:"bump"`
			Free  int      `json:"free"`
			Rows  []string `json:"rows"`
		}
		maps := make([]arenaMap, 0, len(owners))
		for _, o := range owners {
			g := cellGlyphs(o)
			m := arenaMap{Arena: o.ID(), Bump: o.Bump(), Free: o.Free()}
			for row := 0; row < len(g); row += width {
				m.Rows = append(m.Rows, string(g[row:min(row+width, len(g))]))
			}
			maps = append(maps, m)
		}
		return printJSON(maps)
	}

	printInfo("%s", legend())
	for _, o := range owners {
		printInfo("%s", renderPane(o, width))
	}
	return nil
}
