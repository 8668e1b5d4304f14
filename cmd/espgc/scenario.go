package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/espgc/heap/alloc"
	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/heap/verify"
	"github.com/joshuapare/espgc/value"
)

var scenarioWidth int

func init() {
	cmd := newScenarioCmd()
	cmd.Flags().IntVar(&scenarioWidth, "width", 32, "Cells per map row")
	rootCmd.AddCommand(cmd)
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Replay the 64-cell allocate/free/coalesce walkthrough",
		Long: `The scenario command replays a fixed sequence on a 64-cell arena:
allocate A(10), B(5), C(20); free B; free A (coalescing with B into a
15-cell Quipu head); allocate D(15), which takes that block exactly.
The arena map and Quipu state are shown after every step and the
invariants are checked at the end.

Example:
  espgc scenario
  espgc scenario --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario()
		},
	}
	return cmd
}

// scenarioStep records the owner state after one step.
type scenarioStep struct {
	Step       string        `json:"step"`
	Bump       int           `json:"bump"`
	Free       int           `json:"free"`
	QuipuTotal int           `json:"quipu_total"`
	HeadCell   int           `json:"head_cell"`
	HeadCells  int           `json:"head_cells"`
	Blocks     []alloc.Block `json:"blocks"`
}

func snapshot(step string, o *alloc.Owner) scenarioStep {
	s := scenarioStep{
		Step:       step,
		Bump:       o.Bump(),
		Free:       o.Free(),
		QuipuTotal: o.Quipu().Total(),
		HeadCell:   -1,
	}
	if c, n, ok := o.Quipu().Head(); ok {
		s.HeadCell, s.HeadCells = c, n
	}
	o.Walk(func(b alloc.Block) bool {
		s.Blocks = append(s.Blocks, b)
		return true
	})
	return s
}

func runScenario() error {
	a, err := arena.New(64, arena.BackingGo)
	if err != nil {
		return err
	}
	defer a.Close()
	o := alloc.NewOwner(a, alloc.Options{})

	var steps []scenarioStep
	record := func(step string) {
		steps = append(steps, snapshot(step, o))
		if jsonOut {
			return
		}
		printInfo("%s\n", paint(titleStyle, step))
		printInfo("%s", renderArena(o, scenarioWidth))
		printInfo("%s\n\n", arenaSummary(o))
	}

	cells := map[string]int{}
	allocate := func(name string, n int) error {
		c, err := o.Allocate(n, value.TypeTuple)
		if err != nil {
			return fmt.Errorf("allocate %s(%d): %w", name, n, err)
		}
		cells[name] = c
		printVerbose("%s -> cell %d\n", name, c)
		record(fmt.Sprintf("allocate %s(%d)", name, n))
		return nil
	}
	free := func(name string) {
		o.Deallocate(cells[name])
		record("free " + name)
	}

	if !jsonOut {
		printInfo("%s", legend())
	}
	for _, s := range []struct {
		name  string
		cells int
	}{{"A", 10}, {"B", 5}, {"C", 20}} {
		if err := allocate(s.name, s.cells); err != nil {
			return err
		}
	}
	free("B")
	free("A")
	if err := allocate("D", 15); err != nil {
		return err
	}

	verr := verify.AllInvariants(o)
	if jsonOut {
		return printJSON(struct {
			Steps []scenarioStep `json:"steps"`
			Valid bool           `json:"valid"`
		}{steps, verr == nil})
	}
	if verr != nil {
		printInfo("%s %v\n", paint(failStyle, "invariants violated:"), verr)
		return verr
	}
	printInfo("%s live %d + free %d = %d cells\n", paint(okStyle, "ok"),
		o.End()-o.Free(), o.Free(), o.End())
	return nil
}
