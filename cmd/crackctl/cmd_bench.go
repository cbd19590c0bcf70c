package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/sim"
)

type benchOpts struct {
	trials  int
	item    string
	goal    string
	seed    int64
	workers int
	max     int
	json    bool
}

func newBenchCmd(a *app) *cobra.Command {
	o := &benchOpts{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure how many table readings cracking takes over many hidden states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBench(cmd, o)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.trials, "trials", 100, "number of hidden states to crack")
	f.StringVar(&o.item, "item", "book", "item placed in the table")
	f.StringVar(&o.goal, "goal", string(sim.GoalCracked), "what to count readings to: cracked or output_seed")
	f.Int64Var(&o.seed, "seed", 1, "seed deriving the hidden states")
	f.IntVar(&o.workers, "workers", runtime.NumCPU(), "concurrent trials")
	f.IntVar(&o.max, "max", 60, "readings after which a trial counts as failed")
	f.BoolVar(&o.json, "json", false, "print stats as JSON")
	return cmd
}

func (a *app) runBench(cmd *cobra.Command, o *benchOpts) error {
	goal := sim.TrialGoal(o.goal)
	if goal != sim.GoalCracked && goal != sim.GoalOutputSeed {
		return fmt.Errorf("unknown goal %q", o.goal)
	}
	item := crack.Item(o.item)
	if _, err := a.table.Item(item); err != nil {
		return err
	}

	stats, err := sim.RunMonteCarlo(cmd.Context(), a.table, sim.SimParams{
		Item:        item,
		MaxReadings: o.max,
		Seed:        o.seed,
		Workers:     o.workers,
		Settings:    a.params.Settings(),
	}, goal, o.trials)
	if err != nil {
		return err
	}
	return printStats(cmd.OutOrStdout(), stats, o.json)
}

func printStats(w io.Writer, s sim.Stats, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintf(w, "trials %d, failed %d\n", s.Trials, s.Failed)
	fmt.Fprintf(w, "readings mean %.2f sd %.2f\n", s.Mean, s.StdDev)
	fmt.Fprintf(w, "p50 %.1f  p90 %.1f  p99 %.1f\n", s.P50, s.P90, s.P99)
	return nil
}
