package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/lcg"
	"github.com/xtding233/rngcrack/internal/sim"
)

type simulateOpts struct {
	state string
	seed  int64
	item  string
	max   int
	want  string
	items int
}

func newSimulateCmd(a *app) *cobra.Command {
	o := &simulateOpts{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Crack a simulated server's generator, then optionally steer it to an offer",
		Example: `  crackctl simulate --state 0x123456789abc --item diamond_sword
  crackctl simulate --seed 42 --item book --want mending --items 64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSimulate(cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.state, "state", "", "hidden generator state (decimal or 0x hex); random when empty")
	f.Int64Var(&o.seed, "seed", 0, "seed for the random hidden state (default: current time)")
	f.StringVar(&o.item, "item", "diamond_sword", "item placed in the table")
	f.IntVar(&o.max, "max", 60, "give up after this many table readings")
	f.StringVar(&o.want, "want", "", "after cracking, plan for these enchantments, e.g. sharpness:4,looting")
	f.IntVar(&o.items, "items", 64, "items available to throw while executing the plan")
	return cmd
}

func (a *app) runSimulate(w io.Writer, o *simulateOpts) error {
	item := crack.Item(o.item)
	if _, err := a.table.Item(item); err != nil {
		return err
	}
	var want func([]crack.Effect) bool
	if o.want != "" {
		var err error
		if want, err = a.wantFunc(o.want); err != nil {
			return err
		}
	}

	var hidden uint64
	if o.state != "" {
		s, err := parseState(o.state)
		if err != nil {
			return err
		}
		hidden = s & lcg.Mask
	} else {
		seed := o.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		hidden = sim.RandomState(lcg.NewRandom(seed))
	}

	e := a.engine()
	srv := sim.NewServer(hidden, a.table, item, sim.ReadingPowers[0])
	fmt.Fprintf(w, "hidden state  %#012x\n", hidden)

	n, ok := sim.Crack(e, srv, o.max)
	if !ok {
		return fmt.Errorf("not cracked within %d readings (state %s)", n, e.State())
	}
	gen, _ := e.GeneratorState()
	seed, _ := e.OutputSeed()
	fmt.Fprintf(w, "cracked after %d readings\n", n)
	fmt.Fprintf(w, "generator     %#012x (server %#012x)\n", gen, srv.State())
	fmt.Fprintf(w, "output seed   %d\n", seed)
	if want == nil {
		return nil
	}

	p := sim.NewPlayer(srv, o.items)
	plan, st := e.Plan(p, item, want)
	if st != crack.StatusOk {
		return fmt.Errorf("no plan: %s", st)
	}
	printPlan(w, plan)

	out := sim.Follow(e, srv, p, plan, 4*len(plan.Steps)+10)
	fmt.Fprintf(w, "status %s after %d ticks, %d throws\n", out.Progress.Status, out.Ticks, out.Throws)
	if out.Progress.Status != crack.StatusOk {
		return fmt.Errorf("plan did not complete: %s", out.Progress.Status)
	}
	fmt.Fprintf(w, "took slot %d at power %d: %s\n", out.Slot, out.Power, a.describe(out.Effects))
	return nil
}
