package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xtding233/rngcrack/internal/crack"
)

type planOpts struct {
	state  string
	output int32
	item   string
	want   string
	items  int
}

// standing is a player on the ground holding items.
type standing struct{ items int }

func (s standing) Stable() bool      { return true }
func (s standing) HasConsumer() bool { return s.items > 0 }

func newPlanCmd(a *app) *cobra.Command {
	o := &planOpts{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a manipulation from a known generator state",
		Long: `plan trusts the given generator state and prints the fewest item throws
that make the enchanting table offer the wanted enchantments.

With --output the active output seed is taken as already drawn, so the
current offer itself is considered before any throw.`,
		Example: `  crackctl plan --state 0x1902d9aeca17 --item diamond_sword --want sharpness:4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPlan(cmd.OutOrStdout(), o, cmd.Flags().Changed("output"))
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.state, "state", "", "generator state (decimal or 0x hex)")
	f.Int32Var(&o.output, "output", 0, "active output seed drawn from the state")
	f.StringVar(&o.item, "item", "diamond_sword", "item to enchant")
	f.StringVar(&o.want, "want", "", "wanted enchantments, e.g. sharpness:4,looting")
	f.IntVar(&o.items, "items", 64, "items available to throw")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("want")
	return cmd
}

func (a *app) runPlan(w io.Writer, o *planOpts, withOutput bool) error {
	item := crack.Item(o.item)
	if _, err := a.table.Item(item); err != nil {
		return err
	}
	want, err := a.wantFunc(o.want)
	if err != nil {
		return err
	}
	state, err := parseState(o.state)
	if err != nil {
		return err
	}

	e := a.engine()
	if withOutput {
		e.TrustedSeedWithOutput(state, o.output)
	} else {
		e.TrustedSeed(state)
	}
	plan, st := e.Plan(standing{items: o.items}, item, want)
	if st != crack.StatusOk {
		return fmt.Errorf("no plan: %s", st)
	}
	printPlan(w, plan)
	if fin, ok := plan.Final(); ok {
		levels := a.table.Levels(plan.Seed, fin.Param, item)
		effects := a.table.Effects(plan.Seed, item, fin.Slot, levels[fin.Slot])
		fmt.Fprintf(w, "offer: %s\n", a.describe(effects))
	}
	return nil
}

func printPlan(w io.Writer, plan crack.ActionPlan) {
	fmt.Fprintf(w, "plan %s: %d actions, lands on seed %d\n", plan.ID, plan.Actions, plan.Seed)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTEP\tDETAIL")
	for i, s := range plan.Steps {
		var detail string
		switch s.Kind {
		case crack.StepAdvance:
			detail = fmt.Sprintf("throw one item (%d draws)", s.Cost)
		case crack.StepAwaitDraw:
			detail = fmt.Sprintf("take any offer at power %d..%d", s.MinParam, s.MaxParam)
		case crack.StepFinalize:
			detail = fmt.Sprintf("take slot %d at power %d", s.Slot, s.Param)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, s.Kind, detail)
	}
	_ = tw.Flush()
}
