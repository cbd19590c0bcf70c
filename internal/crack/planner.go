package crack

import (
	"github.com/google/uuid"

	"github.com/xtding233/rngcrack/internal/lcg"
)

// Agent is the acting player as far as the sanity gate is concerned.
type Agent interface {
	// Stable reports that no motion is pending (the player is on the ground).
	Stable() bool
	// HasConsumer reports that at least one item is available to throw.
	HasConsumer() bool
}

// Ready runs the planner's sanity gate without searching.
func (e *Engine) Ready(agent Agent) Status {
	switch {
	case !e.state.Known():
		return StatusNotCracked
	case !agent.Stable():
		return StatusNotReady
	case !agent.HasConsumer():
		return StatusEmptyResource
	}
	return StatusOk
}

// Plan searches for the fewest consumer actions after which a table offer for
// item satisfies want. Ties break on the lowest parameter, then the lowest
// slot. The search index -1 (no throwaway draw at all) is only tried when the
// active output seed is known to follow from the working generator.
func (e *Engine) Plan(agent Agent, item Item, want func([]Effect) bool) (ActionPlan, Status) {
	if st := e.Ready(agent); st != StatusOk {
		plansTotal.WithLabelValues(st.String()).Inc()
		return ActionPlan{}, st
	}

	cost := e.settings.ActionCost
	start := 0
	if e.state == Cracked && e.outputKnown {
		start = -1
	}

	s := e.gen.State()
	for i := start; i < e.settings.PlanBound; i++ {
		seed := e.output
		if i >= 0 {
			// the throwaway draw consumes one step after i actions
			seed = lcg.Output(lcg.Step(s))
		}
		if param, slot, ok := e.search(seed, item, want); ok {
			plan := e.buildPlan(item, seed, i, param, slot)
			plansTotal.WithLabelValues(StatusOk.String()).Inc()
			planActions.Observe(float64(plan.Actions))
			e.log.Debug("manipulation planned", "actions", plan.Actions, "param", param, "slot", slot)
			return plan, StatusOk
		}
		if i >= 0 {
			s = lcg.Advance(s, cost)
		}
	}
	plansTotal.WithLabelValues(StatusImpossible.String()).Inc()
	return ActionPlan{}, StatusImpossible
}

func (e *Engine) search(seed int32, item Item, want func([]Effect) bool) (param, slot int, ok bool) {
	for param = 0; param <= e.settings.ParamMax; param++ {
		levels := e.model.Levels(seed, param, item)
		for slot = 0; slot < Slots; slot++ {
			if levels[slot] == 0 {
				continue
			}
			if want(e.model.Effects(seed, item, slot, levels[slot])) {
				return param, slot, true
			}
		}
	}
	return 0, 0, false
}

func (e *Engine) buildPlan(item Item, seed int32, actions, param, slot int) ActionPlan {
	plan := ActionPlan{ID: uuid.NewString(), Item: item, Seed: seed}
	if actions >= 0 {
		for range actions {
			plan.Steps = append(plan.Steps, Step{Kind: StepAdvance, Cost: e.settings.ActionCost})
		}
		plan.Steps = append(plan.Steps, Step{Kind: StepAwaitDraw, MinParam: 0, MaxParam: e.settings.ParamMax})
		plan.Actions = actions
	}
	plan.Steps = append(plan.Steps, Step{Kind: StepFinalize, Slot: slot, Param: param})
	return plan
}

// AdvanceUntil counts the consumer actions needed before pred holds for a
// generator positioned at the resulting state. pred receives a private copy
// it may draw from. More than bound actions yields StatusImpossible.
func (e *Engine) AdvanceUntil(pred func(r *lcg.Random) bool, bound int) (int, Status) {
	if !e.state.Known() {
		return 0, StatusNotCracked
	}
	s := e.gen.State()
	for n := 0; n <= bound; n++ {
		if pred(lcg.FromState(s)) {
			return n, StatusOk
		}
		s = lcg.Advance(s, e.settings.ActionCost)
	}
	return 0, StatusImpossible
}

// AdvancePlan is a plan of n bare consumer actions, as found by AdvanceUntil.
func (e *Engine) AdvancePlan(n int) ActionPlan {
	plan := ActionPlan{ID: uuid.NewString(), Actions: n}
	for range n {
		plan.Steps = append(plan.Steps, Step{Kind: StepAdvance, Cost: e.settings.ActionCost})
	}
	return plan
}
