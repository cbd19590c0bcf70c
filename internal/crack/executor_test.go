package crack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/rngcrack/internal/lcg"
)

type fakeActor struct {
	fakeAgent
	consumed  int
	finalized [][2]int
}

func (a *fakeActor) Consume() error {
	if a.items == 0 {
		return errors.New("nothing to throw")
	}
	a.items--
	a.consumed++
	return nil
}

func (a *fakeActor) Finalize(slot, param int) {
	a.finalized = append(a.finalized, [2]int{slot, param})
}

// plannedThree returns an engine at s0 and a plan needing three throws.
func plannedThree(t *testing.T) (*Engine, ActionPlan) {
	t.Helper()
	e := NewEngine(planModel{})
	e.TrustedSeed(s0)
	target := lcg.Output(lcg.Step(lcg.Advance(s0, 12)))
	plan, st := e.Plan(&fakeAgent{stable: true, items: 1}, "sword",
		goal(target, func(l int) bool { return l == 81 }))
	require.Equal(t, StatusOk, st)
	require.Equal(t, 3, plan.Actions)
	return e, plan
}

func TestExecutorRunsPlanToCompletion(t *testing.T) {
	e, plan := plannedThree(t)
	actor := &fakeActor{fakeAgent: fakeAgent{stable: true, items: 10}}
	x := NewExecutor(e, actor, plan, 0)
	server := lcg.FromState(s0)

	for i := 1; i <= 3; i++ {
		p := x.Tick()
		assert.Equal(t, Progress{Step: i, Status: StatusOk}, p)
	}
	assert.Equal(t, 3, e.ExpectedStepCredit())

	p := x.Tick()
	assert.True(t, p.Waiting)
	assert.True(t, x.Tick().Waiting, "no draw yet")

	// the server confirms the throws, then the throwaway item is enchanted
	for i := 0; i < 3; i++ {
		server.Skip(4)
		e.SelfCausedStep(4)
	}
	seed := server.Int()
	e.OutputFinalized()
	require.Equal(t, plan.Seed, seed)

	p = x.Tick()
	assert.Equal(t, Progress{Step: 4, Status: StatusOk}, p)

	p = x.Tick()
	assert.True(t, p.Done)
	assert.Equal(t, StatusOk, p.Status)
	assert.Equal(t, [][2]int{{1, 7}}, actor.finalized)
	assert.Equal(t, 3, actor.consumed)
	assert.True(t, x.Done())

	// further ticks are inert
	assert.Equal(t, p, x.Tick())
	assert.Len(t, actor.finalized, 1)
}

func TestExecutorWaitsThenGivesUpOnEmptyResource(t *testing.T) {
	e, plan := plannedThree(t)
	actor := &fakeActor{fakeAgent: fakeAgent{stable: true, items: 1}}
	x := NewExecutor(e, actor, plan, 2)

	assert.Equal(t, StatusOk, x.Tick().Status)
	for i := 0; i < 2; i++ {
		p := x.Tick()
		assert.True(t, p.Waiting)
		assert.Equal(t, StatusEmptyResource, p.Status)
		assert.False(t, p.Done)
	}

	p := x.Tick()
	assert.True(t, p.Done)
	assert.Equal(t, StatusEmptyResource, p.Status)
	assert.Equal(t, 1, p.Step, "executed steps are not rolled back")
	assert.Equal(t, 1, actor.consumed)
	assert.Empty(t, actor.finalized)
	assert.Equal(t, 1, e.ExpectedStepCredit())
}

func TestExecutorResumesWhenRefilled(t *testing.T) {
	e, plan := plannedThree(t)
	actor := &fakeActor{fakeAgent: fakeAgent{stable: true, items: 1}}
	x := NewExecutor(e, actor, plan, 0)

	x.Tick()
	for i := 0; i < 5; i++ {
		require.True(t, x.Tick().Waiting)
	}
	actor.items = 5
	p := x.Tick()
	assert.Equal(t, Progress{Step: 2, Status: StatusOk}, p)
}

func TestExecutorAbort(t *testing.T) {
	e, plan := plannedThree(t)
	actor := &fakeActor{fakeAgent: fakeAgent{stable: true, items: 10}}
	x := NewExecutor(e, actor, plan, 0)

	x.Tick()
	x.Abort()
	p := x.Tick()
	assert.Equal(t, Progress{Step: 1, Status: StatusAborted, Done: true}, p)
	assert.Equal(t, 1, actor.consumed)
	assert.Empty(t, actor.finalized)
}

func TestExecutorAbortsOnUnstableAgent(t *testing.T) {
	e, plan := plannedThree(t)
	actor := &fakeActor{fakeAgent: fakeAgent{stable: false, items: 10}}
	x := NewExecutor(e, actor, plan, 0)

	p := x.Tick()
	assert.True(t, p.Done)
	assert.Equal(t, StatusNotReady, p.Status)
	assert.Zero(t, actor.consumed)
}

func TestExecutorDetectsUnexpectedDraw(t *testing.T) {
	e, plan := plannedThree(t)
	actor := &fakeActor{fakeAgent: fakeAgent{stable: true, items: 10}}
	x := NewExecutor(e, actor, plan, 0)

	for range 4 {
		x.Tick()
	}
	e.Anvil()
	e.OutputFinalized()

	p := x.Tick()
	assert.True(t, p.Done)
	assert.Equal(t, StatusNotCracked, p.Status)
	assert.Empty(t, actor.finalized)
}

func TestAbortMidPlanWhenResourceRunsOut(t *testing.T) {
	e := NewEngine(planModel{})
	e.TrustedSeed(s0)
	target := lcg.Output(lcg.Step(lcg.Advance(s0, 8)))
	plan, st := e.Plan(&fakeAgent{stable: true, items: 1}, "sword",
		goal(target, func(l int) bool { return l == 81 }))
	require.Equal(t, StatusOk, st)
	require.Equal(t, 2, plan.Actions)

	actor := &fakeActor{fakeAgent: fakeAgent{stable: true, items: 1}}
	x := NewExecutor(e, actor, plan, 1)
	require.Equal(t, StatusOk, x.Tick().Status)

	var p Progress
	for !p.Done {
		p = x.Tick()
	}
	assert.Equal(t, StatusEmptyResource, p.Status)
	assert.Equal(t, 1, p.Step)
	assert.Equal(t, 1, actor.consumed)
	assert.Empty(t, actor.finalized)
}

type drawingActor struct {
	fakeActor
	prompts [][2]int
}

func (a *drawingActor) AwaitDraw(minParam, maxParam int) {
	a.prompts = append(a.prompts, [2]int{minParam, maxParam})
}

func plannedOne(t *testing.T) (*Engine, ActionPlan) {
	t.Helper()
	e := NewEngine(planModel{})
	e.TrustedSeed(s0)
	target := lcg.Output(lcg.Step(lcg.Advance(s0, 4)))
	plan, st := e.Plan(&fakeAgent{stable: true, items: 1}, "sword",
		goal(target, func(l int) bool { return l == 81 }))
	require.Equal(t, StatusOk, st)
	require.Equal(t, 1, plan.Actions)
	return e, plan
}

func TestDrawRightAfterLastThrowCounts(t *testing.T) {
	e, plan := plannedOne(t)
	actor := &drawingActor{fakeActor: fakeActor{fakeAgent: fakeAgent{stable: true, items: 5}}}
	x := NewExecutor(e, actor, plan, 3)

	p := x.Tick()
	assert.Equal(t, Progress{Step: 1, Status: StatusOk}, p)
	assert.Equal(t, [][2]int{{0, 15}}, actor.prompts, "told to take a throwaway offer with the throw")

	// the throwaway item is enchanted before the next tick
	e.SelfCausedStep(4)
	e.OutputFinalized()

	p = x.Tick()
	assert.Equal(t, Progress{Step: 2, Status: StatusOk}, p)
	p = x.Tick()
	assert.True(t, p.Done)
	assert.Equal(t, StatusOk, p.Status)
	assert.Equal(t, [][2]int{{1, 7}}, actor.finalized)
	assert.Len(t, actor.prompts, 1)
}

func TestAwaitDrawGivesUpAfterMaxWait(t *testing.T) {
	e, plan := plannedOne(t)
	actor := &fakeActor{fakeAgent: fakeAgent{stable: true, items: 5}}
	x := NewExecutor(e, actor, plan, 2)

	require.Equal(t, StatusOk, x.Tick().Status)
	for i := 0; i < 2; i++ {
		p := x.Tick()
		require.True(t, p.Waiting)
		require.False(t, p.Done)
	}
	p := x.Tick()
	assert.True(t, p.Done)
	assert.Equal(t, StatusNotReady, p.Status)
	assert.Equal(t, 1, p.Step)
	assert.Empty(t, actor.finalized)
}

func TestLeadingAwaitDrawPromptsOnce(t *testing.T) {
	e := NewEngine(planModel{})
	e.TrustedSeed(s0)
	target := lcg.Output(lcg.Step(s0))
	plan, st := e.Plan(&fakeAgent{stable: true, items: 1}, "sword",
		goal(target, func(l int) bool { return l >= 30 }))
	require.Equal(t, StatusOk, st)
	require.Equal(t, StepAwaitDraw, plan.Steps[0].Kind)

	actor := &drawingActor{fakeActor: fakeActor{fakeAgent: fakeAgent{stable: true, items: 1}}}
	x := NewExecutor(e, actor, plan, 0)
	assert.True(t, x.Tick().Waiting)
	assert.True(t, x.Tick().Waiting)
	assert.Len(t, actor.prompts, 1)

	e.OutputFinalized()
	assert.Equal(t, Progress{Step: 1, Status: StatusOk}, x.Tick())
	assert.True(t, x.Tick().Done)
	assert.Len(t, actor.finalized, 1)
}
