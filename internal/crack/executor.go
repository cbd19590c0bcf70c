package crack

// Actor is the world-facing side of plan execution.
type Actor interface {
	Agent
	// Consume performs one consumer action (throws one item).
	Consume() error
	// Finalize tells the user which parameter and slot realize the goal.
	Finalize(slot, param int)
}

// Drawer is implemented by actors that want to be told when the plan needs
// one throwaway offer taken, with any parameter in [minParam, maxParam].
type Drawer interface {
	AwaitDraw(minParam, maxParam int)
}

// Progress is reported after every tick.
type Progress struct {
	// Step is the index of the step the executor is on (len(Steps) when done).
	Step    int
	Status  Status
	Waiting bool
	Done    bool
}

// Executor walks an ActionPlan one step per tick. Steps already executed are
// never rolled back.
type Executor struct {
	engine  *Engine
	actor   Actor
	plan    ActionPlan
	maxWait int

	next     int
	waited   int
	prompted bool
	drawsAt  int
	abort    bool
	done     bool
	status   Status
}

// NewExecutor prepares plan for execution. An Advance step blocked on an
// empty resource, and an AwaitDraw step whose draw has not happened, each
// wait up to maxWait ticks (0 waits forever).
func NewExecutor(engine *Engine, actor Actor, plan ActionPlan, maxWait int) *Executor {
	x := &Executor{engine: engine, actor: actor, plan: plan, maxWait: maxWait}
	x.enter()
	return x
}

// enter prepares the step at x.next. A draw realized any time after the
// previous step completed counts for an AwaitDraw step.
func (x *Executor) enter() {
	x.waited = 0
	x.prompted = false
	if x.next < len(x.plan.Steps) && x.plan.Steps[x.next].Kind == StepAwaitDraw {
		x.drawsAt = x.engine.Draws()
	}
}

func (x *Executor) prompt() {
	if x.prompted {
		return
	}
	x.prompted = true
	if d, ok := x.actor.(Drawer); ok {
		step := x.plan.Steps[x.next]
		d.AwaitDraw(step.MinParam, step.MaxParam)
	}
}

func (x *Executor) Plan() ActionPlan { return x.plan }

// Abort stops the executor at its next tick.
func (x *Executor) Abort() { x.abort = true }

func (x *Executor) Done() bool { return x.done }

// Tick executes at most one step.
func (x *Executor) Tick() Progress {
	if x.done {
		return x.progress(false)
	}
	if x.abort {
		return x.finish(StatusAborted)
	}
	if x.next >= len(x.plan.Steps) {
		return x.finish(StatusOk)
	}

	step := x.plan.Steps[x.next]
	switch step.Kind {
	case StepAdvance:
		return x.advance(step)
	case StepAwaitDraw:
		return x.awaitDraw()
	case StepFinalize:
		x.actor.Finalize(step.Slot, step.Param)
		x.next++
		return x.finish(StatusOk)
	}
	return x.finish(StatusImpossible)
}

func (x *Executor) advance(step Step) Progress {
	switch st := x.engine.Ready(x.actor); st {
	case StatusOk:
	case StatusEmptyResource:
		x.waited++
		if x.maxWait > 0 && x.waited > x.maxWait {
			return x.finish(st)
		}
		x.status = st
		return x.progress(true)
	default:
		return x.finish(st)
	}

	if err := x.actor.Consume(); err != nil {
		x.engine.log.Warn("consumer action failed", "plan", x.plan.ID, "step", x.next, "err", err)
		return x.finish(StatusEmptyResource)
	}
	x.engine.ExpectSelfCausedStep(step.Cost)
	x.next++
	x.enter()
	x.status = StatusOk
	if x.next >= len(x.plan.Steps) {
		return x.finish(StatusOk)
	}
	if x.plan.Steps[x.next].Kind == StepAwaitDraw {
		x.prompt()
	}
	return x.progress(false)
}

func (x *Executor) awaitDraw() Progress {
	if !x.engine.State().Known() {
		return x.finish(StatusNotCracked)
	}
	x.prompt()
	x.status = StatusOk
	if x.engine.Draws() == x.drawsAt {
		x.waited++
		if x.maxWait > 0 && x.waited > x.maxWait {
			return x.finish(StatusNotReady)
		}
		return x.progress(true)
	}
	if seed, ok := x.engine.OutputSeed(); !ok || seed != x.plan.Seed {
		x.engine.log.Warn("drawn output seed differs from plan", "plan", x.plan.ID)
		return x.finish(StatusNotCracked)
	}
	x.next++
	x.enter()
	return x.progress(false)
}

func (x *Executor) finish(st Status) Progress {
	x.done = true
	x.status = st
	return x.progress(false)
}

func (x *Executor) progress(waiting bool) Progress {
	return Progress{Step: x.next, Status: x.status, Waiting: waiting, Done: x.done}
}
