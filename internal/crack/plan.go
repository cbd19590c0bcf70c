package crack

import "fmt"

// Status is the outcome of a planning or execution request.
type Status int

const (
	StatusOk Status = iota
	StatusNotCracked
	StatusNotReady
	StatusEmptyResource
	StatusImpossible
	// StatusAborted is reported only by an Executor stopped by Abort.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusNotCracked:
		return "notCracked"
	case StatusNotReady:
		return "notOnGround"
	case StatusEmptyResource:
		return "emptyInventory"
	case StatusImpossible:
		return "impossible"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StepKind tags the variant held by a Step.
type StepKind int

const (
	// StepAdvance performs one consumer action of Cost generator steps.
	StepAdvance StepKind = iota
	// StepAwaitDraw waits for the caller to realize one throwaway output with
	// any parameter in [MinParam, MaxParam], which draws the planned seed.
	StepAwaitDraw
	// StepFinalize realizes the goal with parameter Param at slot Slot.
	StepFinalize
)

func (k StepKind) String() string {
	switch k {
	case StepAdvance:
		return "advance"
	case StepAwaitDraw:
		return "awaitDraw"
	case StepFinalize:
		return "finalize"
	default:
		return fmt.Sprintf("step(%d)", int(k))
	}
}

type Step struct {
	Kind     StepKind
	Cost     int
	MinParam int
	MaxParam int
	Slot     int
	Param    int
}

// ActionPlan is an ordered, immutable list of steps. Executors only walk it.
type ActionPlan struct {
	ID    string
	Item  Item
	Steps []Step
	// Seed is the output seed the plan lands on; meaningful only for plans
	// ending in a Finalize step.
	Seed int32
	// Actions is the number of Advance steps.
	Actions int
}

// Final returns the Finalize step, if any.
func (p ActionPlan) Final() (Step, bool) {
	if n := len(p.Steps); n > 0 && p.Steps[n-1].Kind == StepFinalize {
		return p.Steps[n-1], true
	}
	return Step{}, false
}
