package sim

import (
	"errors"

	"github.com/xtding233/rngcrack/internal/crack"
)

var ErrNoItems = errors.New("no items left to throw")

// Player is a client standing at the server's table with a stack of items.
// It satisfies crack.Actor.
type Player struct {
	srv    *Server
	Items  int
	throws int

	finalized   bool
	slot, param int
}

func NewPlayer(srv *Server, items int) *Player {
	return &Player{srv: srv, Items: items}
}

func (p *Player) Stable() bool      { return true }
func (p *Player) HasConsumer() bool { return p.Items > 0 }

func (p *Player) Consume() error {
	if p.Items <= 0 {
		return ErrNoItems
	}
	p.Items--
	p.throws++
	p.srv.Throw()
	return nil
}

func (p *Player) Finalize(slot, param int) {
	p.finalized, p.slot, p.param = true, slot, param
}

// Outcome is how a followed plan ended.
type Outcome struct {
	Progress crack.Progress
	Ticks    int
	Throws   int
	// Slot, Power and Effects describe the offer taken at the Finalize step.
	Slot    int
	Power   int
	Effects []crack.Effect
}

// Follow executes plan against the server, answering each wait the way the
// server would: echoing throws back and drawing a new output seed when the
// plan awaits one. It stops when the executor is done or after maxTicks.
func Follow(engine *crack.Engine, srv *Server, p *Player, plan crack.ActionPlan, maxTicks int) Outcome {
	x := crack.NewExecutor(engine, p, plan, 0)
	var out Outcome
	for out.Ticks < maxTicks {
		before := p.throws
		pr := x.Tick()
		out.Ticks++
		out.Progress = pr
		if p.throws > before {
			engine.SelfCausedStep(ThrowCost)
		}
		if pr.Done {
			break
		}
		if pr.Waiting && pr.Step < len(plan.Steps) && plan.Steps[pr.Step].Kind == crack.StepAwaitDraw {
			srv.Power = plan.Steps[pr.Step].MaxParam
			srv.Enchant()
			engine.OutputFinalized()
		}
	}
	out.Throws = p.throws
	if p.finalized {
		levels := srv.model.Levels(srv.seed, p.param, srv.Item)
		out.Slot, out.Power = p.slot, p.param
		out.Effects = srv.model.Effects(srv.seed, srv.Item, p.slot, levels[p.slot])
	}
	return out
}
