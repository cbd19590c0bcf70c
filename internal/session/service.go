// Package session keeps one crack engine per client session and exposes the
// engine's surfaces in a transport-neutral, JSON-friendly form.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/rngcrack/internal/config"
	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/enchant"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNoPlan     = errors.New("no plan in progress")
)

type Service struct {
	table    *enchant.Table
	resolver config.Resolver
	store    *Store
	log      *slog.Logger
}

func NewService(table *enchant.Table, resolver config.Resolver, store *Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{table: table, resolver: resolver, store: store, log: log}
}

func (svc *Service) Table() *enchant.Table { return svc.table }

// with runs fn on the session while holding its lock.
func (svc *Service) with(id string, fn func(s *Session) error) error {
	s, err := svc.store.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// viewOf runs fn, then snapshots the session.
func (svc *Service) viewOf(id string, fn func(s *Session) error) (View, error) {
	var v View
	err := svc.with(id, func(s *Session) error {
		if fn != nil {
			if err := fn(s); err != nil {
				return err
			}
		}
		v = s.view()
		return nil
	})
	return v, err
}

func (svc *Service) Create(req CreateRequest) (View, error) {
	_, params, err := svc.resolver.Resolve(req.Profile, config.Overrides{
		Maintain:     req.Maintain,
		PlanBound:    req.PlanBound,
		ParamMax:     req.ParamMax,
		MaxWaitTicks: req.MaxWait,
	})
	if err != nil {
		return View{}, err
	}

	s := &Session{
		ID:      uuid.NewString(),
		Profile: req.Profile,
		Params:  params,
		Created: time.Now().UTC(),
	}
	s.engine = crack.NewEngine(svc.table,
		crack.WithSettings(params.Settings()),
		crack.WithLogger(svc.log.With("session", s.ID)),
		crack.WithResetHook(s.recordReset))
	svc.store.Put(s)
	svc.log.Info("session created", "session", s.ID, "profile", req.Profile, "version", params.Version)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

func (svc *Service) Get(id string) (View, error) { return svc.viewOf(id, nil) }

func (svc *Service) Delete(id string) error { return svc.store.Remove(id) }

func (svc *Service) Observe(id string, req ObserveRequest) (View, error) {
	if _, err := svc.table.Item(crack.Item(req.Item)); err != nil {
		return View{}, err
	}
	obs := crack.Observation{Masked: req.Masked, Clues: req.Clues, Power: req.Power, Item: crack.Item(req.Item)}
	return svc.viewOf(id, func(s *Session) error {
		s.engine.Observe(obs)
		return nil
	})
}

// Finalized reports that the active offer was taken.
func (svc *Service) Finalized(id string) (View, error) {
	return svc.viewOf(id, func(s *Session) error {
		s.engine.OutputFinalized()
		return nil
	})
}

func (svc *Service) Steps(id string, req StepsRequest) (View, error) {
	reason := crack.ReasonRequest
	if req.Reason != "" {
		r, ok := crack.ParseReason(req.Reason)
		if !ok {
			return View{}, fmt.Errorf("%w: unknown reason %q", ErrBadRequest, req.Reason)
		}
		reason = r
	}
	if req.Cost < 0 || req.Min < 0 || req.Max < req.Min || req.Amount < 0 || req.Level < 0 {
		return View{}, fmt.Errorf("%w: negative step counts", ErrBadRequest)
	}

	var apply func(e *crack.Engine, cost int)
	defaultCost := false
	switch req.Kind {
	case "self":
		apply = func(e *crack.Engine, cost int) { e.SelfCausedStep(cost) }
		defaultCost = true
	case "expect":
		apply = func(e *crack.Engine, cost int) { e.ExpectSelfCausedStep(cost) }
		defaultCost = true
	case "external":
		if req.Cost == 0 {
			return View{}, fmt.Errorf("%w: external step needs a cost", ErrBadRequest)
		}
		apply = func(e *crack.Engine, cost int) { e.ExternalStep(cost, reason) }
	case "range":
		apply = func(e *crack.Engine, _ int) { e.ExternalStepRange(req.Min, req.Max, reason) }
	case "anvil":
		apply = func(e *crack.Engine, _ int) { e.Anvil() }
	case "bane":
		apply = func(e *crack.Engine, _ int) { e.BaneOfArthropods() }
	case "unbreaking":
		if req.Level < 1 {
			return View{}, fmt.Errorf("%w: unbreaking level must be at least 1", ErrBadRequest)
		}
		apply = func(e *crack.Engine, _ int) { e.Unbreaking(req.Amount, req.Level, req.Armor) }
	case "unmodelable":
		apply = func(e *crack.Engine, _ int) { e.Unmodelable(reason) }
	default:
		return View{}, fmt.Errorf("%w: unknown step kind %q", ErrBadRequest, req.Kind)
	}

	return svc.viewOf(id, func(s *Session) error {
		cost := req.Cost
		if cost == 0 && defaultCost {
			cost = s.Params.ActionCost
		}
		apply(s.engine, cost)
		return nil
	})
}

func (svc *Service) Trusted(id string, req TrustedRequest) (View, error) {
	return svc.viewOf(id, func(s *Session) error {
		if req.Output != nil {
			s.engine.TrustedSeedWithOutput(req.State, *req.Output)
		} else {
			s.engine.TrustedSeed(req.State)
		}
		return nil
	})
}

func (svc *Service) Reset(id string, req ResetRequest) (View, error) {
	reason := crack.ReasonRequest
	if req.Reason != "" {
		r, ok := crack.ParseReason(req.Reason)
		if !ok {
			return View{}, fmt.Errorf("%w: unknown reason %q", ErrBadRequest, req.Reason)
		}
		reason = r
	}
	return svc.viewOf(id, func(s *Session) error {
		s.engine.Reset(reason)
		s.exec, s.actor = nil, nil
		return nil
	})
}

// Plan searches for a manipulation and, when one exists, arms an executor
// driven by Tick.
func (svc *Service) Plan(id string, req PlanRequest) (PlanView, error) {
	if _, err := svc.table.Item(crack.Item(req.Item)); err != nil {
		return PlanView{}, err
	}
	reqs, err := enchant.ParseRequirements(req.Want)
	if err != nil {
		return PlanView{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	want, err := svc.table.Predicate(reqs)
	if err != nil {
		return PlanView{}, err
	}

	var out PlanView
	err = svc.with(id, func(s *Session) error {
		actor := &remoteActor{stable: req.Stable == nil || *req.Stable, items: req.Items}
		plan, st := s.engine.Plan(actor, crack.Item(req.Item), want)
		out = planView(plan, st)
		if st == crack.StatusOk {
			s.actor = actor
			s.exec = crack.NewExecutor(s.engine, actor, plan, s.Params.MaxWaitTicks)
		}
		return nil
	})
	return out, err
}

// Tick advances the armed executor by one step with a fresh snapshot of the
// player, returning what the client has to do next.
func (svc *Service) Tick(id string, req TickRequest) (TickView, error) {
	var out TickView
	err := svc.with(id, func(s *Session) error {
		if s.exec == nil {
			return ErrNoPlan
		}
		s.actor.stable, s.actor.items = req.Stable, req.Items
		s.actor.out = nil

		p := s.exec.Tick()
		out = TickView{
			Step:         p.Step,
			Status:       p.Status.String(),
			Waiting:      p.Waiting,
			Done:         p.Done,
			Instructions: s.actor.out,
		}
		if steps := s.exec.Plan().Steps; !p.Done && p.Step < len(steps) {
			sv := stepView(steps[p.Step])
			out.Next = &sv
		}
		if p.Done {
			s.exec, s.actor = nil, nil
		}
		return nil
	})
	return out, err
}

// Abort stops the armed executor at its next tick.
func (svc *Service) Abort(id string) error {
	return svc.with(id, func(s *Session) error {
		if s.exec == nil {
			return ErrNoPlan
		}
		s.exec.Abort()
		return nil
	})
}

// Predict describes the offers for item at power as far as they are known.
func (svc *Service) Predict(id, item string, power int) ([]SlotView, error) {
	if _, err := svc.table.Item(crack.Item(item)); err != nil {
		return nil, err
	}
	var out []SlotView
	err := svc.with(id, func(s *Session) error {
		for _, sv := range s.engine.Predict(crack.Item(item), power) {
			v := SlotView{Level: sv.Level, Exact: sv.Exact}
			for _, e := range sv.Effects {
				v.Effects = append(v.Effects, EffectView{ID: e.ID, Name: svc.table.Name(e.ID), Level: e.Level})
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

func (s *Session) view() View {
	e := s.engine
	v := View{
		ID:         s.ID,
		Profile:    s.Profile,
		Version:    s.Params.Version,
		State:      e.State().String(),
		Candidates: e.CandidateCount(),
		Draws:      e.Draws(),
		Credit:     e.ExpectedStepCredit(),
		Planning:   s.exec != nil,
		Created:    s.Created,
	}
	if g, ok := e.BestGuess(); ok {
		v.Guess = &GuessView{Kind: g.Kind.String(), Value: g.Value, Remaining: g.Remaining}
	}
	if seed, ok := e.OutputSeed(); ok {
		v.OutputSeed = &seed
	}
	if st, ok := e.GeneratorState(); ok {
		v.GeneratorState = &st
	}
	for _, r := range s.resets {
		v.Resets = append(v.Resets, string(r))
	}
	return v
}

func planView(plan crack.ActionPlan, st crack.Status) PlanView {
	v := PlanView{Status: st.String()}
	if st != crack.StatusOk {
		return v
	}
	v.ID, v.Item, v.Seed, v.Actions = plan.ID, string(plan.Item), plan.Seed, plan.Actions
	for _, step := range plan.Steps {
		v.Steps = append(v.Steps, stepView(step))
	}
	return v
}

func stepView(s crack.Step) StepView {
	return StepView{
		Kind:     s.Kind.String(),
		Cost:     s.Cost,
		MinParam: s.MinParam,
		MaxParam: s.MaxParam,
		Slot:     s.Slot,
		Param:    s.Param,
	}
}

// remoteActor turns executor callbacks into instructions for a client that
// acts in the world and reports its state on every tick.
type remoteActor struct {
	stable bool
	items  int
	out    []Instruction
}

func (a *remoteActor) Stable() bool      { return a.stable }
func (a *remoteActor) HasConsumer() bool { return a.items > 0 }

func (a *remoteActor) Consume() error {
	if a.items <= 0 {
		return errors.New("no item to throw")
	}
	a.items--
	a.out = append(a.out, Instruction{Op: "throw"})
	return nil
}

// AwaitDraw asks the client to enchant a throwaway item at any power up to
// maxParam and report it as finalized.
func (a *remoteActor) AwaitDraw(_, maxParam int) {
	a.out = append(a.out, Instruction{Op: "draw", Param: maxParam})
}

func (a *remoteActor) Finalize(slot, param int) {
	a.out = append(a.out, Instruction{Op: "enchant", Slot: slot, Param: param})
}
