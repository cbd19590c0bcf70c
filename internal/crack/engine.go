// Package crack recovers the state of a remote 48-bit LCG from masked
// enchanting-table readings and plans actions that steer its future output.
//
// An Engine is not safe for concurrent use; callers sharing one across
// goroutines must serialise every call.
package crack

import (
	"log/slog"

	"github.com/xtding233/rngcrack/internal/lcg"
)

// Settings tune tracking and planning.
type Settings struct {
	// Maintain keeps a cracked generator in sync across predictable
	// consumers instead of resetting.
	Maintain bool
	// PlanBound is the exclusive upper bound on consumer actions searched.
	PlanBound int
	// ParamMax is the highest external parameter (table power) tried.
	ParamMax int
	// ActionCost is the number of generator steps one consumer action takes.
	ActionCost int
}

func DefaultSettings() Settings {
	return Settings{Maintain: true, PlanBound: 1000, ParamMax: 15, ActionCost: 4}
}

type Option func(*Engine)

func WithSettings(s Settings) Option { return func(e *Engine) { e.settings = s } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithResetHook registers fn to receive the reason whenever tracking that had
// made progress is abandoned.
func WithResetHook(fn func(Reason)) Option { return func(e *Engine) { e.onReset = fn } }

// Engine owns both candidate sets, the working generator and the crack state.
type Engine struct {
	model    EffectModel
	settings Settings
	log      *slog.Logger
	onReset  func(Reason)

	state     State
	outputs   candidateSet[int32]
	internals candidateSet[uint64]
	// firstSeed is set while the next converged output seed was drawn at an
	// unknown time and cannot be chained.
	firstSeed bool

	gen         *lcg.Random
	output      int32
	outputKnown bool
	credit      int
	draws       int
	last        *Observation
}

func NewEngine(model EffectModel, opts ...Option) *Engine {
	e := &Engine{
		model:     model,
		settings:  DefaultSettings(),
		log:       slog.Default(),
		firstSeed: true,
		gen:       lcg.NewRandom(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "rngcrack")
	return e
}

func (e *Engine) State() State { return e.state }

func (e *Engine) Settings() Settings { return e.settings }

// Draws counts realized outputs reported through OutputFinalized.
func (e *Engine) Draws() int { return e.draws }

// ExpectedStepCredit is the number of self-caused actions still awaiting
// confirmation.
func (e *Engine) ExpectedStepCredit() int { return e.credit }

// GeneratorState returns the working generator's state once it is known.
func (e *Engine) GeneratorState() (uint64, bool) {
	if !e.state.Known() {
		return 0, false
	}
	return e.gen.State(), true
}

// OutputSeed returns the active output seed when it is determined.
func (e *Engine) OutputSeed() (int32, bool) {
	switch e.state {
	case CrackedOutputSeed:
		return e.output, true
	case Cracked:
		return e.output, e.outputKnown
	}
	return 0, false
}

// CandidateCount reports the size of the set currently being narrowed.
func (e *Engine) CandidateCount() int {
	switch e.state {
	case CrackingOutputSeed:
		return e.outputs.len()
	case CrackingInternalState:
		return e.internals.len()
	case CrackedOutputSeed, Cracked, CrackedFromTrustedSource:
		return 1
	}
	return 0
}

// GuessKind says which quantity a Guess refers to.
type GuessKind int

const (
	GuessOutputSeed GuessKind = iota
	GuessInternalState
)

func (k GuessKind) String() string {
	if k == GuessInternalState {
		return "internal_state"
	}
	return "output_seed"
}

// Guess is the most likely value for display. Remaining is the size of the
// set it was drawn from; 1 means exact.
type Guess struct {
	Kind      GuessKind
	Value     int64
	Remaining int
}

func (e *Engine) BestGuess() (Guess, bool) {
	switch e.state {
	case CrackingOutputSeed:
		if v, ok := e.outputs.first(); ok {
			return Guess{Kind: GuessOutputSeed, Value: int64(v), Remaining: e.outputs.len()}, true
		}
	case CrackedOutputSeed:
		return Guess{Kind: GuessOutputSeed, Value: int64(e.output), Remaining: 1}, true
	case CrackingInternalState:
		if v, ok := e.internals.first(); ok {
			return Guess{Kind: GuessInternalState, Value: int64(v), Remaining: e.internals.len()}, true
		}
	case Cracked, CrackedFromTrustedSource:
		return Guess{Kind: GuessInternalState, Value: int64(e.gen.State()), Remaining: 1}, true
	}
	return Guess{}, false
}

// OutputFinalized records that the active output was realized (an item was
// enchanted) and the server drew a fresh output seed.
func (e *Engine) OutputFinalized() {
	e.draws++
	switch e.state {
	case Cracked, CrackedFromTrustedSource:
		e.output = e.gen.Int()
		e.outputKnown = true
		e.outputs.clear()
		e.state = Cracked
	case CrackedOutputSeed:
		e.outputs.clear()
		e.state = CrackingInternalState
	default:
		// the chain is broken, but the next seed is fresh
		e.clear()
		e.firstSeed = false
	}
}

// TrustedSeed adopts an exactly known generator state, bypassing narrowing.
// The active output seed stays unknown until the next OutputFinalized.
func (e *Engine) TrustedSeed(state uint64) {
	e.clear()
	e.gen = lcg.NewRandom(int64((state & lcg.Mask) ^ lcg.Multiplier))
	e.state = CrackedFromTrustedSource
	e.log.Info("generator state adopted from trusted source")
}

// TrustedSeedWithOutput adopts a known state together with the output seed it
// last produced, which makes the engine fully synchronised.
func (e *Engine) TrustedSeedWithOutput(state uint64, output int32) {
	e.TrustedSeed(state)
	e.output = output
	e.outputKnown = true
	e.state = Cracked
}

// Reset abandons all progress. The reason is surfaced unless nothing was
// being tracked.
func (e *Engine) Reset(reason Reason) {
	if e.state != Uncracked {
		e.log.Info("rng tracking reset", "reason", reason, "from", e.state.String())
		resetsTotal.WithLabelValues(string(reason)).Inc()
		if e.onReset != nil {
			e.onReset(reason)
		}
	}
	e.clear()
}

func (e *Engine) clear() {
	e.state = Uncracked
	e.firstSeed = true
	e.outputs.clear()
	e.internals.clear()
	e.outputKnown = false
	e.last = nil
}

// SlotView is what the engine can say about one table slot.
type SlotView struct {
	Level   int
	Effects []Effect
	// Exact is set when Effects is the full predicted offer rather than the
	// server's single hint.
	Exact bool
}

// Predict describes the table offers for the active output seed. Without a
// known seed it falls back to the last observed clues.
func (e *Engine) Predict(item Item, power int) [Slots]SlotView {
	var out [Slots]SlotView
	if seed, ok := e.OutputSeed(); ok {
		levels := e.model.Levels(seed, power, item)
		for slot, level := range levels {
			out[slot] = SlotView{Level: level, Exact: true}
			if level > 0 {
				out[slot].Effects = e.model.Effects(seed, item, slot, level)
			}
		}
		return out
	}
	if e.last == nil {
		return out
	}
	for slot, clue := range e.last.Clues {
		out[slot].Level = clue.Level
		if clue.Hint != nil {
			out[slot].Effects = []Effect{*clue.Hint}
		}
	}
	return out
}
