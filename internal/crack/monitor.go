package crack

import "github.com/xtding233/rngcrack/internal/lcg"

// The activity monitor tries to see, client side, every server-side use of
// the generator. Each event either keeps a known state in sync, is absorbed
// by credit for an action the client already accounted for, or resets.
//
// A known blind spot: another operator granting the player an item consumes
// the generator without any client-visible event.

func (e *Engine) maintainable() bool {
	return e.settings.Maintain && e.state.Known()
}

// ExpectSelfCausedStep accounts for a consumer action the client is about to
// perform. When the state is known the generator is advanced now and the
// server's later confirmation is absorbed by credit.
func (e *Engine) ExpectSelfCausedStep(cost int) {
	if !e.state.Known() {
		return
	}
	e.credit++
	e.gen.Skip(cost)
}

// SelfCausedStep handles the server's report of a consumer action of known
// cost taken by the client.
func (e *Engine) SelfCausedStep(cost int) {
	switch {
	case e.credit > 0:
		e.credit--
	case e.maintainable():
		e.gen.Skip(cost)
	default:
		e.Reset(ReasonDropItem)
	}
}

// ExternalStep handles an external consumer with an exactly known cost.
func (e *Engine) ExternalStep(cost int, reason Reason) {
	if e.maintainable() {
		e.gen.Skip(cost)
		return
	}
	e.Reset(reason)
}

// ExternalDraw handles an external consumer whose number of draws depends on
// the generator's own output. replay must perform exactly the server's draws.
func (e *Engine) ExternalDraw(reason Reason, replay func(r *lcg.Random)) {
	if e.maintainable() {
		replay(e.gen)
		return
	}
	e.Reset(reason)
}

// ExternalStepRange handles a consumer whose cost is only known as a range.
// Partial knowledge cannot be combined with exact tracking.
func (e *Engine) ExternalStepRange(minCost, maxCost int, reason Reason) {
	if minCost == maxCost {
		e.ExternalStep(minCost, reason)
		return
	}
	e.Reset(reason)
}

// Unmodelable handles a generator use the client cannot account for.
func (e *Engine) Unmodelable(reason Reason) {
	e.Reset(reason)
}

// Anvil records an anvil use, which draws one value.
func (e *Engine) Anvil() { e.ExternalStep(1, ReasonAnvil) }

// BaneOfArthropods records a Bane of Arthropods hit, which draws one value.
func (e *Engine) BaneOfArthropods() { e.ExternalStep(1, ReasonBaneOfArthropods) }

// Unbreaking records amount points of damage to an item with the given
// Unbreaking level. Armor first rolls a float and only consults the level on
// rolls of at least 0.6. Without the enchantment the server draws nothing.
func (e *Engine) Unbreaking(amount, level int, armor bool) {
	if level < 1 {
		return
	}
	e.ExternalDraw(ReasonUnbreaking, func(r *lcg.Random) {
		for i := 0; i < amount; i++ {
			if !armor || r.Float() >= 0.6 {
				r.IntN(int32(level + 1))
			}
		}
	})
}
