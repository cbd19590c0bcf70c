package crack

import (
	"github.com/xtding233/rngcrack/internal/lcg"
)

const (
	// maskedBits are the output-seed bits the table reveals (bits 4..15)
	maskedBits = 0x0000_FFF0
	// outputSpace counts seeds sharing the masked bits: 16 high and 4 low unknown
	outputSpace = 1 << 20
	// internalSpace counts states sharing a seed's 32 bits
	internalSpace = 1 << 16
	highMask      = uint64(0xFFFF_FFFF_0000)
)

// Observe narrows the output-seed candidates with one table reading.
func (e *Engine) Observe(obs Observation) {
	switch e.state {
	case CrackedOutputSeed, Cracked, CrackedFromTrustedSource:
		return
	case Invalid:
		// stays invalid until the next draw or an explicit reset
		return
	case Uncracked, CrackingInternalState:
		e.state = CrackingOutputSeed
		known := obs.Masked & maskedBits
		e.outputs.fill(outputSpace, func(i int) int32 {
			return int32(uint32(i>>4)<<16) | known | int32(i&0xF)
		})
	}
	e.last = &obs

	before := e.outputs.len()
	n := e.outputs.narrow(func(seed int32) (int32, bool) {
		return seed, e.consistent(seed, obs)
	})
	observationsTotal.WithLabelValues(narrowerOutput).Inc()
	if before > 0 {
		survivorsRatio.WithLabelValues(narrowerOutput).Observe(float64(n) / float64(before))
	}

	switch n {
	case 0:
		e.state = Invalid
		contradictionsTotal.WithLabelValues(narrowerOutput).Inc()
		e.log.Warn("invalid enchantment seed information: unknown server mods, a desync, or a client bug",
			"item", obs.Item, "power", obs.Power)
	case 1:
		seed, _ := e.outputs.only()
		e.state = CrackedOutputSeed
		e.output = seed
		convergencesTotal.WithLabelValues(narrowerOutput).Inc()
		e.log.Debug("output seed cracked", "seed", seed, "chained", !e.firstSeed)
		if !e.firstSeed {
			e.chain(seed)
		}
		e.firstSeed = false
	}
}

// consistent replays seed through the model and compares it with obs. Levels
// are checked for every slot before any hint is derived.
func (e *Engine) consistent(seed int32, obs Observation) bool {
	levels := e.model.Levels(seed, obs.Power, obs.Item)
	for slot := range Slots {
		if levels[slot] != obs.Clues[slot].Level {
			return false
		}
	}
	for slot, clue := range obs.Clues {
		if clue.Level == 0 {
			continue
		}
		hint, ok := e.model.Hint(seed, obs.Item, slot, clue.Level)
		if clue.Hint == nil {
			if ok {
				return false
			}
			continue
		}
		if !ok || hint != *clue.Hint {
			return false
		}
	}
	return true
}

// chain feeds a freshly drawn output seed into the internal-state narrower.
// The seed is the top 32 bits of the generator state right after the draw.
func (e *Engine) chain(seed int32) {
	high := uint64(uint32(seed)) << 16
	if !e.internals.live {
		e.internals.fill(internalSpace, func(i int) uint64 { return high | uint64(i) })
		return
	}

	before := e.internals.len()
	n := e.internals.narrow(func(s uint64) (uint64, bool) {
		next := lcg.Step(s)
		return next, next&highMask == high
	})
	observationsTotal.WithLabelValues(narrowerInternal).Inc()
	if before > 0 {
		survivorsRatio.WithLabelValues(narrowerInternal).Observe(float64(n) / float64(before))
	}

	switch n {
	case 0:
		e.state = Invalid
		e.internals.clear()
		contradictionsTotal.WithLabelValues(narrowerInternal).Inc()
		e.log.Warn("invalid player RNG information: unknown server mods, a desync, an operator grant, or a client bug")
	case 1:
		state, _ := e.internals.only()
		e.gen = lcg.NewRandom(int64(state ^ lcg.Multiplier))
		e.output = seed
		e.outputKnown = true
		e.state = Cracked
		e.internals.clear()
		convergencesTotal.WithLabelValues(narrowerInternal).Inc()
		e.log.Info("generator state cracked")
	}
}
