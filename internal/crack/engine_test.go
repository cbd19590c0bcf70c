package crack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/rngcrack/internal/lcg"
)

// revealModel leaks every unmasked bit of the seed through the hints, so a
// single reading pins the output seed.
type revealModel struct{}

func (revealModel) Levels(int32, int, Item) [Slots]int { return [Slots]int{1, 2, 3} }

func (revealModel) Effects(seed int32, _ Item, slot, _ int) []Effect {
	return []Effect{{ID: int(uint32(seed) >> 16), Level: int(seed&0xF) + slot}}
}

func (m revealModel) Hint(seed int32, item Item, slot, level int) (Effect, bool) {
	return m.Effects(seed, item, slot, level)[0], true
}

// read builds the observation a client would get for seed.
func read(m EffectModel, seed int32) Observation {
	obs := Observation{Masked: seed & 0xFFF0, Power: 15, Item: "sword"}
	for slot, level := range m.Levels(seed, obs.Power, obs.Item) {
		obs.Clues[slot].Level = level
		if level == 0 {
			continue
		}
		if h, ok := m.Hint(seed, obs.Item, slot, level); ok {
			obs.Clues[slot].Hint = &h
		}
	}
	return obs
}

// crackFrom drives a fresh engine to Cracked against a server generator.
func crackFrom(t *testing.T, server *lcg.Random, opts ...Option) *Engine {
	t.Helper()
	e := NewEngine(revealModel{}, opts...)
	for i := 0; i < 3; i++ {
		e.Observe(read(revealModel{}, server.Int()))
		if e.State() == Cracked {
			return e
		}
		e.OutputFinalized()
	}
	t.Fatalf("not cracked after 3 readings, state %s", e.State())
	return nil
}

func TestObserveConvergesThroughAllStates(t *testing.T) {
	server := lcg.FromState(0x1234_5678_9ABC)
	e := NewEngine(revealModel{})
	assert.Equal(t, Uncracked, e.State())

	seed1 := server.Int()
	e.Observe(read(revealModel{}, seed1))
	require.Equal(t, CrackedOutputSeed, e.State())
	got, ok := e.OutputSeed()
	require.True(t, ok)
	assert.Equal(t, seed1, got)

	// the first seed was drawn at an unknown time, so nothing is chained
	e.OutputFinalized()
	assert.Equal(t, CrackingInternalState, e.State())
	assert.False(t, e.internals.live)

	seed2 := server.Int()
	e.Observe(read(revealModel{}, seed2))
	require.Equal(t, CrackedOutputSeed, e.State())
	assert.Equal(t, internalSpace, e.internals.len())

	e.OutputFinalized()
	assert.Equal(t, CrackingInternalState, e.State())
	assert.Equal(t, internalSpace, e.CandidateCount())

	seed3 := server.Int()
	e.Observe(read(revealModel{}, seed3))
	require.Equal(t, Cracked, e.State())

	st, ok := e.GeneratorState()
	require.True(t, ok)
	assert.Equal(t, server.State(), st)
	assert.Equal(t, uint64(0x689E_F830_B5D6), lcg.Advance(0x1234_5678_9ABC, 2))

	got, ok = e.OutputSeed()
	require.True(t, ok)
	assert.Equal(t, seed3, got)
}

func TestObserveKeepsTrueSeedAndShrinks(t *testing.T) {
	e := NewEngine(revealModel{})
	seed := int32(-123456789)
	obs := read(revealModel{}, seed)

	// strip the hints of two slots so the set cannot collapse at once
	obs.Clues[1].Hint, obs.Clues[2].Hint = nil, nil
	e.Observe(obs)

	// revealModel always hints, so a missing hint contradicts every seed
	assert.Equal(t, Invalid, e.State())

	e = NewEngine(levelModel{})
	obs = read(levelModel{}, seed)
	e.Observe(obs)
	require.Equal(t, CrackingOutputSeed, e.State())
	first := e.CandidateCount()
	assert.Less(t, first, outputSpace)
	assert.True(t, e.outputs.contains(seed))

	obs.Power = 7
	for slot, level := range (levelModel{}).Levels(seed, 7, obs.Item) {
		obs.Clues[slot] = Clue{Level: level}
	}
	e.Observe(obs)
	assert.LessOrEqual(t, e.CandidateCount(), first)
	assert.True(t, e.outputs.contains(seed))
}

// levelModel only reveals a few bits of the seed through levels.
type levelModel struct{}

func (levelModel) Levels(seed int32, power int, _ Item) [Slots]int {
	v := int(uint32(seed)>>16) ^ power
	return [Slots]int{v&3 + 1, v>>2&3 + 2, v>>4&3 + 3}
}

func (levelModel) Effects(int32, Item, int, int) []Effect { return nil }

func (levelModel) Hint(int32, Item, int, int) (Effect, bool) { return Effect{}, false }

func TestContradictionIsTerminalUntilNextDraw(t *testing.T) {
	e := NewEngine(revealModel{})
	obs := read(revealModel{}, 42)
	bad := *obs.Clues[0].Hint
	bad.Level += 5
	obs.Clues[0].Hint = &bad

	e.Observe(obs)
	require.Equal(t, Invalid, e.State())
	assert.Equal(t, 0, e.CandidateCount())

	e.Observe(read(revealModel{}, 42))
	assert.Equal(t, Invalid, e.State(), "invalid ignores further readings")

	e.OutputFinalized()
	assert.Equal(t, Uncracked, e.State())
	// the next seed is drawn right after a known draw and can be chained
	assert.False(t, e.firstSeed)
}

func TestCrackedIgnoresReadings(t *testing.T) {
	server := lcg.FromState(0x0000_BEEF_CAFE)
	e := crackFrom(t, server)
	before, _ := e.GeneratorState()
	e.Observe(read(revealModel{}, 7))
	assert.Equal(t, Cracked, e.State())
	after, _ := e.GeneratorState()
	assert.Equal(t, before, after)
}

func TestRoundTripAgainstServer(t *testing.T) {
	server := lcg.FromState(0x7FFF_0000_1234)
	e := crackFrom(t, server)

	for k := 0; k < 50; k++ {
		switch k % 5 {
		case 0:
			server.Skip(4)
			e.SelfCausedStep(4)
		case 1:
			server.Skip(1)
			e.Anvil()
		case 2:
			seed := server.Int()
			e.OutputFinalized()
			got, ok := e.OutputSeed()
			require.True(t, ok)
			require.Equal(t, seed, got, "draw %d", k)
		case 3:
			r := server
			for i := 0; i < 3; i++ {
				if r.Float() >= 0.6 {
					r.IntN(3)
				}
			}
			e.Unbreaking(3, 2, true)
		case 4:
			e.ExpectSelfCausedStep(4)
			server.Skip(4)
			e.SelfCausedStep(4)
		}
		st, ok := e.GeneratorState()
		require.True(t, ok)
		require.Equal(t, server.State(), st, "event %d", k)
	}
	assert.Equal(t, 0, e.ExpectedStepCredit())
}

func TestTrustedSeed(t *testing.T) {
	e := NewEngine(revealModel{})
	e.TrustedSeed(0x1234_5678_9ABC)
	assert.Equal(t, CrackedFromTrustedSource, e.State())
	st, ok := e.GeneratorState()
	require.True(t, ok)
	assert.Equal(t, uint64(0x1234_5678_9ABC), st)
	_, ok = e.OutputSeed()
	assert.False(t, ok)

	e.OutputFinalized()
	assert.Equal(t, Cracked, e.State())
	seed, ok := e.OutputSeed()
	require.True(t, ok)
	assert.Equal(t, int32(419617198), seed)

	e.TrustedSeedWithOutput(0x1234_5678_9ABC, 99)
	assert.Equal(t, Cracked, e.State())
	seed, _ = e.OutputSeed()
	assert.Equal(t, int32(99), seed)
}

func TestBestGuessAndPredict(t *testing.T) {
	e := NewEngine(levelModel{})
	_, ok := e.BestGuess()
	assert.False(t, ok)

	e.Observe(read(levelModel{}, 1000))
	g, ok := e.BestGuess()
	require.True(t, ok)
	assert.Equal(t, GuessOutputSeed, g.Kind)
	assert.Equal(t, e.CandidateCount(), g.Remaining)

	view := e.Predict("sword", 15)
	assert.Equal(t, (levelModel{}).Levels(1000, 15, "sword")[0], view[0].Level)
	assert.False(t, view[0].Exact)

	e = NewEngine(revealModel{})
	e.TrustedSeedWithOutput(0x1234_5678_9ABC, 5)
	view = e.Predict("sword", 15)
	assert.True(t, view[2].Exact)
	assert.Equal(t, []Effect{{ID: 0, Level: 7}}, view[2].Effects)

	g, ok = e.BestGuess()
	require.True(t, ok)
	assert.Equal(t, GuessInternalState, g.Kind)
	assert.Equal(t, int64(0x1234_5678_9ABC), g.Value)
}
