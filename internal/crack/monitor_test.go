package crack

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/rngcrack/internal/lcg"
)

func TestResetSurfacesReasonOnlyWithProgress(t *testing.T) {
	var got []Reason
	e := NewEngine(revealModel{}, WithResetHook(func(r Reason) { got = append(got, r) }))

	e.Reset(ReasonRequest)
	assert.Empty(t, got, "nothing to lose while uncracked")

	e.Observe(read(revealModel{}, 77))
	e.Reset(ReasonSwim)
	assert.Equal(t, []Reason{ReasonSwim}, got)
	assert.Equal(t, Uncracked, e.State())
	assert.True(t, e.firstSeed)
}

func TestSelfCausedStepUsesCreditFirst(t *testing.T) {
	e := NewEngine(revealModel{})
	e.TrustedSeed(0x1234_5678_9ABC)

	e.ExpectSelfCausedStep(4)
	e.ExpectSelfCausedStep(4)
	assert.Equal(t, 2, e.ExpectedStepCredit())
	st, _ := e.GeneratorState()
	assert.Equal(t, lcg.Advance(0x1234_5678_9ABC, 8), st)

	e.SelfCausedStep(4)
	e.SelfCausedStep(4)
	assert.Equal(t, 0, e.ExpectedStepCredit())
	st, _ = e.GeneratorState()
	assert.Equal(t, lcg.Advance(0x1234_5678_9ABC, 8), st, "confirmations do not advance twice")

	e.SelfCausedStep(4)
	st, _ = e.GeneratorState()
	assert.Equal(t, lcg.Advance(0x1234_5678_9ABC, 12), st, "unexpected actions are maintained")
}

func TestExpectSelfCausedStepIgnoredUntilKnown(t *testing.T) {
	e := NewEngine(revealModel{})
	e.ExpectSelfCausedStep(4)
	assert.Equal(t, 0, e.ExpectedStepCredit())
}

func TestWithoutMaintainEveryConsumerResets(t *testing.T) {
	cases := []struct {
		name   string
		event  func(e *Engine)
		reason Reason
	}{
		{"self caused", func(e *Engine) { e.SelfCausedStep(4) }, ReasonDropItem},
		{"external", func(e *Engine) { e.ExternalStep(3, ReasonSprint) }, ReasonSprint},
		{"anvil", func(e *Engine) { e.Anvil() }, ReasonAnvil},
		{"bane", func(e *Engine) { e.BaneOfArthropods() }, ReasonBaneOfArthropods},
		{"unbreaking", func(e *Engine) { e.Unbreaking(1, 3, false) }, ReasonUnbreaking},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got Reason
			s := DefaultSettings()
			s.Maintain = false
			e := NewEngine(revealModel{}, WithSettings(s), WithResetHook(func(r Reason) { got = r }))
			e.TrustedSeed(1)
			tc.event(e)
			assert.Equal(t, tc.reason, got)
			assert.Equal(t, Uncracked, e.State())
		})
	}
}

func TestRangeAndUnmodelableReset(t *testing.T) {
	e := NewEngine(revealModel{})
	e.TrustedSeed(99)

	e.ExternalStepRange(2, 2, ReasonFood)
	st, ok := e.GeneratorState()
	require.True(t, ok, "an exact range is maintained")
	assert.Equal(t, lcg.Advance(99, 2), st)

	e.ExternalStepRange(1, 3, ReasonFood)
	assert.Equal(t, Uncracked, e.State())

	e.TrustedSeed(99)
	e.Unmodelable(ReasonGive)
	assert.Equal(t, Uncracked, e.State())
}

func TestUnbreakingReplaysServerDraws(t *testing.T) {
	e := NewEngine(revealModel{})
	e.TrustedSeed(0xABCD_EF01_2345)
	server := lcg.FromState(0xABCD_EF01_2345)

	for i := 0; i < 5; i++ {
		server.IntN(4)
	}
	e.Unbreaking(5, 3, false)
	st, _ := e.GeneratorState()
	assert.Equal(t, server.State(), st)
}

func TestUnbreakingWithoutLevelDrawsNothing(t *testing.T) {
	e := NewEngine(revealModel{})
	e.TrustedSeed(0xABCD_EF01_2345)
	e.Unbreaking(5, 0, true)

	st, _ := e.GeneratorState()
	assert.Equal(t, uint64(0xABCD_EF01_2345), st)
	assert.Equal(t, CrackedFromTrustedSource, e.State())
}

func TestResetKeepsCredit(t *testing.T) {
	e := NewEngine(revealModel{})
	e.TrustedSeed(5)
	e.ExpectSelfCausedStep(4)
	e.Reset(ReasonRecreated)
	assert.Equal(t, 1, e.ExpectedStepCredit())

	e.SelfCausedStep(4)
	assert.Equal(t, 0, e.ExpectedStepCredit())
	assert.Equal(t, Uncracked, e.State())
}

func TestParseReason(t *testing.T) {
	r, ok := ParseReason("frostWalker")
	require.True(t, ok)
	assert.Equal(t, ReasonFrostWalker, r)

	_, ok = ParseReason("contradiction")
	assert.False(t, ok)
}

func TestResetsAreCountedByReason(t *testing.T) {
	counter := resetsTotal.WithLabelValues(string(ReasonPotion))
	before := testutil.ToFloat64(counter)

	e := NewEngine(revealModel{})
	e.Unmodelable(ReasonPotion)
	assert.Equal(t, before, testutil.ToFloat64(counter), "uncracked resets are silent")

	e.TrustedSeed(0x1234_5678_9ABC)
	e.Unmodelable(ReasonPotion)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
