package session

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/rngcrack/internal/config"
	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/enchant"
	"github.com/xtding233/rngcrack/internal/lcg"
	"github.com/xtding233/rngcrack/internal/sim"
)

func newService(t *testing.T, size int) *Service {
	t.Helper()
	tab, err := enchant.DefaultTable()
	require.NoError(t, err)
	store, err := NewStore(size)
	require.NoError(t, err)
	return NewService(tab, config.NewLoader(t.TempDir()), store, slog.New(slog.DiscardHandler))
}

func toRequest(obs crack.Observation) ObserveRequest {
	return ObserveRequest{Masked: obs.Masked, Clues: obs.Clues, Power: obs.Power, Item: string(obs.Item)}
}

func TestCrackPlanAndExecute(t *testing.T) {
	svc := newService(t, 8)
	v, err := svc.Create(CreateRequest{})
	require.NoError(t, err)
	id := v.ID
	assert.Equal(t, "uncracked", v.State)

	srv := sim.NewServer(0x1234_5678_9ABC, svc.Table(), "diamond_sword", 15)
	readings := 0
cracking:
	for readings < 12 {
		for _, power := range sim.ReadingPowers {
			srv.Power = power
			v, err = svc.Observe(id, toRequest(srv.Observe()))
			require.NoError(t, err)
			readings++
			if v.State == "cracked" {
				break cracking
			}
			if v.State != "crackingEnchSeed" {
				break
			}
		}
		srv.Enchant()
		_, err = svc.Finalized(id)
		require.NoError(t, err)
	}
	require.Equal(t, "cracked", v.State)
	require.NotNil(t, v.GeneratorState)
	assert.Equal(t, srv.State(), *v.GeneratorState)
	assert.Equal(t, srv.Seed(), *v.OutputSeed)

	pv, err := svc.Plan(id, PlanRequest{Item: "diamond_sword", Want: "sharpness", Items: 64})
	require.NoError(t, err)
	require.Equal(t, "ok", pv.Status)
	require.NotEmpty(t, pv.Steps)
	assert.Equal(t, "finalize", pv.Steps[len(pv.Steps)-1].Kind)

	var final *Instruction
	for i := 0; i < 4*pv.Actions+10; i++ {
		tv, err := svc.Tick(id, TickRequest{Stable: true, Items: 64})
		require.NoError(t, err)
		for _, ins := range tv.Instructions {
			switch ins.Op {
			case "throw":
				srv.Throw()
				_, err := svc.Steps(id, StepsRequest{Kind: "self"})
				require.NoError(t, err)
			case "draw":
				// enchanted at once, before the next tick
				srv.Enchant()
				_, err = svc.Finalized(id)
				require.NoError(t, err)
			case "enchant":
				final = &ins
			}
		}
		if tv.Done {
			assert.Equal(t, "ok", tv.Status)
			break
		}
	}
	require.NotNil(t, final, "plan never reached its enchant step")

	tab := svc.Table()
	sharp, _ := tab.Lookup("sharpness")
	levels := tab.Levels(srv.Seed(), final.Param, "diamond_sword")
	effects := tab.Effects(srv.Seed(), "diamond_sword", final.Slot, levels[final.Slot])
	assert.True(t, func() bool {
		for _, e := range effects {
			if e.ID == sharp.ID {
				return true
			}
		}
		return false
	}(), "offer %v lacks sharpness", effects)

	v, _ = svc.Get(id)
	assert.False(t, v.Planning)
	_, err = svc.Tick(id, TickRequest{})
	assert.ErrorIs(t, err, ErrNoPlan)
}

func TestPlanNeedsCrackedState(t *testing.T) {
	svc := newService(t, 4)
	v, _ := svc.Create(CreateRequest{})

	pv, err := svc.Plan(v.ID, PlanRequest{Item: "book", Want: "mending", Items: 1})
	require.NoError(t, err)
	assert.Equal(t, "notCracked", pv.Status)

	_, err = svc.Plan(v.ID, PlanRequest{Item: "book", Want: "flight"})
	assert.ErrorIs(t, err, enchant.ErrUnknownEnchantment)
	_, err = svc.Plan(v.ID, PlanRequest{Item: "hoverboard", Want: "mending"})
	assert.ErrorIs(t, err, enchant.ErrUnknownItem)
	_, err = svc.Plan(v.ID, PlanRequest{Item: "book", Want: ""})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestResetsAreRecorded(t *testing.T) {
	svc := newService(t, 4)
	maintain := false
	v, err := svc.Create(CreateRequest{Maintain: &maintain})
	require.NoError(t, err)

	v, err = svc.Trusted(v.ID, TrustedRequest{State: 0x1234_5678_9ABC})
	require.NoError(t, err)
	assert.Equal(t, "crackedPlayerSeed", v.State)
	assert.Equal(t, uint64(0x1234_5678_9ABC), *v.GeneratorState)

	v, err = svc.Steps(v.ID, StepsRequest{Kind: "external", Cost: 2, Reason: "sprint"})
	require.NoError(t, err)
	assert.Equal(t, "uncracked", v.State)
	assert.Equal(t, []string{"sprint"}, v.Resets)

	_, err = svc.Steps(v.ID, StepsRequest{Kind: "teleport"})
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.Steps(v.ID, StepsRequest{Kind: "external", Reason: "gravity"})
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.Reset(v.ID, ResetRequest{Reason: "gravity"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestTrustedWithOutputAndPredict(t *testing.T) {
	svc := newService(t, 4)
	v, _ := svc.Create(CreateRequest{})
	out := int32(12345)
	v, err := svc.Trusted(v.ID, TrustedRequest{State: 1, Output: &out})
	require.NoError(t, err)
	assert.Equal(t, "cracked", v.State)
	assert.Equal(t, out, *v.OutputSeed)

	slots, err := svc.Predict(v.ID, "diamond_sword", 15)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, 30, slots[2].Level)
	assert.True(t, slots[2].Exact)
	require.Len(t, slots[2].Effects, 5)
	assert.Equal(t, "sweeping", slots[2].Effects[0].Name)

	_, err = svc.Predict(v.ID, "hoverboard", 15)
	assert.ErrorIs(t, err, enchant.ErrUnknownItem)
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	svc := newService(t, 2)
	a, _ := svc.Create(CreateRequest{})
	b, _ := svc.Create(CreateRequest{})
	_, err := svc.Get(a.ID)
	require.NoError(t, err)

	c, _ := svc.Create(CreateRequest{})
	_, err = svc.Get(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Get(a.ID)
	assert.NoError(t, err)
	_, err = svc.Get(c.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(c.ID))
	assert.ErrorIs(t, svc.Delete(c.ID), ErrSessionNotFound)
	assert.Equal(t, 1, svc.store.Len())
}

func TestCreateRejectsBadOverrides(t *testing.T) {
	svc := newService(t, 2)
	bad := 40
	_, err := svc.Create(CreateRequest{ParamMax: &bad})
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestStepsCostDefaultsAndBounds(t *testing.T) {
	svc := newService(t, 2)
	v, _ := svc.Create(CreateRequest{})
	v, err := svc.Trusted(v.ID, TrustedRequest{State: 1})
	require.NoError(t, err)

	v, err = svc.Steps(v.ID, StepsRequest{Kind: "expect"})
	require.NoError(t, err)
	assert.Equal(t, crack.DefaultSettings().ActionCost, v.Credit, "self-caused kinds default to one action")
	assert.Equal(t, lcg.Advance(1, 4), *v.GeneratorState)
	start := *v.GeneratorState

	_, err = svc.Steps(v.ID, StepsRequest{Kind: "external"})
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.Steps(v.ID, StepsRequest{Kind: "unbreaking", Amount: 3, Level: 0})
	assert.ErrorIs(t, err, ErrBadRequest)

	v, _ = svc.Get(v.ID)
	assert.Equal(t, start, *v.GeneratorState, "rejected steps leave the generator alone")

	v, err = svc.Steps(v.ID, StepsRequest{Kind: "external", Cost: 2})
	require.NoError(t, err)
	assert.Equal(t, lcg.Advance(start, 2), *v.GeneratorState)
}
