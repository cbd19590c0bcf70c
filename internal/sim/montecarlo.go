package sim

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/lcg"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Readings until the first output seed is known.
	GoalOutputSeed TrialGoal = "output_seed"
	// Readings until the full generator state is known.
	GoalCracked TrialGoal = "cracked"
)

// SimParams describes one simulation run.
type SimParams struct {
	Item crack.Item
	// MaxReadings caps one trial; trials that hit it count as failed.
	MaxReadings int
	// Seed derives every trial's hidden generator state.
	Seed int64
	// Workers bounds concurrent trials (<=0 means 1).
	Workers int
	Settings crack.Settings
}

// Stats summarizes simulation results over successful trials.
type Stats struct {
	Trials int
	Failed int
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// trialStates derives n hidden generator states from seed.
func trialStates(seed int64, n int) []uint64 {
	r := lcg.NewRandom(seed)
	out := make([]uint64, n)
	for i := range out {
		out[i] = RandomState(r)
	}
	return out
}

// RandomState draws a full 48-bit generator state from r.
func RandomState(r *lcg.Random) uint64 {
	hi := uint64(uint32(r.Int()))
	lo := uint64(uint32(r.Next(16)))
	return (hi<<16 | lo) & lcg.Mask
}

// simulateOne cracks one hidden state and returns the readings it took.
func simulateOne(model crack.EffectModel, p SimParams, goal TrialGoal, state uint64) (int, bool) {
	engine := crack.NewEngine(model,
		crack.WithSettings(p.Settings),
		crack.WithLogger(slog.New(slog.DiscardHandler)))
	srv := NewServer(state, model, p.Item, ReadingPowers[0])
	target := crack.Cracked
	if goal == GoalOutputSeed {
		target = crack.CrackedOutputSeed
	}
	return run(engine, srv, p.MaxReadings, target)
}

// RunMonteCarlo repeats trials and returns summary stats.
// goal determines what metric is recorded per trial.
func RunMonteCarlo(ctx context.Context, model crack.EffectModel, p SimParams, goal TrialGoal, trials int) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	if p.MaxReadings <= 0 {
		p.MaxReadings = 30
	}
	if p.Settings == (crack.Settings{}) {
		p.Settings = crack.DefaultSettings()
	}
	states := trialStates(p.Seed, trials)
	samples := make([]int, trials)
	ok := make([]bool, trials)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Workers, 1))
	for i, st := range states {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			samples[i], ok[i] = simulateOne(model, p, goal, st)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var kept []int
	for i, v := range samples {
		if ok[i] {
			kept = append(kept, v)
		}
	}
	stats := calcStats(kept)
	stats.Trials = trials
	stats.Failed = trials - len(kept)
	return stats, nil
}
