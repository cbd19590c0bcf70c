// Package sim plays the server side: a true generator feeding an enchanting
// table, observed the way a client would observe it.
package sim

import (
	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/lcg"
)

// ThrowCost is the number of draws one thrown item takes.
const ThrowCost = 4

// Server owns the hidden generator.
type Server struct {
	rand  *lcg.Random
	model crack.EffectModel
	Item  crack.Item
	Power int
	seed  int32
}

// NewServer starts a server whose generator is at state. The first output
// seed is drawn immediately, before any observation.
func NewServer(state uint64, model crack.EffectModel, item crack.Item, power int) *Server {
	s := &Server{rand: lcg.FromState(state), model: model, Item: item, Power: power}
	s.seed = s.rand.Int()
	return s
}

// Seed is the active output seed.
func (s *Server) Seed() int32 { return s.seed }

// State is the generator state right after the active seed was drawn.
func (s *Server) State() uint64 { return s.rand.State() }

// Observe returns what a client sees with the table open.
func (s *Server) Observe() crack.Observation {
	obs := crack.Observation{Masked: s.seed & 0xFFF0, Power: s.Power, Item: s.Item}
	levels := s.model.Levels(s.seed, s.Power, s.Item)
	for slot, level := range levels {
		obs.Clues[slot].Level = level
		if level == 0 {
			continue
		}
		if h, ok := s.model.Hint(s.seed, s.Item, slot, level); ok {
			obs.Clues[slot].Hint = &h
		}
	}
	return obs
}

// Enchant realizes the active offer and draws the next output seed.
func (s *Server) Enchant() { s.seed = s.rand.Int() }

// Throw drops one item.
func (s *Server) Throw() { s.rand.Skip(ThrowCost) }

// Draw consumes n values on behalf of some other generator user.
func (s *Server) Draw(n int) { s.rand.Skip(n) }

// ReadingPowers are the bookshelf powers a client cycles through to read one
// output seed several times.
var ReadingPowers = []int{15, 10, 5, 1, 13, 7}

// Crack reads each output seed under successive powers until the engine knows
// it, then enchants, until the engine reaches Cracked or maxReadings table
// readings were made. It returns the readings used.
func Crack(engine *crack.Engine, srv *Server, maxReadings int) (int, bool) {
	return run(engine, srv, maxReadings, crack.Cracked)
}

func run(engine *crack.Engine, srv *Server, maxReadings int, goal crack.State) (int, bool) {
	n := 0
	for n < maxReadings {
		for _, power := range ReadingPowers {
			srv.Power = power
			engine.Observe(srv.Observe())
			n++
			if engine.State() == goal {
				return n, true
			}
			if engine.State() != crack.CrackingOutputSeed || n >= maxReadings {
				break
			}
		}
		srv.Enchant()
		engine.OutputFinalized()
	}
	return n, false
}
