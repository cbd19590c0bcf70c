package lcg

import "errors"

var ErrBound = errors.New("bound must be positive")

// Random reproduces java.util.Random draw for draw. Unlike the JDK type its
// 48-bit state is an ordinary public property.
type Random struct {
	state uint64
}

// NewRandom seeds a generator the way new Random(seed) does: the seed is
// scrambled with Multiplier before use.
func NewRandom(seed int64) *Random {
	r := &Random{}
	r.SetSeed(seed)
	return r
}

// FromState wraps an already scrambled 48-bit state.
func FromState(state uint64) *Random {
	return &Random{state: state & Mask}
}

func (r *Random) SetSeed(seed int64) { r.state = (uint64(seed) ^ Multiplier) & Mask }

func (r *Random) State() uint64 { return r.state }

func (r *Random) SetState(state uint64) { r.state = state & Mask }

// Clone returns an independent copy positioned at the same state.
func (r *Random) Clone() *Random { return &Random{state: r.state} }

// Skip advances the generator n steps without producing output.
func (r *Random) Skip(n int) { r.state = Advance(r.state, n) }

// Next returns the top `bits` bits of the next state (1 <= bits <= 32).
func (r *Random) Next(bits uint) int32 {
	r.state = Step(r.state)
	return int32(uint32(r.state >> (48 - bits)))
}

// Int is nextInt().
func (r *Random) Int() int32 { return r.Next(32) }

// IntN is nextInt(bound). It panics on a non-positive bound, like the JDK.
func (r *Random) IntN(bound int32) int32 {
	if bound <= 0 {
		panic(ErrBound)
	}
	v := r.Next(31)
	m := bound - 1
	if bound&m == 0 {
		return int32((int64(bound) * int64(v)) >> 31)
	}
	// int32 overflow is the rejection signal
	for u := v; ; u = r.Next(31) {
		v = u % bound
		if u-v+m >= 0 {
			return v
		}
	}
}

// Float is nextFloat().
func (r *Random) Float() float32 {
	return float32(r.Next(24)) / float32(1<<24)
}
