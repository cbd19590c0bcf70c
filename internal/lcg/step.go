package lcg

// Constants of the 48-bit linear congruential generator used by
// java.util.Random.
const (
	Multiplier uint64 = 0x5DEECE66D
	Addend     uint64 = 0xB
	Mask       uint64 = (1 << 48) - 1
)

// Step returns the state that follows s.
func Step(s uint64) uint64 {
	return (s*Multiplier + Addend) & Mask
}

// Advance applies Step n times. n <= 0 returns s unchanged (masked).
func Advance(s uint64, n int) uint64 {
	s &= Mask
	for ; n > 0; n-- {
		s = Step(s)
	}
	return s
}

// Output derives the 32-bit value an unbounded nextInt() reports for the
// post-step state s.
func Output(s uint64) int32 {
	return int32(uint32((s & Mask) >> 16))
}
