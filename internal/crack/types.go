package crack

// Slots is the number of offers an enchanting table shows.
const Slots = 3

// Item identifies the item placed in the table, e.g. "diamond_sword".
type Item string

// Effect is one enchantment with its level.
type Effect struct {
	ID    int `json:"id"`
	Level int `json:"level"`
}

// Clue is what the table reveals for one slot: the offer's level and, when the
// server sends one, a single hinted effect out of the offer.
type Clue struct {
	Level int     `json:"level"`
	Hint  *Effect `json:"hint,omitempty"`
}

// Observation is one reading of the table for the active output seed.
type Observation struct {
	// Masked carries bits 4..15 of the output seed; other bits are ignored.
	Masked int32
	Clues  [Slots]Clue
	Power  int
	Item   Item
}

// EffectModel replays the table's deterministic offer generation for a
// candidate output seed. Implementations must be pure.
type EffectModel interface {
	// Levels returns the offered level per slot (0 = no offer).
	Levels(seed int32, power int, item Item) [Slots]int
	// Effects returns the effects an offer of the given level would apply.
	Effects(seed int32, item Item, slot, level int) []Effect
	// Hint returns the effect the server would reveal for the slot, or false
	// when the offer has no effects.
	Hint(seed int32, item Item, slot, level int) (Effect, bool)
}
