package crack

// State classifies how much of the generator is known.
type State int

const (
	Uncracked State = iota
	CrackingOutputSeed
	CrackedOutputSeed
	CrackingInternalState
	Cracked
	CrackedFromTrustedSource
	Invalid
)

func (s State) String() string {
	switch s {
	case Uncracked:
		return "uncracked"
	case CrackingOutputSeed:
		return "crackingEnchSeed"
	case CrackedOutputSeed:
		return "crackedEnchSeed"
	case CrackingInternalState:
		return "cracking"
	case Cracked:
		return "cracked"
	case CrackedFromTrustedSource:
		return "crackedPlayerSeed"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Known reports whether the generator's internal state is determined.
func (s State) Known() bool {
	return s == Cracked || s == CrackedFromTrustedSource
}

// Reason is the code surfaced when tracking is abandoned.
type Reason string

const (
	ReasonDropItem         Reason = "dropItem"
	ReasonEntityCramming   Reason = "entityCramming"
	ReasonDrink            Reason = "drink"
	ReasonFood             Reason = "food"
	ReasonSwim             Reason = "swim"
	ReasonEnterWater       Reason = "enterWater"
	ReasonPlayerHurt       Reason = "playerHurt"
	ReasonSprint           Reason = "sprint"
	ReasonItemBreak        Reason = "itemBreak"
	ReasonPotion           Reason = "potion"
	ReasonGive             Reason = "give"
	ReasonAnvil            Reason = "anvil"
	ReasonFrostWalker      Reason = "frostWalker"
	ReasonBaneOfArthropods Reason = "baneOfArthropods"
	ReasonRecreated        Reason = "recreated"
	ReasonUnbreaking       Reason = "unbreaking"
	ReasonRequest          Reason = "request"
)

var reasons = []Reason{
	ReasonDropItem, ReasonEntityCramming, ReasonDrink, ReasonFood, ReasonSwim,
	ReasonEnterWater, ReasonPlayerHurt, ReasonSprint, ReasonItemBreak, ReasonPotion,
	ReasonGive, ReasonAnvil, ReasonFrostWalker, ReasonBaneOfArthropods,
	ReasonRecreated, ReasonUnbreaking, ReasonRequest,
}

// ParseReason maps a reason code back to its Reason.
func ParseReason(s string) (Reason, bool) {
	for _, r := range reasons {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}
