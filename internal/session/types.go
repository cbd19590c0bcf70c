package session

import (
	"time"

	"github.com/xtding233/rngcrack/internal/crack"
)

type CreateRequest struct {
	Profile   string `json:"profile,omitempty"`
	Maintain  *bool  `json:"maintain,omitempty"`
	PlanBound *int   `json:"plan_bound,omitempty"`
	ParamMax  *int   `json:"param_max,omitempty"`
	MaxWait   *int   `json:"max_wait_ticks,omitempty"`
}

type ObserveRequest struct {
	Masked int32                   `json:"masked"`
	Clues  [crack.Slots]crack.Clue `json:"clues"`
	Power  int                     `json:"power"`
	Item   string                  `json:"item"`
}

// StepsRequest reports one generator consumer. Kind is one of self, expect,
// external, range, anvil, bane, unbreaking or unmodelable.
type StepsRequest struct {
	Kind   string `json:"kind"`
	Cost   int    `json:"cost,omitempty"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
	Reason string `json:"reason,omitempty"`
	Amount int    `json:"amount,omitempty"`
	Level  int    `json:"level,omitempty"`
	Armor  bool   `json:"armor,omitempty"`
}

type TrustedRequest struct {
	State  uint64 `json:"state"`
	Output *int32 `json:"output,omitempty"`
}

type ResetRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PlanRequest asks for a manipulation plan. Want lists requirements like
// "sharpness:4,looting". Stable and Items describe the player right now.
type PlanRequest struct {
	Item   string `json:"item"`
	Want   string `json:"want"`
	Stable *bool  `json:"stable,omitempty"`
	Items  int    `json:"items"`
}

type TickRequest struct {
	Stable bool `json:"stable"`
	Items  int  `json:"items"`
}

type GuessView struct {
	Kind      string `json:"kind"`
	Value     int64  `json:"value"`
	Remaining int    `json:"remaining"`
}

// View is the externally visible state of a session.
type View struct {
	ID             string     `json:"id"`
	Profile        string     `json:"profile,omitempty"`
	Version        string     `json:"version,omitempty"`
	State          string     `json:"state"`
	Candidates     int        `json:"candidates"`
	Guess          *GuessView `json:"guess,omitempty"`
	OutputSeed     *int32     `json:"output_seed,omitempty"`
	GeneratorState *uint64    `json:"generator_state,omitempty"`
	Draws          int        `json:"draws"`
	Credit         int        `json:"credit"`
	Resets         []string   `json:"resets,omitempty"`
	Planning       bool       `json:"planning"`
	Created        time.Time  `json:"created"`
}

type StepView struct {
	Kind     string `json:"kind"`
	Cost     int    `json:"cost,omitempty"`
	MinParam int    `json:"min_param"`
	MaxParam int    `json:"max_param"`
	Slot     int    `json:"slot"`
	Param    int    `json:"param"`
}

type PlanView struct {
	Status  string     `json:"status"`
	ID      string     `json:"id,omitempty"`
	Item    string     `json:"item,omitempty"`
	Seed    int32      `json:"seed,omitempty"`
	Actions int        `json:"actions"`
	Steps   []StepView `json:"steps,omitempty"`
}

// Instruction is something the client must do in the world.
type Instruction struct {
	Op    string `json:"op"`
	Slot  int    `json:"slot,omitempty"`
	Param int    `json:"param,omitempty"`
}

type TickView struct {
	Step         int           `json:"step"`
	Status       string        `json:"status"`
	Waiting      bool          `json:"waiting"`
	Done         bool          `json:"done"`
	Next         *StepView     `json:"next,omitempty"`
	Instructions []Instruction `json:"instructions,omitempty"`
}

type EffectView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type SlotView struct {
	Level   int          `json:"level"`
	Exact   bool         `json:"exact"`
	Effects []EffectView `json:"effects,omitempty"`
}
