// types.go
package config

import "github.com/xtding233/rngcrack/internal/crack"

// Raw config loaded from YAML profiles; pointer fields distinguish unset from zero.
type RawConfig struct {
	Version  string         `yaml:"version"`
	Tracking TrackingConfig `yaml:"tracking"`
	Planner  *PlannerConfig `yaml:"planner,omitempty"`
	// Catalog is a path to an enchantment catalog; empty means the embedded one.
	Catalog string `yaml:"catalog,omitempty"`
	Notes   string `yaml:"notes,omitempty"`
}

type TrackingConfig struct {
	Maintain *bool `yaml:"maintain"`
}

type PlannerConfig struct {
	Bound        *int `yaml:"bound"`
	ParamMax     *int `yaml:"param_max"`
	ActionCost   *int `yaml:"action_cost"`
	MaxWaitTicks *int `yaml:"max_wait_ticks"`
}

// Normalized engine params used by internal/crack.
type EngineParams struct {
	Maintain     bool
	PlanBound    int `validate:"min=1,max=1000000"`
	ParamMax     int `validate:"min=0,max=15"`
	ActionCost   int `validate:"min=1,max=64"`
	MaxWaitTicks int `validate:"min=0"`
	Catalog      string
	Version      string // effective config version for tracing
}

// DefaultParams mirrors crack.DefaultSettings with no wait limit.
func DefaultParams() EngineParams {
	s := crack.DefaultSettings()
	return EngineParams{
		Maintain:   s.Maintain,
		PlanBound:  s.PlanBound,
		ParamMax:   s.ParamMax,
		ActionCost: s.ActionCost,
	}
}

// Settings converts the params for crack.WithSettings.
func (p EngineParams) Settings() crack.Settings {
	return crack.Settings{
		Maintain:   p.Maintain,
		PlanBound:  p.PlanBound,
		ParamMax:   p.ParamMax,
		ActionCost: p.ActionCost,
	}
}
