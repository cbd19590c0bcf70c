// resolve.go
package config

// Overrides carries per-request overrides of profile values.
type Overrides struct {
	Maintain     *bool
	PlanBound    *int
	ParamMax     *int
	MaxWaitTicks *int
}

type Resolver interface {
	// Returns merged RawConfig and normalized EngineParams
	Resolve(profile string, o Overrides) (RawConfig, EngineParams, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → profile → overrides into engine params.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, EngineParams, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, EngineParams{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return RawConfig{}, EngineParams{}, err
	}
	p := Normalize(raw)
	p = o.apply(p)
	if err := ValidateParams(p); err != nil {
		return RawConfig{}, EngineParams{}, err
	}
	return raw, p, nil
}

// Normalize fills unset profile values from DefaultParams.
func Normalize(raw RawConfig) EngineParams {
	p := DefaultParams()
	p.Version = raw.Version
	p.Catalog = raw.Catalog
	if raw.Tracking.Maintain != nil {
		p.Maintain = *raw.Tracking.Maintain
	}
	if pl := raw.Planner; pl != nil {
		if pl.Bound != nil {
			p.PlanBound = *pl.Bound
		}
		if pl.ParamMax != nil {
			p.ParamMax = *pl.ParamMax
		}
		if pl.ActionCost != nil {
			p.ActionCost = *pl.ActionCost
		}
		if pl.MaxWaitTicks != nil {
			p.MaxWaitTicks = *pl.MaxWaitTicks
		}
	}
	return p
}

func (o Overrides) apply(p EngineParams) EngineParams {
	if o.Maintain != nil {
		p.Maintain = *o.Maintain
	}
	if o.PlanBound != nil {
		p.PlanBound = *o.PlanBound
	}
	if o.ParamMax != nil {
		p.ParamMax = *o.ParamMax
	}
	if o.MaxWaitTicks != nil {
		p.MaxWaitTicks = *o.MaxWaitTicks
	}
	return p
}
