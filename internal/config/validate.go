package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrConfig = errors.New("config validation failed")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if p := cfg.Planner; p != nil {
		if p.Bound != nil && *p.Bound < 1 {
			errs = append(errs, "planner.bound must be >= 1")
		}
		if p.ParamMax != nil && (*p.ParamMax < 0 || *p.ParamMax > 15) {
			errs = append(errs, "planner.param_max must be in [0,15]")
		}
		if p.ActionCost != nil && *p.ActionCost < 1 {
			errs = append(errs, "planner.action_cost must be >= 1")
		}
		if p.MaxWaitTicks != nil && *p.MaxWaitTicks < 0 {
			errs = append(errs, "planner.max_wait_ticks must be >= 0 (0 waits forever)")
		}
	}
	if strings.ContainsRune(cfg.Catalog, 0) {
		errs = append(errs, "catalog must be a file path")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateParams checks normalized params after overrides were applied.
func ValidateParams(p EngineParams) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	errs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", ErrConfig, strings.Join(errs, "; "))
}
