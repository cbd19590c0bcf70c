package enchant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xtding233/rngcrack/internal/crack"
)

// Requirement asks for an enchantment at MinLevel or above.
type Requirement struct {
	Name     string `json:"name"`
	MinLevel int    `json:"min_level"`
}

// ParseRequirements parses "sharpness:4,looting" (level defaults to 1).
func ParseRequirements(s string) ([]Requirement, error) {
	var out []Requirement
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvl, found := strings.Cut(part, ":")
		req := Requirement{Name: strings.TrimSpace(name), MinLevel: 1}
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(lvl))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid level in %q", part)
			}
			req.MinLevel = n
		}
		out = append(out, req)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no requirements in %q", s)
	}
	return out, nil
}

// Predicate compiles requirements into a planner goal: every requirement must
// be met by some effect of the offer.
func (t *Table) Predicate(reqs []Requirement) (func([]crack.Effect) bool, error) {
	type want struct{ id, level int }
	wants := make([]want, 0, len(reqs))
	for _, r := range reqs {
		e, err := t.Lookup(r.Name)
		if err != nil {
			return nil, err
		}
		wants = append(wants, want{id: e.ID, level: max(r.MinLevel, 1)})
	}
	return func(effects []crack.Effect) bool {
	outer:
		for _, w := range wants {
			for _, e := range effects {
				if e.ID == w.id && e.Level >= w.level {
					continue outer
				}
			}
			return false
		}
		return true
	}, nil
}
