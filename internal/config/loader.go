package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /etc/rngcrack
}

func (p Paths) Dir() string { return filepath.Join(p.BaseDir, "profiles") }

func (p Paths) DefaultPath() string {
	return filepath.Join(p.Dir(), "default.yaml")
}

func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.Dir(), profile+".yaml")
}

// Loader reads YAML profiles and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	if err := checkProfileName(profile); err != nil {
		return RawConfig{}, err
	}
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[""] = defCfg
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

var profileName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// checkProfileName keeps profile lookups inside the profiles directory.
func checkProfileName(profile string) error {
	if profile == "" {
		return nil
	}
	if !profileName.MatchString(profile) {
		return fmt.Errorf("%w: bad profile name %q", ErrConfig, profile)
	}
	return nil
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%w: %s: %v", ErrConfig, filepath.Base(path), err)
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where non-zero/non-nil.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Catalog != "" {
		out.Catalog = b.Catalog
	}
	if b.Tracking.Maintain != nil {
		out.Tracking.Maintain = b.Tracking.Maintain
	}

	// planner
	switch {
	case out.Planner == nil && b.Planner != nil:
		c := *b.Planner
		out.Planner = &c
	case out.Planner != nil && b.Planner != nil:
		c := *out.Planner
		if b.Planner.Bound != nil {
			c.Bound = b.Planner.Bound
		}
		if b.Planner.ParamMax != nil {
			c.ParamMax = b.Planner.ParamMax
		}
		if b.Planner.ActionCost != nil {
			c.ActionCost = b.Planner.ActionCost
		}
		if b.Planner.MaxWaitTicks != nil {
			c.MaxWaitTicks = b.Planner.MaxWaitTicks
		}
		out.Planner = &c
	}

	return out
}
