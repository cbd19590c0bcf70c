package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xtding233/rngcrack/internal/cmdutil"
	"github.com/xtding233/rngcrack/internal/config"
	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/enchant"
)

// app carries the persistent flags and what PersistentPreRunE builds from them.
type app struct {
	configDir string
	profile   string
	catalog   string
	logLevel  string
	logFormat string

	log    *slog.Logger
	params config.EngineParams
	table  *enchant.Table
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "crackctl",
		Short: "Crack, track and steer an enchanting table's random generator offline",
		Long: `crackctl drives the cracking engine against a simulated server.
It can replay a crack from a chosen generator state, plan manipulations from
a known state, and benchmark how many table readings cracking takes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config", "config", "config directory holding profiles/")
	pf.StringVar(&a.profile, "profile", "", "config profile layered over profiles/default.yaml")
	pf.StringVar(&a.catalog, "catalog", "", "enchantment catalog file (default: profile's, then embedded)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(
		newSimulateCmd(a),
		newPlanCmd(a),
		newBenchCmd(a),
		newCatalogCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	log, err := cmdutil.NewLogger(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.log = log

	_, params, err := config.NewLoader(a.configDir).Resolve(a.profile, config.Overrides{})
	if err != nil {
		return err
	}
	a.params = params

	path := a.catalog
	if path == "" {
		path = params.Catalog
	}
	a.table, err = cmdutil.LoadTable(path)
	return err
}

func (a *app) engine() *crack.Engine {
	return crack.NewEngine(a.table,
		crack.WithSettings(a.params.Settings()),
		crack.WithLogger(a.log))
}

// wantFunc parses a requirement list like "sharpness:4,looting".
func (a *app) wantFunc(want string) (func([]crack.Effect) bool, error) {
	reqs, err := enchant.ParseRequirements(want)
	if err != nil {
		return nil, err
	}
	return a.table.Predicate(reqs)
}

func (a *app) describe(effects []crack.Effect) string {
	s := ""
	for i, e := range effects {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %d", a.table.Name(e.ID), e.Level)
	}
	return s
}

// parseState accepts decimal or 0x-prefixed generator states.
func parseState(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid state %q: %w", s, err)
	}
	return v, nil
}
