package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xtding233/rngcrack/internal/enchant"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or validate enchantment catalogs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "items",
			Short: "List the items of the active catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tENCHANTABILITY\tCATEGORIES")
				for _, it := range a.table.Items() {
					cats := strings.Join(it.Categories, ",")
					if it.Book {
						cats = "book"
					}
					fmt.Fprintf(tw, "%s\t%d\t%s\n", it.Name, it.Enchantability, cats)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "enchantments",
			Short: "List the enchantments of the active catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tWEIGHT\tMAX\tTREASURE")
				for _, e := range a.table.Enchantments() {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%t\n", e.ID, e.Name, e.Weight, e.MaxLevel, e.Treasure)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "check FILE...",
			Short: "Validate catalog files",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				bad := 0
				for _, path := range args {
					cat, err := enchant.LoadCatalog(path)
					if err == nil {
						_, err = enchant.NewTable(cat)
					}
					if err != nil {
						bad++
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d items, %d enchantments)\n",
						path, len(cat.Items), len(cat.Enchantments))
				}
				if bad > 0 {
					return fmt.Errorf("%d of %d catalogs invalid", bad, len(args))
				}
				return nil
			},
		},
	)
	return cmd
}
