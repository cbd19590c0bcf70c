package cmdutil

import (
	"github.com/xtding233/rngcrack/internal/enchant"
)

// LoadTable builds the enchantment table from the catalog at path, or from
// the embedded catalog when path is empty.
func LoadTable(path string) (*enchant.Table, error) {
	if path == "" {
		return enchant.DefaultTable()
	}
	cat, err := enchant.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return enchant.NewTable(cat)
}
