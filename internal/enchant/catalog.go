package enchant

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	ErrCatalog            = errors.New("invalid catalog")
	ErrUnknownItem        = errors.New("unknown item")
	ErrUnknownEnchantment = errors.New("unknown enchantment")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultCatalog returns the embedded vanilla-style catalog.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := ParseCatalog(b)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func ParseCatalog(b []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := ValidateCatalog(cat); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

// ValidateCatalog checks field constraints and cross references.
func ValidateCatalog(cat Catalog) error {
	var errs []string
	if err := validate.Struct(cat); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrCatalog, err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}

	items := map[string]bool{}
	for _, it := range cat.Items {
		if items[it.Name] {
			errs = append(errs, fmt.Sprintf("item %q defined twice", it.Name))
		}
		items[it.Name] = true
	}
	ids := map[int]bool{}
	names := map[string]bool{}
	for _, e := range cat.Enchantments {
		if ids[e.ID] {
			errs = append(errs, fmt.Sprintf("enchantment id %d defined twice", e.ID))
		}
		if names[e.Name] {
			errs = append(errs, fmt.Sprintf("enchantment %q defined twice", e.Name))
		}
		ids[e.ID], names[e.Name] = true, true
		for lvl := 1; lvl <= e.MaxLevel; lvl++ {
			if e.MaxPower.At(lvl) < e.MinPower.At(lvl) {
				errs = append(errs, fmt.Sprintf("enchantment %q: max power below min power at level %d", e.Name, lvl))
				break
			}
		}
	}
	for _, e := range cat.Enchantments {
		for _, c := range e.Conflicts {
			if !names[c] {
				errs = append(errs, fmt.Sprintf("enchantment %q conflicts with unknown %q", e.Name, c))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrCatalog, strings.Join(errs, "; "))
	}
	return nil
}
