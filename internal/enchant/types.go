package enchant

// Catalog is the YAML description of items and enchantments.
type Catalog struct {
	Version      string        `yaml:"version"`
	Items        []ItemDef     `yaml:"items" validate:"required,min=1,dive"`
	Enchantments []Enchantment `yaml:"enchantments" validate:"required,min=1,dive"`
	Notes        string        `yaml:"notes,omitempty"`
}

type ItemDef struct {
	Name           string   `yaml:"name" validate:"required"`
	Enchantability int      `yaml:"enchantability" validate:"min=0"`
	Categories     []string `yaml:"categories,omitempty"`
	// Book items accept every non-treasure enchantment and lose one random
	// effect from offers with more than one.
	Book bool `yaml:"book,omitempty"`
}

// Power is a linear function of the enchantment level.
type Power struct {
	Base     int `yaml:"base"`
	PerLevel int `yaml:"per_level"`
}

func (p Power) At(level int) int { return p.Base + (level-1)*p.PerLevel }

type Enchantment struct {
	ID        int      `yaml:"id" validate:"min=0"`
	Name      string   `yaml:"name" validate:"required"`
	Weight    int      `yaml:"weight" validate:"min=1"`
	MaxLevel  int      `yaml:"max_level" validate:"min=1"`
	MinPower  Power    `yaml:"min_power"`
	MaxPower  Power    `yaml:"max_power"`
	Targets   []string `yaml:"targets,omitempty"`
	Conflicts []string `yaml:"conflicts,omitempty"`
	Treasure  bool     `yaml:"treasure,omitempty"`
}
