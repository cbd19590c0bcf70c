package enchant

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/xtding233/rngcrack/internal/crack"
	"github.com/xtding233/rngcrack/internal/lcg"
)

// maxPower caps the bookshelf power a table accepts.
const maxPower = 15

// Table replays enchanting-table offers for a catalog. It implements
// crack.EffectModel and is safe for concurrent use once built.
type Table struct {
	items  map[crack.Item]ItemDef
	enchs  []Enchantment // ascending ID
	byName map[string]int
	byID   map[int]int
	// conflicts[i][j] is set when enchs[i] and enchs[j] cannot coexist
	conflicts [][]bool
}

var _ crack.EffectModel = (*Table)(nil)

// NewTable builds a table from a validated catalog.
func NewTable(cat Catalog) (*Table, error) {
	if err := ValidateCatalog(cat); err != nil {
		return nil, err
	}
	t := &Table{
		items:  make(map[crack.Item]ItemDef, len(cat.Items)),
		enchs:  slices.Clone(cat.Enchantments),
		byName: make(map[string]int, len(cat.Enchantments)),
		byID:   make(map[int]int, len(cat.Enchantments)),
	}
	for _, it := range cat.Items {
		t.items[crack.Item(it.Name)] = it
	}
	slices.SortFunc(t.enchs, func(a, b Enchantment) int { return a.ID - b.ID })
	for i, e := range t.enchs {
		t.byName[e.Name] = i
		t.byID[e.ID] = i
	}
	t.conflicts = make([][]bool, len(t.enchs))
	for i := range t.enchs {
		t.conflicts[i] = make([]bool, len(t.enchs))
		t.conflicts[i][i] = true
	}
	for i, e := range t.enchs {
		for _, name := range e.Conflicts {
			j := t.byName[name]
			t.conflicts[i][j], t.conflicts[j][i] = true, true
		}
	}
	return t, nil
}

// DefaultTable builds a table from the embedded catalog.
func DefaultTable() (*Table, error) {
	cat, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return NewTable(cat)
}

func (t *Table) Item(name crack.Item) (ItemDef, error) {
	it, ok := t.items[name]
	if !ok {
		return ItemDef{}, fmt.Errorf("%w: %s", ErrUnknownItem, name)
	}
	return it, nil
}

// Items returns the catalog's items sorted by name.
func (t *Table) Items() []ItemDef {
	out := make([]ItemDef, 0, len(t.items))
	for _, it := range t.items {
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b ItemDef) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (t *Table) Enchantments() []Enchantment { return slices.Clone(t.enchs) }

// Lookup resolves an enchantment by name.
func (t *Table) Lookup(name string) (Enchantment, error) {
	i, ok := t.byName[name]
	if !ok {
		return Enchantment{}, fmt.Errorf("%w: %s", ErrUnknownEnchantment, name)
	}
	return t.enchs[i], nil
}

// Name returns the name for an effect ID, or the number when unknown.
func (t *Table) Name(id int) string {
	if i, ok := t.byID[id]; ok {
		return t.enchs[i].Name
	}
	return fmt.Sprintf("#%d", id)
}

// Levels draws the three offer levels from a generator seeded with seed.
// Offers below their slot's minimum are withdrawn (level 0).
func (t *Table) Levels(seed int32, power int, item crack.Item) [crack.Slots]int {
	var levels [crack.Slots]int
	it, ok := t.items[item]
	if !ok || it.Enchantability <= 0 {
		return levels
	}
	power = min(max(power, 0), maxPower)
	r := lcg.NewRandom(int64(seed))
	for slot := range crack.Slots {
		j := int(r.IntN(8)) + 1 + power>>1 + int(r.IntN(int32(power+1)))
		var level int
		switch slot {
		case 0:
			level = max(j/3, 1)
		case 1:
			level = j*2/3 + 1
		default:
			level = max(j, power*2)
		}
		if level < slot+1 {
			level = 0
		}
		levels[slot] = level
	}
	return levels
}

// Effects generates the offer for slot at the given level.
func (t *Table) Effects(seed int32, item crack.Item, slot, level int) []crack.Effect {
	effects, _ := t.offer(seed, item, slot, level)
	return effects
}

// Hint picks the effect the server reveals for the offer.
func (t *Table) Hint(seed int32, item crack.Item, slot, level int) (crack.Effect, bool) {
	effects, r := t.offer(seed, item, slot, level)
	if len(effects) == 0 {
		return crack.Effect{}, false
	}
	return effects[r.IntN(int32(len(effects)))], true
}

func (t *Table) offer(seed int32, item crack.Item, slot, level int) ([]crack.Effect, *lcg.Random) {
	// the slot offset wraps in 32 bits before widening
	r := lcg.NewRandom(int64(seed + int32(slot)))
	it, ok := t.items[item]
	if !ok {
		return nil, r
	}
	effects := t.generate(r, it, level)
	if it.Book && len(effects) > 1 {
		i := r.IntN(int32(len(effects)))
		effects = slices.Delete(effects, int(i), int(i)+1)
	}
	return effects, r
}

type entry struct {
	ench  int
	level int
}

func (t *Table) generate(r *lcg.Random, it ItemDef, level int) []crack.Effect {
	ench := it.Enchantability
	if ench <= 0 {
		return nil
	}
	level += 1 + int(r.IntN(int32(ench/4+1))) + int(r.IntN(int32(ench/4+1)))
	f := (r.Float() + r.Float() - 1) * 0.15
	lf := float32(level)
	jitter := float32(lf * f)
	level = roundFloat(lf + jitter)
	if level < 1 {
		level = 1
	}

	pool := t.possible(level, it)
	if len(pool) == 0 {
		return nil
	}
	picked := pickWeighted(r, pool, t.enchs)
	out := []crack.Effect{t.effect(picked)}
	for int(r.IntN(50)) <= level {
		pool = slices.DeleteFunc(pool, func(e entry) bool { return t.conflicts[picked.ench][e.ench] })
		if len(pool) == 0 {
			break
		}
		picked = pickWeighted(r, pool, t.enchs)
		out = append(out, t.effect(picked))
		level /= 2
	}
	return out
}

// possible lists, for every applicable enchantment, the highest level whose
// power window contains power.
func (t *Table) possible(power int, it ItemDef) []entry {
	var out []entry
	for i, e := range t.enchs {
		if e.Treasure || !applies(e, it) {
			continue
		}
		for lvl := e.MaxLevel; lvl >= 1; lvl-- {
			if power >= e.MinPower.At(lvl) && power <= e.MaxPower.At(lvl) {
				out = append(out, entry{ench: i, level: lvl})
				break
			}
		}
	}
	return out
}

func (t *Table) effect(e entry) crack.Effect {
	return crack.Effect{ID: t.enchs[e.ench].ID, Level: e.level}
}

func applies(e Enchantment, it ItemDef) bool {
	if it.Book {
		return true
	}
	for _, target := range e.Targets {
		if slices.Contains(it.Categories, target) {
			return true
		}
	}
	return false
}

func pickWeighted(r *lcg.Random, pool []entry, enchs []Enchantment) entry {
	total := 0
	for _, e := range pool {
		total += enchs[e.ench].Weight
	}
	n := int(r.IntN(int32(total)))
	for _, e := range pool {
		n -= enchs[e.ench].Weight
		if n < 0 {
			return e
		}
	}
	return pool[len(pool)-1]
}

// roundFloat rounds half up like Math.round(float).
func roundFloat(v float32) int {
	return int(math.Floor(float64(v) + 0.5))
}
