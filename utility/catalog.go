package utility

import (
	"fmt"
	"time"
)

// Catalog is an immutable, ordered set of action definitions. Order is
// significant: it is the tie-break order of the decision engine.
type Catalog struct {
	defs  []Def
	index map[string]int
}

// NewCatalog validates defs and indexes them by ID.
func NewCatalog(defs ...Def) (*Catalog, error) {
	c := &Catalog{
		defs:  make([]Def, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		d.Considerations = append([]Consideration(nil), d.Considerations...)
		d.Bias = append(d.Bias[:0:0], d.Bias...)
		c.index[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.defs) }

// At returns the definition at index i. Callers must not modify the
// returned slices.
func (c *Catalog) At(i int) *Def { return &c.defs[i] }

// Lookup resolves an action ID to its index.
func (c *Catalog) Lookup(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Pool returns the indices of every action in p, in catalog order.
func (c *Catalog) Pool(p Pool) []int {
	var out []int
	for i := range c.defs {
		if c.defs[i].Pool == p {
			out = append(out, i)
		}
	}
	return out
}

// IDs lists action IDs in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.defs))
	for i := range c.defs {
		out[i] = c.defs[i].ID
	}
	return out
}

// Slot is one agent's mutable state for one action.
type Slot struct {
	Score         float64
	CooldownUntil time.Duration
	Target        string
}

// Runtime holds an agent's slots, one per catalog entry.
type Runtime struct {
	catalog *Catalog
	slots   []Slot
}

func NewRuntime(c *Catalog) *Runtime {
	rt := &Runtime{catalog: c, slots: make([]Slot, c.Len())}
	for i := range rt.slots {
		rt.slots[i].Target = c.defs[i].Target
	}
	return rt
}

func (r *Runtime) Catalog() *Catalog { return r.catalog }
func (r *Runtime) Slot(i int) *Slot  { return &r.slots[i] }

// Evaluate scores action i at now and caches the result in its slot.
func (r *Runtime) Evaluate(i int, ctx Context, now time.Duration) float64 {
	s := Score(r.catalog.At(i), ctx, r.slots[i].CooldownUntil, now)
	r.slots[i].Score = s
	return s
}

// Arm starts action i's cooldown at now.
func (r *Runtime) Arm(i int, now time.Duration) {
	r.slots[i].CooldownUntil = now + r.catalog.At(i).Cooldown
}

// CoolingDown reports whether action i is still gated at now.
func (r *Runtime) CoolingDown(i int, now time.Duration) bool {
	return now < r.slots[i].CooldownUntil
}
