package personality

// Bias multipliers never push a score outside this band, so personality
// nudges the emotional signal without dominating it.
const (
	MinMultiplier = 0.80
	MaxMultiplier = 1.30
)

// BiasEntry scales a score by Pos when the profile is on the positive side
// of Axis and by Neg otherwise. 1.0 is neutral.
type BiasEntry struct {
	Axis Axis    `json:"axis" yaml:"axis"`
	Pos  float64 `json:"pos" yaml:"pos"`
	Neg  float64 `json:"neg" yaml:"neg"`
}

// Bias builds an entry; used by the preset table and tests.
func Bias(a Axis, pos, neg float64) BiasEntry {
	return BiasEntry{Axis: a, Pos: pos, Neg: neg}
}

// BiasTable is the ordered list of entries attached to one action.
type BiasTable []BiasEntry

// Eval multiplies every entry against p and clamps the product to
// [MinMultiplier, MaxMultiplier]. An empty table returns exactly 1.
func (t BiasTable) Eval(p Profile) float64 {
	if len(t) == 0 {
		return 1
	}
	m := 1.0
	for _, e := range t {
		if p.Positive(e.Axis) {
			m *= e.Pos
		} else {
			m *= e.Neg
		}
	}
	if m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

// Resolve returns the explicit table when present, otherwise the preset's
// entries.
func Resolve(explicit BiasTable, preset Preset) BiasTable {
	if len(explicit) > 0 {
		return explicit
	}
	return PresetEntries(preset)
}
