// Package textgrid reads Praat TextGrid annotation files into named tiers of
// time-aligned intervals.
package textgrid

// Kind identifies the geometry of a tier.
type Kind int

// Kind values.
const (
	KindInterval Kind = iota
	KindPoint
)

// String returns the Praat class name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "TextTier"
	default:
		return "IntervalTier"
	}
}

// Interval is one labelled span of a tier. Point marks have Start == End.
// Immutable value object.
type Interval struct {
	start float64
	end   float64
	label string
}

// NewInterval creates an Interval.
func NewInterval(start, end float64, label string) Interval {
	return Interval{start: start, end: end, label: label}
}

// Start returns the start time.
func (i Interval) Start() float64 { return i.start }

// End returns the end time.
func (i Interval) End() float64 { return i.end }

// Label returns the annotation text.
func (i Interval) Label() string { return i.label }

// Midpoint returns the centre of the interval.
func (i Interval) Midpoint() float64 { return i.start + (i.end-i.start)/2 }

// Contains reports whether t lies within [Start, End].
func (i Interval) Contains(t float64) bool { return t >= i.start && t <= i.end }

// Tier is a named, document-ordered sequence of intervals.
type Tier struct {
	name      string
	kind      Kind
	intervals []Interval
}

// NewTier creates a Tier. The intervals slice is copied.
func NewTier(name string, kind Kind, intervals []Interval) Tier {
	cp := make([]Interval, len(intervals))
	copy(cp, intervals)
	return Tier{name: name, kind: kind, intervals: cp}
}

// Name returns the tier name.
func (t Tier) Name() string { return t.name }

// Kind returns the tier geometry.
func (t Tier) Kind() Kind { return t.kind }

// Len returns the number of intervals.
func (t Tier) Len() int { return len(t.intervals) }

// Intervals returns a copy of the intervals in document order.
func (t Tier) Intervals() []Interval {
	cp := make([]Interval, len(t.intervals))
	copy(cp, t.intervals)
	return cp
}

// Tiers maps tier names to tiers, preserving insertion order.
type Tiers struct {
	order  []string
	byName map[string]Tier
}

// NewTiers creates a Tiers map from the given tiers in order.
// A later tier with an already used name replaces the earlier one in place.
func NewTiers(tiers ...Tier) Tiers {
	var t Tiers
	for _, tier := range tiers {
		t.set(tier)
	}
	return t
}

func (t *Tiers) set(tier Tier) {
	if t.byName == nil {
		t.byName = make(map[string]Tier)
	}
	if _, ok := t.byName[tier.name]; !ok {
		t.order = append(t.order, tier.name)
	}
	t.byName[tier.name] = tier
}

// Get returns the tier with the given name.
func (t Tiers) Get(name string) (Tier, bool) {
	tier, ok := t.byName[name]
	return tier, ok
}

// Names returns the tier names in insertion order.
func (t Tiers) Names() []string {
	cp := make([]string, len(t.order))
	copy(cp, t.order)
	return cp
}

// Len returns the number of tiers.
func (t Tiers) Len() int { return len(t.order) }
