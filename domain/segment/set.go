package segment

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/helixml/segalloc/domain/textgrid"
)

// Errors returned when a Set cannot be built.
var (
	ErrDuplicateID  = errors.New("duplicate segment id")
	ErrUnknownLayer = errors.New("segment layer is not an active tier")
)

// Set holds the segments of the two active tiers. Ids are assigned to the
// shortest tier first, then the longest, each in document order.
type Set struct {
	tierA    string
	tierB    string
	shortest string
	longest  string
	ordered  []*Segment
	byID     map[int]*Segment
	byLayer  map[string][]*Segment
}

// Build creates the segments for tierA and tierB from parsed tiers.
//
// The tier with fewer intervals is the shortest tier; tierA wins a tie.
func Build(tiers textgrid.Tiers, tierA, tierB string) (*Set, error) {
	tierA = strings.TrimSpace(tierA)
	tierB = strings.TrimSpace(tierB)
	if tierA == "" || tierB == "" {
		return nil, textgrid.ErrTierNameRequired
	}
	if tierA == tierB {
		return nil, fmt.Errorf("%w: %q requested twice", textgrid.ErrTierNotFound, tierA)
	}

	a, ok := tiers.Get(tierA)
	if !ok {
		return nil, fmt.Errorf("%w: %s", textgrid.ErrTierNotFound, tierA)
	}
	b, ok := tiers.Get(tierB)
	if !ok {
		return nil, fmt.Errorf("%w: %s", textgrid.ErrTierNotFound, tierB)
	}

	short, long := a, b
	if b.Len() < a.Len() {
		short, long = b, a
	}

	segs := make([]*Segment, 0, a.Len()+b.Len())
	for _, tier := range []textgrid.Tier{short, long} {
		for _, iv := range tier.Intervals() {
			segs = append(segs, New(len(segs), iv, tier.Name(), tier.Name() == tierA))
		}
	}

	return newSet(tierA, tierB, short.Name(), long.Name(), segs), nil
}

// NewSet creates a Set from existing segments. Every segment must belong to
// tierA or tierB and ids must be unique.
func NewSet(tierA, tierB string, segs []*Segment) (*Set, error) {
	seen := make(map[int]bool, len(segs))
	counts := map[string]int{tierA: 0, tierB: 0}
	for _, s := range segs {
		if seen[s.ID()] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, s.ID())
		}
		seen[s.ID()] = true
		if _, ok := counts[s.Layer()]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, s.Layer())
		}
		counts[s.Layer()]++
	}

	shortest, longest := tierA, tierB
	if counts[tierB] < counts[tierA] {
		shortest, longest = tierB, tierA
	}

	ordered := slices.Clone(segs)
	slices.SortFunc(ordered, func(x, y *Segment) int { return x.ID() - y.ID() })
	return newSet(tierA, tierB, shortest, longest, ordered), nil
}

func newSet(tierA, tierB, shortest, longest string, ordered []*Segment) *Set {
	s := &Set{
		tierA:    tierA,
		tierB:    tierB,
		shortest: shortest,
		longest:  longest,
		ordered:  ordered,
		byID:     make(map[int]*Segment, len(ordered)),
		byLayer:  make(map[string][]*Segment, 2),
	}
	for _, seg := range ordered {
		s.byID[seg.ID()] = seg
		s.byLayer[seg.Layer()] = append(s.byLayer[seg.Layer()], seg)
	}
	return s
}

// TierA returns the first requested tier name.
func (s *Set) TierA() string { return s.tierA }

// TierB returns the second requested tier name.
func (s *Set) TierB() string { return s.tierB }

// Shortest returns the name of the tier with fewer segments.
func (s *Set) Shortest() string { return s.shortest }

// Longest returns the name of the other active tier.
func (s *Set) Longest() string { return s.longest }

// Layer returns the segments of one tier in document order.
func (s *Set) Layer(name string) []*Segment { return slices.Clone(s.byLayer[name]) }

// ShortestSegments returns the shortest tier's segments in document order.
func (s *Set) ShortestSegments() []*Segment { return s.Layer(s.shortest) }

// LongestSegments returns the longest tier's segments in document order.
func (s *Set) LongestSegments() []*Segment { return s.Layer(s.longest) }

// All returns every segment ordered by id.
func (s *Set) All() []*Segment { return slices.Clone(s.ordered) }

// Get returns the segment with the given id.
func (s *Set) Get(id int) (*Segment, bool) {
	seg, ok := s.byID[id]
	return seg, ok
}

// Len returns the number of segments.
func (s *Set) Len() int { return len(s.ordered) }

// IsShortest reports whether seg belongs to the shortest tier.
func (s *Set) IsShortest(seg *Segment) bool { return seg.Layer() == s.shortest }

// AssignColorIDs gives each shortest-tier segment its 0-based position in
// that tier as colour id.
func (s *Set) AssignColorIDs() {
	for i, seg := range s.byLayer[s.shortest] {
		seg.SetColorID(i)
	}
}
