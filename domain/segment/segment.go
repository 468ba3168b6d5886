// Package segment provides the runtime model of annotated intervals: each
// segment carries a global identity, its tier, and its allocation state.
package segment

import (
	"slices"

	"github.com/helixml/segalloc/domain/textgrid"
)

// Segment is one interval of an active tier. Identity and layer are fixed at
// construction; the allocation group and colour id change during a session.
type Segment struct {
	id       int
	interval textgrid.Interval
	layer    string
	upper    bool
	group    map[int]struct{}
	colorID  int
	hasColor bool
}

// New creates an unallocated Segment.
func New(id int, interval textgrid.Interval, layer string, upper bool) *Segment {
	return &Segment{
		id:       id,
		interval: interval,
		layer:    layer,
		upper:    upper,
		group:    make(map[int]struct{}),
	}
}

// ID returns the segment id, unique across both active tiers.
func (s *Segment) ID() int { return s.id }

// Interval returns the parsed interval.
func (s *Segment) Interval() textgrid.Interval { return s.interval }

// Start returns the interval start time.
func (s *Segment) Start() float64 { return s.interval.Start() }

// End returns the interval end time.
func (s *Segment) End() float64 { return s.interval.End() }

// Label returns the interval label.
func (s *Segment) Label() string { return s.interval.Label() }

// Layer returns the name of the tier the segment belongs to.
func (s *Segment) Layer() string { return s.layer }

// IsUpperLayer reports whether the segment belongs to the first requested tier.
func (s *Segment) IsUpperLayer() bool { return s.upper }

// Group returns the ids the segment is allocated with, in ascending order.
func (s *Segment) Group() []int {
	ids := make([]int, 0, len(s.group))
	for id := range s.group {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// InGroup reports whether id is in the allocation group.
func (s *Segment) InGroup(id int) bool {
	_, ok := s.group[id]
	return ok
}

// IsAllocated reports whether the segment has any allocation partner.
func (s *Segment) IsAllocated() bool { return len(s.group) > 0 }

// Join adds id to the allocation group.
func (s *Segment) Join(id int) { s.group[id] = struct{}{} }

// Leave removes id from the allocation group.
func (s *Segment) Leave(id int) { delete(s.group, id) }

// Clear empties the allocation group and returns the former partner ids in
// ascending order.
func (s *Segment) Clear() []int {
	former := s.Group()
	clear(s.group)
	return former
}

// ColorID returns the colour id and whether one is set. Only shortest-tier
// segments carry a colour id.
func (s *Segment) ColorID() (int, bool) { return s.colorID, s.hasColor }

// SetColorID sets the colour id.
func (s *Segment) SetColorID(id int) {
	s.colorID = id
	s.hasColor = true
}
