package allocation

import (
	"fmt"

	"github.com/helixml/segalloc/domain/palette"
)

// State is the render state of one segment.
type State struct {
	ID       int
	Group    []int
	Gathered bool
	Cursor   bool
	Color    palette.Color
	Colored  bool
}

// Allocation is one committed grouping: a shortest-tier anchor and the
// longest-tier segments that share its colour.
type Allocation struct {
	Anchor  int
	Members []int
	ColorID int
	Color   palette.Color
}

// AllocationOf returns the render state of segment id.
func (e *Engine) AllocationOf(id int) (State, error) {
	s, ok := e.set.Get(id)
	if !ok {
		return State{}, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	st := State{
		ID:       id,
		Group:    s.Group(),
		Gathered: e.isGathered(s),
		Cursor:   e.cursor == s,
	}
	st.Color, st.Colored = e.ColorOf(id)
	return st, nil
}

// ColorOf returns the colour segment id is drawn with. Unallocated segments
// have none. A longest-tier segment takes the colour of its anchor.
func (e *Engine) ColorOf(id int) (palette.Color, bool) {
	s, ok := e.set.Get(id)
	if !ok || !s.IsAllocated() {
		return palette.Color{}, false
	}
	anchor := s
	if !e.set.IsShortest(s) {
		group := s.Group()
		if anchor, ok = e.set.Get(group[0]); !ok {
			return palette.Color{}, false
		}
	}
	colorID, ok := anchor.ColorID()
	if !ok {
		return palette.Color{}, false
	}
	return e.palette.Color(colorID)
}

// Allocations lists every committed allocation ordered by anchor id.
func (e *Engine) Allocations() []Allocation {
	var out []Allocation
	for _, s := range e.set.ShortestSegments() {
		if !s.IsAllocated() {
			continue
		}
		colorID, _ := s.ColorID()
		color, _ := e.palette.Color(colorID)
		out = append(out, Allocation{
			Anchor:  s.ID(),
			Members: s.Group(),
			ColorID: colorID,
			Color:   color,
		})
	}
	return out
}

// States returns the render state of every segment ordered by id.
func (e *Engine) States() []State {
	all := e.set.All()
	out := make([]State, 0, len(all))
	for _, s := range all {
		st, _ := e.AllocationOf(s.ID())
		out = append(out, st)
	}
	return out
}
