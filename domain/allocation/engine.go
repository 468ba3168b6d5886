// Package allocation implements the interactive state machine that groups
// shortest-tier segments with longest-tier segments.
//
// Every mutating method returns the ids whose visual state changed so a
// renderer can redraw only those. The engine is not safe for concurrent use;
// callers serialise events.
package allocation

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/helixml/segalloc/domain/palette"
	"github.com/helixml/segalloc/domain/segment"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine tracks the gathered selection and commits allocations.
type Engine struct {
	set      *segment.Set
	palette  palette.Palette
	gathered []*segment.Segment
	anchor   *segment.Segment
	active   bool
	cursor   *segment.Segment
	logger   *slog.Logger
}

// NewEngine creates an Engine over set. Shortest-tier segments must already
// carry colour ids that resolve in pal.
func NewEngine(set *segment.Set, pal palette.Palette, opts ...Option) (*Engine, error) {
	if set == nil || set.Len() == 0 {
		return nil, ErrNoSegments
	}
	for _, s := range set.ShortestSegments() {
		id, ok := s.ColorID()
		if !ok {
			return nil, fmt.Errorf("%w: segment %d has no colour id", ErrInvariantViolation, s.ID())
		}
		if _, ok := pal.Color(id); !ok {
			return nil, fmt.Errorf("%w: colour id %d outside palette of %d", ErrInvariantViolation, id, pal.Len())
		}
	}

	e := &Engine{
		set:     set,
		palette: pal,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Set returns the segments the engine operates on.
func (e *Engine) Set() *segment.Set { return e.set }

// HandlePick applies a pointer pick. hit is false when the pointer missed
// every segment, which is a no-op.
func (e *Engine) HandlePick(id int, hit bool) (Changes, error) {
	if !hit {
		return nil, nil
	}
	s, ok := e.set.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}

	changes := changeSet{}
	switch {
	case !e.active:
		e.gather(s, changes)

	case e.isGathered(s):
		e.release(s, changes)

	case s.Layer() == e.anchor.Layer():
		if e.set.IsShortest(s) {
			e.release(e.anchor, changes)
		}
		e.gather(s, changes)

	default:
		if e.set.IsShortest(s) {
			for _, other := range e.gatheredShortest() {
				e.release(other, changes)
			}
		}
		e.gather(s, changes)
	}
	return changes.list(), nil
}

// Commit turns the gathered selection into an allocation. The gathered set
// must contain exactly one shortest-tier segment and at least one
// longest-tier segment; otherwise ErrProvideBothTiers is returned and nothing
// changes.
func (e *Engine) Commit() (Changes, error) {
	shortest := e.gatheredShortest()
	if len(shortest) == 0 || len(shortest) == len(e.gathered) {
		return nil, ErrProvideBothTiers
	}
	if len(shortest) > 1 {
		return nil, fmt.Errorf("%w: %d shortest-tier segments gathered", ErrInvariantViolation, len(shortest))
	}

	anchor := shortest[0]
	colorID, ok := anchor.ColorID()
	if !ok {
		return nil, fmt.Errorf("%w: anchor %d has no colour id", ErrInvariantViolation, anchor.ID())
	}

	changes := changeSet{}
	for _, member := range e.gathered {
		if member == anchor {
			continue
		}
		if member.IsAllocated() {
			e.clear(member, changes)
		}
		member.Join(anchor.ID())
		anchor.Join(member.ID())
		changes.add(member.ID())
	}
	changes.add(anchor.ID())

	e.logger.Debug("allocation committed",
		slog.Int("anchor", anchor.ID()),
		slog.Int("color_id", colorID),
		slog.Any("group", anchor.Group()),
	)

	e.gathered = nil
	e.anchor = nil
	e.active = false
	return changes.list(), nil
}

// ResetOne clears the allocation of one segment and removes it from every
// former partner's group.
func (e *Engine) ResetOne(id int) (Changes, error) {
	s, ok := e.set.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	changes := changeSet{}
	e.clear(s, changes)
	return changes.list(), nil
}

// ResetAll clears every allocation and the selection.
func (e *Engine) ResetAll() Changes {
	changes := changeSet{}
	for _, s := range e.gathered {
		changes.add(s.ID())
	}
	for _, s := range e.set.All() {
		if former := s.Clear(); len(former) > 0 {
			changes.add(s.ID())
			changes.add(former...)
		}
	}
	e.gathered = nil
	e.anchor = nil
	e.active = false
	return changes.list()
}

// Gathered returns the gathered segment ids in the order they were picked.
func (e *Engine) Gathered() []int {
	ids := make([]int, len(e.gathered))
	for i, s := range e.gathered {
		ids[i] = s.ID()
	}
	return ids
}

// Anchor returns the most recently gathered segment id.
func (e *Engine) Anchor() (int, bool) {
	if e.anchor == nil {
		return 0, false
	}
	return e.anchor.ID(), true
}

// SelectionActive reports whether any segment is gathered.
func (e *Engine) SelectionActive() bool { return e.active }

func (e *Engine) gather(s *segment.Segment, changes changeSet) {
	e.gathered = append(e.gathered, s)
	e.anchor = s
	e.active = true
	changes.add(s.ID())
}

// release removes s from the selection and resets its allocation.
func (e *Engine) release(s *segment.Segment, changes changeSet) {
	e.gathered = slices.DeleteFunc(e.gathered, func(g *segment.Segment) bool { return g == s })
	changes.add(s.ID())
	if s.IsAllocated() {
		e.clear(s, changes)
	}
	if len(e.gathered) == 0 {
		e.anchor = nil
		e.active = false
		return
	}
	e.anchor = e.gathered[len(e.gathered)-1]
}

// clear empties the group of s and drops s from each former partner.
func (e *Engine) clear(s *segment.Segment, changes changeSet) {
	changes.add(s.ID())
	for _, id := range s.Clear() {
		if partner, ok := e.set.Get(id); ok {
			partner.Leave(s.ID())
		}
		changes.add(id)
	}
}

func (e *Engine) isGathered(s *segment.Segment) bool {
	return slices.Contains(e.gathered, s)
}

func (e *Engine) gatheredShortest() []*segment.Segment {
	var out []*segment.Segment
	for _, g := range e.gathered {
		if e.set.IsShortest(g) {
			out = append(out, g)
		}
	}
	return out
}
