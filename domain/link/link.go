// Package link pairs segments of two tiers whose boundaries agree within a
// tolerance.
package link

import (
	"maps"
	"slices"

	"github.com/helixml/segalloc/domain/segment"
)

// DefaultScope is the boundary tolerance, in the unit of segment times.
const DefaultScope = 0.5

// Pair is one linked pair of segment ids, From taken from the first tier.
type Pair struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Table maps a segment id to the ids it was linked with. It is read-only once
// built.
type Table struct {
	links map[int][]int
	pairs []Pair
}

// Build links each segment of a with the first unlinked segment of b that
// Matches it. The scan is first-fit with no backtracking.
func Build(a, b []*segment.Segment, scope float64) Table {
	table := Table{links: make(map[int][]int)}
	taken := make(map[int]bool, len(b))

	for _, s := range a {
		if len(table.links[s.ID()]) > 0 {
			continue
		}
		for _, t := range b {
			if taken[t.ID()] || !Matches(s, t, scope) {
				continue
			}
			table.links[s.ID()] = append(table.links[s.ID()], t.ID())
			table.links[t.ID()] = append(table.links[t.ID()], s.ID())
			table.pairs = append(table.pairs, Pair{From: s.ID(), To: t.ID()})
			taken[t.ID()] = true
			break
		}
	}
	return table
}

// Matches reports whether s lies within t, with t's span widened by scope
// on each edge.
func Matches(s, t *segment.Segment, scope float64) bool {
	return s.Start() <= t.End()-scope &&
		s.Start() >= t.Start()-scope &&
		s.End() <= t.End()+scope &&
		s.End() >= t.Start()+scope
}

// Links returns the ids linked with id.
func (t Table) Links(id int) []int { return slices.Clone(t.links[id]) }

// Linked reports whether id has any link.
func (t Table) Linked(id int) bool { return len(t.links[id]) > 0 }

// IDs returns every linked id in ascending order.
func (t Table) IDs() []int { return slices.Sorted(maps.Keys(t.links)) }

// Len returns the number of linked pairs.
func (t Table) Len() int { return len(t.pairs) }

// Pairs returns the linked pairs in the order they were found.
func (t Table) Pairs() []Pair { return slices.Clone(t.pairs) }
