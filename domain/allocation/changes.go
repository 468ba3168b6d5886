package allocation

import (
	"maps"
	"slices"
)

// Changes lists the segment ids whose visual state changed, ascending and
// without duplicates.
type Changes []int

// Contains reports whether id changed.
func (c Changes) Contains(id int) bool {
	_, found := slices.BinarySearch(c, id)
	return found
}

// changeSet collects ids touched by one transition.
type changeSet map[int]struct{}

func (c changeSet) add(ids ...int) {
	for _, id := range ids {
		c[id] = struct{}{}
	}
}

func (c changeSet) list() Changes {
	return Changes(slices.Sorted(maps.Keys(c)))
}
