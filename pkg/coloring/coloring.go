// Package coloring computes proper colorings of a conflict graph.
//
// Four interchangeable strategies are available through Compute (or New):
//
//   - "greedy": random vertex order, smallest available color.
//   - "dsatur": saturation-degree heuristic, deterministic.
//   - "rlf": Recursive Largest First, one maximal independent set per color.
//   - "backtracking": exact branch-and-bound search bounded by the DSATUR result.
//
// Every strategy returns a freshly allocated Coloring and never mutates the graph.
package coloring

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/limaJavier/timetabling/pkg/graph"
	"github.com/samber/lo"
)

var (
	ErrIncomplete = errors.New("coloring does not cover every vertex")
	ErrConflict   = errors.New("adjacent vertices share a color")
)

// Coloring maps an entity identifier to a non-negative color.
type Coloring map[string]int

// Count returns 1 + the highest color used, or 0 for an empty coloring.
func (coloring Coloring) Count() int {
	if len(coloring) == 0 {
		return 0
	}
	return lo.Max(lo.Values(coloring)) + 1
}

// Colors returns the distinct colors in ascending order.
func (coloring Coloring) Colors() []int {
	colors := lo.Uniq(lo.Values(coloring))
	slices.Sort(colors)
	return colors
}

// Classes groups the entities by color. Members of a class are sorted.
func (coloring Coloring) Classes() map[int][]string {
	classes := make(map[int][]string)
	for _, entity := range slices.Sorted(maps.Keys(coloring)) {
		color := coloring[entity]
		classes[color] = append(classes[color], entity)
	}
	return classes
}

// Verify checks that every vertex of g holds a non-negative color and that no edge
// joins two vertices of the same color.
func Verify(g *graph.ConflictGraph, coloring Coloring) error {
	for _, vertex := range g.Vertices() {
		if color, ok := coloring[vertex]; !ok || color < 0 {
			return fmt.Errorf("%w: vertex %q", ErrIncomplete, vertex)
		}
	}
	for _, edge := range g.Edges() {
		if coloring[edge[0]] == coloring[edge[1]] {
			return fmt.Errorf("%w: %q and %q hold color %d", ErrConflict, edge[0], edge[1], coloring[edge[0]])
		}
	}
	return nil
}

// fromIndices translates a per-position color slice into a Coloring.
func fromIndices(g *graph.ConflictGraph, colors []int) Coloring {
	coloring := make(Coloring, len(colors))
	for i, color := range colors {
		coloring[g.Vertex(i)] = color
	}
	return coloring
}

// smallestAvailable returns the smallest non-negative color absent from forbidden.
func smallestAvailable(forbidden map[int]struct{}) int {
	color := 0
	for {
		if _, ok := forbidden[color]; !ok {
			return color
		}
		color++
	}
}
