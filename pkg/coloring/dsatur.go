package coloring

import "github.com/limaJavier/timetabling/pkg/graph"

type dsaturStrategy struct{}

// NewDsatur returns the saturation-degree heuristic. The next vertex is the one with
// the most distinct neighbor colors, then the highest degree, then the earliest
// position in the graph's vertex order; it receives the smallest free color.
func NewDsatur() Strategy {
	return &dsaturStrategy{}
}

func (strategy *dsaturStrategy) Color(g *graph.ConflictGraph) Coloring {
	return fromIndices(g, dsatur(g))
}

func dsatur(g *graph.ConflictGraph) []int {
	state := newSaturationState(g)
	for range g.Len() {
		v := state.selectVertex()
		state.assign(v, state.firstFit(v))
		state.trail = state.trail[:0] // Nothing is ever undone here
	}
	return state.colors
}

// colorCount returns 1 + the highest color of a per-position coloring.
func colorCount(colors []int) int {
	count := 0
	for _, color := range colors {
		count = max(count, color+1)
	}
	return count
}
