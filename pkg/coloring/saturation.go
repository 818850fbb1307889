package coloring

import "github.com/limaJavier/timetabling/pkg/graph"

// saturationState is the bookkeeping shared by DSATUR and the exact search.
//
// For every uncolored vertex it keeps the set of distinct colors already held by its
// neighbors; the size of that set is the vertex's saturation. Every insertion into a
// neighbor set is pushed onto trail so that unassign can revert it exactly.
type saturationState struct {
	graph     *graph.ConflictGraph
	colors    []int              // -1 while uncolored
	nbrColors []map[int]struct{} // Distinct colors among colored neighbors
	trail     []int              // Vertices whose neighbor set gained a color, in insertion order
}

func newSaturationState(g *graph.ConflictGraph) *saturationState {
	state := &saturationState{
		graph:     g,
		colors:    make([]int, g.Len()),
		nbrColors: make([]map[int]struct{}, g.Len()),
	}
	for v := range state.colors {
		state.colors[v] = -1
		state.nbrColors[v] = make(map[int]struct{})
	}
	return state
}

func (state *saturationState) saturation(v int) int {
	return len(state.nbrColors[v])
}

// precedes reports whether u must be colored before v: higher saturation first, then
// higher degree. Callers scan in vertex order and keep the first maximum, which makes
// the earliest vertex win the remaining ties.
func (state *saturationState) precedes(u, v int) bool {
	if su, sv := state.saturation(u), state.saturation(v); su != sv {
		return su > sv
	}
	return state.graph.DegreeAt(u) > state.graph.DegreeAt(v)
}

// selectVertex returns the uncolored vertex with the highest priority, or -1 when every
// vertex is colored.
func (state *saturationState) selectVertex() int {
	selected := -1
	for v, color := range state.colors {
		if color >= 0 {
			continue
		}
		if selected < 0 || state.precedes(v, selected) {
			selected = v
		}
	}
	return selected
}

// admissible reports whether no colored neighbor of v holds color.
func (state *saturationState) admissible(v, color int) bool {
	_, taken := state.nbrColors[v][color]
	return !taken
}

func (state *saturationState) firstFit(v int) int {
	return smallestAvailable(state.nbrColors[v])
}

// assign colors v and propagates the color to its uncolored neighbors. It returns how
// many trail entries were pushed, which is what unassign needs to revert the move.
func (state *saturationState) assign(v, color int) int {
	state.colors[v] = color
	gained := 0
	for _, u := range state.graph.NeighborIndices(v) {
		if state.colors[u] >= 0 {
			continue
		}
		if _, ok := state.nbrColors[u][color]; ok {
			continue
		}
		state.nbrColors[u][color] = struct{}{}
		state.trail = append(state.trail, u)
		gained++
	}
	return gained
}

// unassign reverts the latest assign of v, which must still be on top of the trail.
func (state *saturationState) unassign(v, color, gained int) {
	top := len(state.trail) - gained
	for _, u := range state.trail[top:] {
		delete(state.nbrColors[u], color)
	}
	state.trail = state.trail[:top]
	state.colors[v] = -1
}
