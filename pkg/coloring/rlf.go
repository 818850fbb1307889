package coloring

import "github.com/limaJavier/timetabling/pkg/graph"

type rlfStrategy struct{}

// NewRlf returns the Recursive Largest First strategy.
func NewRlf() Strategy {
	return &rlfStrategy{}
}

func (strategy *rlfStrategy) Color(g *graph.ConflictGraph) Coloring {
	n := g.Len()
	colors := make([]int, n)
	remaining := make([]bool, n) // U
	for v := range n {
		colors[v] = -1
		remaining[v] = true
	}

	left := n
	for color := 0; left > 0; color++ {
		class := newRlfClass(g, remaining)
		for _, v := range class.build() {
			colors[v] = color
			remaining[v] = false
			left--
		}
	}

	return fromIndices(g, colors)
}

// rlfClass grows one color class W inside the remaining set U while tracking the
// vertices F that became forbidden because they neighbor W.
type rlfClass struct {
	graph     *graph.ConflictGraph
	remaining []bool
	chosen    []bool // W
	forbidden []bool // F
	members   []int
}

func newRlfClass(g *graph.ConflictGraph, remaining []bool) *rlfClass {
	return &rlfClass{
		graph:     g,
		remaining: remaining,
		chosen:    make([]bool, g.Len()),
		forbidden: make([]bool, g.Len()),
	}
}

func (class *rlfClass) build() []int {
	class.add(class.seed())
	for {
		eligible := class.eligible()
		if len(eligible) == 0 {
			return class.members
		}
		class.add(class.next(eligible))
	}
}

// seed picks the remaining vertex with the most remaining neighbors; the earliest vertex
// wins ties.
func (class *rlfClass) seed() int {
	seed, seedDegree := -1, -1
	for v, ok := range class.remaining {
		if !ok {
			continue
		}
		if degree := class.countIn(v, class.remaining); degree > seedDegree {
			seed, seedDegree = v, degree
		}
	}
	return seed
}

// eligible returns U − W − F as a membership slice, or nil if it is empty.
func (class *rlfClass) eligible() []bool {
	var eligible []bool
	for v, ok := range class.remaining {
		if ok && !class.chosen[v] && !class.forbidden[v] {
			if eligible == nil {
				eligible = make([]bool, len(class.remaining))
			}
			eligible[v] = true
		}
	}
	return eligible
}

// next picks the eligible vertex with the most neighbors in F, then the most eligible
// neighbors, then the smallest identifier.
func (class *rlfClass) next(eligible []bool) int {
	best, bestForbidden, bestDegree := -1, -1, -1
	for v, ok := range eligible {
		if !ok {
			continue
		}
		forbidden, degree := class.countIn(v, class.forbidden), class.countIn(v, eligible)
		if forbidden > bestForbidden ||
			(forbidden == bestForbidden && degree > bestDegree) ||
			(forbidden == bestForbidden && degree == bestDegree && class.graph.Vertex(v) < class.graph.Vertex(best)) {
			best, bestForbidden, bestDegree = v, forbidden, degree
		}
	}
	return best
}

func (class *rlfClass) add(v int) {
	class.chosen[v] = true
	class.members = append(class.members, v)
	for _, u := range class.graph.NeighborIndices(v) {
		if class.remaining[u] {
			class.forbidden[u] = true
		}
	}
}

// countIn returns how many neighbors of v belong to set.
func (class *rlfClass) countIn(v int, set []bool) int {
	count := 0
	for _, u := range class.graph.NeighborIndices(v) {
		if set[u] {
			count++
		}
	}
	return count
}
