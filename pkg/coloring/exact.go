package coloring

import "github.com/limaJavier/timetabling/pkg/graph"

type exactStrategy struct{}

// NewExact returns the branch-and-bound strategy.
//
// The search starts from the DSATUR coloring as incumbent and only accepts colorings
// with strictly fewer colors. It is exponential in the worst case; the DSATUR bound is
// the only thing limiting its running time.
func NewExact() Strategy {
	return &exactStrategy{}
}

func (strategy *exactStrategy) Color(g *graph.ConflictGraph) Coloring {
	if g.Len() == 0 {
		return Coloring{}
	}

	search := newExactSearch(g)
	search.branch()
	return fromIndices(g, search.best)
}

// exactSearch owns all the mutable state of one branch-and-bound run.
type exactSearch struct {
	*saturationState
	used      int   // Highest committed color + 1
	remaining int   // Uncolored vertices
	bestK     int   // Colors of the incumbent
	best      []int // Incumbent coloring
}

func newExactSearch(g *graph.ConflictGraph) *exactSearch {
	upper := dsatur(g)
	return &exactSearch{
		saturationState: newSaturationState(g),
		remaining:       g.Len(),
		bestK:           max(colorCount(upper), 1),
		best:            upper,
	}
}

func (search *exactSearch) branch() {
	if search.remaining == 0 {
		if search.used < search.bestK {
			search.bestK = search.used
			copy(search.best, search.colors)
		}
		return
	}
	if search.used >= search.bestK {
		return
	}

	v := search.selectVertex()
	search.remaining--

	//** Reuse a color already in play
	for color := 0; color < min(search.used, search.bestK-1); color++ {
		if !search.admissible(v, color) {
			continue
		}
		gained := search.assign(v, color)
		search.branch()
		search.unassign(v, color, gained)
	}

	//** Open a new color
	if color := search.used; color+1 < search.bestK && search.admissible(v, color) {
		gained := search.assign(v, color)
		search.used++
		search.branch()
		search.used--
		search.unassign(v, color, gained)
	}

	search.remaining++
}
