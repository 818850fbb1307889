package coloring

import (
	"math/rand"

	"github.com/limaJavier/timetabling/pkg/graph"
)

type greedyStrategy struct {
	rng *rand.Rand
}

// NewGreedy returns the first-fit strategy over a random vertex order drawn from rng.
// The same rng state yields the same coloring.
func NewGreedy(rng *rand.Rand) Strategy {
	return &greedyStrategy{rng: rng}
}

func (strategy *greedyStrategy) Color(g *graph.ConflictGraph) Coloring {
	colors := make([]int, g.Len())
	for v := range colors {
		colors[v] = -1
	}

	for _, v := range strategy.rng.Perm(g.Len()) {
		forbidden := make(map[int]struct{})
		for _, u := range g.NeighborIndices(v) {
			if colors[u] >= 0 {
				forbidden[colors[u]] = struct{}{}
			}
		}
		colors[v] = smallestAvailable(forbidden)
	}

	return fromIndices(g, colors)
}
