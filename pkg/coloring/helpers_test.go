package coloring

import (
	"fmt"
	"math/rand"

	"github.com/limaJavier/timetabling/pkg/graph"
)

func vertexNames(n int) []string {
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("v%02d", i)
	}
	return names
}

// randomGraph returns a G(n, p) graph drawn from rng.
func randomGraph(rng *rand.Rand, n int, p float64) *graph.ConflictGraph {
	vertices := vertexNames(n)
	edges := make([][2]string, 0)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				edges = append(edges, [2]string{vertices[i], vertices[j]})
			}
		}
	}
	return graph.FromEdges(vertices, edges)
}

func completeGraph(n int) *graph.ConflictGraph {
	vertices := vertexNames(n)
	edges := make([][2]string, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, [2]string{vertices[i], vertices[j]})
		}
	}
	return graph.FromEdges(vertices, edges)
}

func cycleGraph(n int) *graph.ConflictGraph {
	vertices := vertexNames(n)
	edges := make([][2]string, 0, n)
	for i := range n {
		edges = append(edges, [2]string{vertices[i], vertices[(i+1)%n]})
	}
	return graph.FromEdges(vertices, edges)
}

// chromaticNumber finds the chromatic number by trying k = 1, 2, ... with plain
// backtracking. Only meant for tiny graphs.
func chromaticNumber(g *graph.ConflictGraph) int {
	n := g.Len()
	if n == 0 {
		return 0
	}
	colors := make([]int, n)

	var colorable func(v, k int) bool
	colorable = func(v, k int) bool {
		if v == n {
			return true
		}
		for color := range k {
			ok := true
			for _, u := range g.NeighborIndices(v) {
				if u < v && colors[u] == color {
					ok = false
					break
				}
			}
			if ok {
				colors[v] = color
				if colorable(v+1, k) {
					return true
				}
			}
		}
		return false
	}

	for k := 1; ; k++ {
		if colorable(0, k) {
			return k
		}
	}
}

func allStrategies() map[string]Strategy {
	return map[string]Strategy{
		Greedy:       NewGreedy(rand.New(rand.NewSource(7))),
		Dsatur:       NewDsatur(),
		Rlf:          NewRlf(),
		Backtracking: NewExact(),
	}
}
