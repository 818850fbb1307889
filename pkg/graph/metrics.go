package graph

import "github.com/samber/lo"

// Metrics summarizes the shape of a conflict graph.
type Metrics struct {
	Vertices  int     `json:"vertices" yaml:"vertices"`
	Edges     int     `json:"edges" yaml:"edges"`
	MaxDegree int     `json:"max_degree" yaml:"max_degree"`
	Density   float64 `json:"density" yaml:"density"`
}

// EdgeCount returns the number of undirected edges.
func (g *ConflictGraph) EdgeCount() int {
	return lo.SumBy(g.neighbors, func(adjacent []int) int { return len(adjacent) }) / 2 // Every edge is stored twice
}

// MaxDegree returns the highest vertex degree, 0 for an empty graph.
func (g *ConflictGraph) MaxDegree() int {
	highest := 0
	for _, adjacent := range g.neighbors {
		highest = max(highest, len(adjacent))
	}
	return highest
}

// Density returns 2E / (V(V-1)). Graphs with fewer than two vertices have density 0.
func (g *ConflictGraph) Density() float64 {
	vertices := len(g.vertices)
	if vertices < 2 {
		return 0
	}
	return float64(2*g.EdgeCount()) / float64(vertices*(vertices-1))
}

// Metrics returns every metric at once.
func (g *ConflictGraph) Metrics() Metrics {
	return Metrics{
		Vertices:  g.Len(),
		Edges:     g.EdgeCount(),
		MaxDegree: g.MaxDegree(),
		Density:   g.Density(),
	}
}
