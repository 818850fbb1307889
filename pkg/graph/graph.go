// Package graph holds the conflict graph shared by every coloring strategy.
package graph

import (
	"slices"

	"github.com/samber/lo"
)

// ConflictGraph is an undirected graph over entity identifiers. An edge means the two
// entities must not share a color. It is immutable after construction.
//
// Vertices keep an explicit total order (see New) which the heuristics use as their
// final tie-break, so two graphs built from the same data always color the same way.
type ConflictGraph struct {
	vertices  []string
	index     map[string]int
	neighbors [][]int // Sorted ascending, deduplicated, no self-loops
}

// New builds a conflict graph.
//
// The vertex order is order followed by any adjacency key missing from it, sorted
// lexicographically. Duplicates in order are ignored.
//
// The adjacency is normalized:
//   - self-loops and repeated neighbors are dropped;
//   - neighbors that are not vertices (absent from both order and the adjacency keys)
//     are dropped, so they count neither towards degree nor towards edges;
//   - every edge is made symmetric, u ∈ N(v) ⇔ v ∈ N(u).
func New(order []string, adjacency map[string][]string) *ConflictGraph {
	g := &ConflictGraph{index: make(map[string]int, len(adjacency))}

	add := func(vertex string) {
		if _, ok := g.index[vertex]; ok {
			return
		}
		g.index[vertex] = len(g.vertices)
		g.vertices = append(g.vertices, vertex)
	}

	for _, vertex := range order {
		add(vertex)
	}
	missing := lo.Filter(lo.Keys(adjacency), func(vertex string, _ int) bool {
		_, ok := g.index[vertex]
		return !ok
	})
	slices.Sort(missing)
	for _, vertex := range missing {
		add(vertex)
	}

	//** Collect symmetric edges
	sets := make([]map[int]struct{}, len(g.vertices))
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}
	for vertex, adjacent := range adjacency {
		u := g.index[vertex]
		for _, neighbor := range adjacent {
			v, ok := g.index[neighbor]
			if !ok || u == v { // Dangling reference or self-loop
				continue
			}
			sets[u][v] = struct{}{}
			sets[v][u] = struct{}{}
		}
	}

	g.neighbors = make([][]int, len(g.vertices))
	for i, set := range sets {
		g.neighbors[i] = lo.Keys(set)
		slices.Sort(g.neighbors[i])
	}

	return g
}

// FromEdges builds a graph from an explicit vertex order and a list of edges.
func FromEdges(vertices []string, edges [][2]string) *ConflictGraph {
	adjacency := make(map[string][]string, len(vertices))
	for _, edge := range edges {
		adjacency[edge[0]] = append(adjacency[edge[0]], edge[1])
	}
	return New(vertices, adjacency)
}

// Len returns the number of vertices.
func (g *ConflictGraph) Len() int {
	return len(g.vertices)
}

// Vertices returns a copy of the vertices in graph order.
func (g *ConflictGraph) Vertices() []string {
	return slices.Clone(g.vertices)
}

// Vertex returns the identifier at position i of the vertex order.
func (g *ConflictGraph) Vertex(i int) string {
	return g.vertices[i]
}

// Index returns the position of vertex in the vertex order.
func (g *ConflictGraph) Index(vertex string) (int, bool) {
	i, ok := g.index[vertex]
	return i, ok
}

// NeighborIndices returns the neighbors of the i-th vertex as positions. The slice
// is shared with the graph and must not be modified.
func (g *ConflictGraph) NeighborIndices(i int) []int {
	return g.neighbors[i]
}

// DegreeAt returns the degree of the i-th vertex.
func (g *ConflictGraph) DegreeAt(i int) int {
	return len(g.neighbors[i])
}

// Adjacent reports whether the i-th and j-th vertices conflict.
func (g *ConflictGraph) Adjacent(i, j int) bool {
	_, found := slices.BinarySearch(g.neighbors[i], j)
	return found
}

// Neighbors returns the neighbors of vertex in graph order, or nil if vertex is unknown.
func (g *ConflictGraph) Neighbors(vertex string) []string {
	i, ok := g.index[vertex]
	if !ok {
		return nil
	}
	return lo.Map(g.neighbors[i], func(j int, _ int) string { return g.vertices[j] })
}

// Degree returns the number of distinct neighbors of vertex (0 if unknown).
func (g *ConflictGraph) Degree(vertex string) int {
	i, ok := g.index[vertex]
	if !ok {
		return 0
	}
	return len(g.neighbors[i])
}

// HasEdge reports whether u and v conflict.
func (g *ConflictGraph) HasEdge(u, v string) bool {
	i, ok := g.index[u]
	if !ok {
		return false
	}
	j, ok := g.index[v]
	if !ok {
		return false
	}
	return g.Adjacent(i, j)
}

// Edges returns every undirected edge once, as (lower position, higher position) pairs
// translated to identifiers.
func (g *ConflictGraph) Edges() [][2]string {
	edges := make([][2]string, 0, g.EdgeCount())
	for u, adjacent := range g.neighbors {
		for _, v := range adjacent {
			if u < v {
				edges = append(edges, [2]string{g.vertices[u], g.vertices[v]})
			}
		}
	}
	return edges
}
