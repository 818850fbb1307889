package assignment

import (
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// matchFunc computes a maximum matching on the zero cells of a square matrix. The
// result maps each column to its row, or -1 when the column is free.
type matchFunc func(zero [][]bool) ([]int, error)

func unmatched(n int) []int {
	return lo.Map(make([]int, n), func(_ int, _ int) int { return -1 })
}

// augmentingMatch grows the matching one row at a time, in row order, along the first
// augmenting path a depth-first search over ascending columns finds.
func augmentingMatch(zero [][]bool) ([]int, error) {
	owner := unmatched(len(zero))
	for row := range zero {
		augment(zero, owner, row)
	}
	return owner, nil
}

type frame struct {
	row  int
	next int // Next column to scan
}

// augment searches an alternating path from root with an explicit stack and flips it
// when it ends in a free column. path[i] is the column frame i descended through.
func augment(zero [][]bool, owner []int, root int) bool {
	n := len(zero)
	seen := make([]bool, n)
	stack := []frame{{row: root}}
	path := make([]int, 0, n)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		col := top.next
		for col < n && (!zero[top.row][col] || seen[col]) {
			col++
		}
		if col == n {
			stack = stack[:len(stack)-1]
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
			continue
		}

		top.next = col + 1
		seen[col] = true
		path = append(path, col)
		if owner[col] < 0 {
			for i, taken := range path {
				owner[taken] = stack[i].row
			}
			return true
		}
		stack = append(stack, frame{row: owner[col]})
	}
	return false
}

// hopcroftKarpMatch delegates to gomega's bipartite graph, whose right-hand node ids are
// offset by the number of left-hand nodes.
func hopcroftKarpMatch(zero [][]bool) ([]int, error) {
	n := len(zero)
	indices := lo.Map(lo.Range(n), func(i int, _ int) any { return i })

	neighbors := func(rowAny any, colAny any) (bool, error) {
		return zero[rowAny.(int)][colAny.(int)], nil
	}

	graph, err := bipartitegraph.NewBipartiteGraph(indices, indices, neighbors)
	if err != nil {
		return nil, err
	}

	owner := unmatched(n)
	for _, edge := range graph.LargestMatching() {
		row, col := edge.Node1, edge.Node2
		if row >= n {
			row, col = col, row
		}
		owner[col-n] = row
	}
	return owner, nil
}
