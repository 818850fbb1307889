// Package assignment solves the rectangular linear assignment problem with the
// Hungarian (Kuhn–Munkres) method.
package assignment

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
)

const (
	Augmenting   = "augmenting"    // Depth-first augmenting paths, first path found wins
	HopcroftKarp = "hopcroft-karp" // gomega's bipartite graph matching
)

var (
	ErrRaggedMatrix   = errors.New("cost matrix rows differ in length")
	ErrInvalidCost    = errors.New("cost matrix holds a negative or non-finite entry")
	ErrUnknownMatcher = errors.New("unknown matcher")
)

// InfeasibleError reports that the reduction loop could not make progress. It never
// happens for a well-formed matrix.
type InfeasibleError struct {
	Size    int
	Matched int
}

func (err *InfeasibleError) Error() string {
	return fmt.Sprintf("assignment stalled with %d of %d rows matched on zero cells", err.Matched, err.Size)
}

// Result is an optimal assignment. Rows[i] is assigned to Cols[i]; pairs are sorted by
// row and only rows and columns of the original matrix are reported.
type Result struct {
	Rows []int   `json:"rows" yaml:"rows"`
	Cols []int   `json:"cols" yaml:"cols"`
	Cost float64 `json:"cost" yaml:"cost"`
}

// Solver computes minimum-cost assignments.
type Solver interface {
	Solve(cost [][]float64) (Result, error)
}

var matchers = map[string]matchFunc{
	Augmenting:   augmentingMatch,
	HopcroftKarp: hopcroftKarpMatch,
}

// Matchers returns the registered matcher names, sorted.
func Matchers() []string {
	names := lo.Keys(matchers)
	slices.Sort(names)
	return names
}

// NewSolver returns a Hungarian solver that finds zero-cell matchings with the named
// matcher. An empty name selects Augmenting.
func NewSolver(matcher string) (Solver, error) {
	if matcher == "" {
		matcher = Augmenting
	}
	match, ok := matchers[matcher]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownMatcher, matcher, Matchers())
	}
	return &hungarianSolver{match: match}, nil
}

// Solve runs the Hungarian method with the Augmenting matcher.
func Solve(cost [][]float64) (Result, error) {
	return (&hungarianSolver{match: augmentingMatch}).Solve(cost)
}

// validate returns the matrix dimensions.
func validate(cost [][]float64) (rows, cols int, err error) {
	if len(cost) == 0 {
		return 0, 0, nil
	}
	rows, cols = len(cost), len(cost[0])
	for i, row := range cost {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has %d entries, row 0 has %d", ErrRaggedMatrix, i, len(row), cols)
		}
		for j, value := range row {
			if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
				return 0, 0, fmt.Errorf("%w: cost[%d][%d] = %v", ErrInvalidCost, i, j, value)
			}
		}
	}
	return rows, cols, nil
}
