package assignment

import "math"

type hungarianSolver struct {
	match matchFunc
}

func (solver *hungarianSolver) Solve(cost [][]float64) (Result, error) {
	rows, cols, err := validate(cost)
	if err != nil {
		return Result{}, err
	}
	if rows == 0 {
		return Result{Rows: []int{}, Cols: []int{}}, nil
	}

	n := max(rows, cols)
	reduced := padded(cost, n)
	reduce(reduced)

	var owner []int
	for {
		zero := zeroCells(reduced)
		if owner, err = solver.match(zero); err != nil {
			return Result{}, err
		}

		matched := matchedCount(owner)
		if matched == n {
			break
		}

		rowMarked, colMarked := koenigMarks(zero, owner)
		delta := minUncovered(reduced, rowMarked, colMarked)
		if math.IsInf(delta, 1) || delta <= 0 {
			return Result{}, &InfeasibleError{Size: n, Matched: matched}
		}
		for i := range n {
			for j := range n {
				if rowMarked[i] {
					reduced[i][j] -= delta
				}
				if colMarked[j] {
					reduced[i][j] += delta
				}
			}
		}
	}

	//** Keep the pairs inside the original matrix, ordered by row
	rowToCol := make([]int, n)
	for col, row := range owner {
		rowToCol[row] = col
	}
	result := Result{Rows: make([]int, 0, rows), Cols: make([]int, 0, rows)}
	for row := range rows {
		if col := rowToCol[row]; col < cols {
			result.Rows = append(result.Rows, row)
			result.Cols = append(result.Cols, col)
			result.Cost += cost[row][col]
		}
	}
	return result, nil
}

// padded copies cost into an n×n matrix, filling the extra cells with zeros.
func padded(cost [][]float64, n int) [][]float64 {
	square := make([][]float64, n)
	for i := range square {
		square[i] = make([]float64, n)
		if i < len(cost) {
			copy(square[i], cost[i])
		}
	}
	return square
}

// reduce subtracts every row minimum and then every column minimum.
func reduce(matrix [][]float64) {
	n := len(matrix)
	for i := range n {
		minimum := math.Inf(1)
		for j := range n {
			minimum = min(minimum, matrix[i][j])
		}
		for j := range n {
			matrix[i][j] -= minimum
		}
	}
	for j := range n {
		minimum := math.Inf(1)
		for i := range n {
			minimum = min(minimum, matrix[i][j])
		}
		for i := range n {
			matrix[i][j] -= minimum
		}
	}
}

func zeroCells(matrix [][]float64) [][]bool {
	zero := make([][]bool, len(matrix))
	for i, row := range matrix {
		zero[i] = make([]bool, len(row))
		for j, value := range row {
			zero[i][j] = value == 0
		}
	}
	return zero
}

func matchedCount(owner []int) int {
	count := 0
	for _, row := range owner {
		if row >= 0 {
			count++
		}
	}
	return count
}

// koenigMarks marks the unmatched rows, then alternates: a marked row marks every column
// it reaches through a zero cell, and a marked matched column marks its row. Unmarked
// rows together with marked columns form a minimum vertex cover of the zero cells.
func koenigMarks(zero [][]bool, owner []int) (rowMarked, colMarked []bool) {
	n := len(zero)
	rowMarked, colMarked = make([]bool, n), make([]bool, n)
	for _, row := range owner {
		if row >= 0 {
			rowMarked[row] = true
		}
	}

	queue := make([]int, 0, n)
	for row := range n {
		rowMarked[row] = !rowMarked[row]
		if rowMarked[row] {
			queue = append(queue, row)
		}
	}

	for len(queue) > 0 {
		row := queue[0]
		queue = queue[1:]
		for col, isZero := range zero[row] {
			if !isZero || colMarked[col] {
				continue
			}
			colMarked[col] = true
			if next := owner[col]; next >= 0 && !rowMarked[next] {
				rowMarked[next] = true
				queue = append(queue, next)
			}
		}
	}
	return rowMarked, colMarked
}

// minUncovered returns the smallest entry in a marked row and an unmarked column, or
// +Inf when there is none.
func minUncovered(matrix [][]float64, rowMarked, colMarked []bool) float64 {
	minimum := math.Inf(1)
	for i, row := range matrix {
		if !rowMarked[i] {
			continue
		}
		for j, value := range row {
			if !colMarked[j] {
				minimum = min(minimum, value)
			}
		}
	}
	return minimum
}
