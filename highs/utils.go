package highs

import (
	"math"
	"sort"
)

// Inf returns positive infinity, suitable for unbounded variable bounds.
func Inf() float64 {
	return math.Inf(1)
}

// NegInf returns negative infinity, suitable for unbounded variable bounds.
func NegInf() float64 {
	return math.Inf(-1)
}

// nonzerosToCSR converts a slice of Nonzero elements to compressed sparse row format.
func nonzerosToCSR(nz []Nonzero, numRow int) (start, index []int, value []float64, err error) {
	if len(nz) == 0 {
		return make([]int, numRow), nil, nil, nil
	}

	// Sort by row, then by column
	sorted := make([]Nonzero, len(nz))
	copy(sorted, nz)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	// Validate and deduplicate
	filtered := make([]Nonzero, 0, len(sorted))
	for _, n := range sorted {
		if n.Row < 0 || n.Col < 0 {
			return nil, nil, nil, newErrorMsg("nonzerosToCSR", "negative row or column index")
		}
		// Merge duplicates (keep last value)
		if len(filtered) > 0 && filtered[len(filtered)-1].Row == n.Row && filtered[len(filtered)-1].Col == n.Col {
			filtered[len(filtered)-1].Val = n.Val
		} else {
			filtered = append(filtered, n)
		}
	}

	// Build CSR format; rows without entries start where the next one does
	start = make([]int, numRow)
	index = make([]int, len(filtered))
	value = make([]float64, len(filtered))

	next := 0
	for row := 0; row < numRow; row++ {
		start[row] = next
		for next < len(filtered) && filtered[next].Row == row {
			next++
		}
	}
	for i, n := range filtered {
		index[i] = n.Col
		value[i] = n.Val
	}

	return start, index, value, nil
}

// diagonalToCSC converts a diagonal Hessian to the triangular compressed
// sparse column format HiGHS expects, dropping zero entries.
func diagonalToCSC(diag []float64) (start, index []int, value []float64) {
	start = make([]int, len(diag))
	for col, v := range diag {
		start[col] = len(value)
		if v != 0 {
			index = append(index, col)
			value = append(value, v)
		}
	}
	return start, index, value
}

// expandSlice expands a slice to length n if it's empty, filling with fillValue.
// Returns the original slice if it already has length n.
// Returns an error if the slice has a non-zero length that differs from n.
func expandSlice(n int, slice []float64, fillValue float64) ([]float64, error) {
	if len(slice) == n {
		return slice, nil
	}
	if len(slice) == 0 {
		result := make([]float64, n)
		for i := range result {
			result[i] = fillValue
		}
		return result, nil
	}
	return nil, newErrorMsg("expandSlice", "inconsistent slice length")
}
