package cqknp

// Select returns the item positions addressed by (idx, start, stop) on a
// problem with n items.
//
// start is raised to 0 and stop lowered to n. With a nil idx the positions
// are start, start+1, ..., stop-1. Otherwise idx must be ascending: its
// entries below start are skipped and the scan ends at the first entry not
// below stop.
//
// The k-th returned position is paired with the k-th value of the slice
// given to the Chg* or KNP* method.
func Select(n int, idx []int, start, stop int) []int {
	if start < 0 {
		start = 0
	}
	if stop > n {
		stop = n
	}
	if start >= stop {
		return nil
	}

	if idx == nil {
		pos := make([]int, 0, stop-start)
		for i := start; i < stop; i++ {
			pos = append(pos, i)
		}
		return pos
	}

	k := 0
	for k < len(idx) && idx[k] < start {
		k++
	}
	var pos []int
	for ; k < len(idx) && idx[k] < stop; k++ {
		pos = append(pos, idx[k])
	}
	return pos
}

// Positions is Select plus the length check every bulk method needs: it
// fails with a *UsageError when buf cannot hold one value per position.
func Positions(op string, n int, bufLen int, idx []int, start, stop int) ([]int, error) {
	pos := Select(n, idx, start, stop)
	if bufLen < len(pos) {
		return nil, Usagef(op, "%d values for %d positions", bufLen, len(pos))
	}
	return pos, nil
}

// CheckItem fails with a *UsageError unless 0 <= i < n.
func CheckItem(op string, n, i int) error {
	if i < 0 || i >= n {
		return Usagef(op, "item %d out of range [0, %d)", i, n)
	}
	return nil
}
