package catalog

// NoSelection is the sentinel index used when the visible set is empty.
const NoSelection = -1

// Selection transitions are pure functions of (index, n). Every result
// is clamped into [0, n-1] for non-empty sets, so a caller can never be
// left pointing outside the visible set.

// Next moves the selection one step forward
func Next(index, n int) int {
	return ClampSelection(index+1, n)
}

// Prev moves the selection one step back
func Prev(index, n int) int {
	return ClampSelection(index-1, n)
}

// NextRow moves the selection one grid row forward
func NextRow(index, columns, n int) int {
	if columns < 1 {
		columns = 1
	}
	return ClampSelection(index+columns, n)
}

// PrevRow moves the selection one grid row back
func PrevRow(index, columns, n int) int {
	if columns < 1 {
		columns = 1
	}
	return ClampSelection(index-columns, n)
}

// ClampSelection forces an index into range for a visible set of size n.
// Call it whenever the visible set changes size.
func ClampSelection(index, n int) int {
	if n <= 0 {
		return NoSelection
	}
	if index < 0 {
		return 0
	}
	if index > n-1 {
		return n - 1
	}
	return index
}
