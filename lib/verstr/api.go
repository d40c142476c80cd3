// Package verstr orders strings containing version numbers, comparing runs of
// digits by numeric value.
package verstr

import (
	"sort"
)

// Less returns true if left sorts before right. Runs of digits are compared
// numerically, so "6.9" sorts before "6.10".
func Less(left, right string) bool {
	return less(left, right)
}

// Sort sorts list in place, using Less.
func Sort(list []string) {
	sort.Slice(list, func(i, j int) bool {
		return less(list[i], list[j])
	})
}
