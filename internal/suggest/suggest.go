// Package suggest computes "did you mean" candidates for unknown attribute
// and class idents, adapted from the teacher's internal/levenshtein helper.
package suggest

import (
	"slices"

	"github.com/agnivade/levenshtein"
)

// maxDistance bounds how different a candidate may be from the query
// before it's no longer worth suggesting.
const maxDistance = 4

// Closest returns the known idents nearest to query by edit distance,
// sorted lexically, or nil if nothing is within maxDistance.
func Closest(query string, candidates []string) []string {
	best := maxDistance + 1
	var out []string
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(query, c)
		switch {
		case d > maxDistance:
			continue
		case d < best:
			out = []string{c}
			best = d
		case d == best:
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
