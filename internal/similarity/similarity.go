// Package similarity scores how close two text payloads are, used to drop
// near-duplicate clipboard entries (re-copies with a trailing character
// added, selection drift, etc.).
package similarity

// Score returns 1 - editDistance(a,b)/max(len(a),len(b)) over runes.
// 1.0 means identical, 0.0 means nothing in common. Two equal empty
// strings score 1.0.
func Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(ra, rb))/float64(longest)
}

// Distance is the Levenshtein edit distance (unit-cost insert, delete,
// substitute) between two rune slices. Memory is two rolling rows of
// min(len(a),len(b))+1 ints, not a full matrix.
func Distance(a, b []rune) int {
	// Keep b as the shorter side so the rows stay small.
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
