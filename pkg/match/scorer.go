package match

// Scorer computes a similarity score between two already-normalized strings.
// Implementations must be symmetric and return a value in [0, 1], with 1
// meaning equal. The character-level SequenceScorer is the default; swapping
// in a phonetic or token-set implementation does not touch the matching
// decision logic.
type Scorer interface {
	Similarity(a, b string) float64
}

// SequenceScorer scores strings by their longest matching character
// subsequences: twice the total number of matched characters divided by the
// combined length (the classic Ratcliff/Obershelp gestalt ratio).
type SequenceScorer struct{}

// Similarity implements Scorer.
func (SequenceScorer) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	m := matchingRunes(ra, rb)
	return 2 * float64(m) / float64(len(ra)+len(rb))
}

// matchingRunes counts matched characters by finding the longest common
// substring and recursing on the unmatched pieces to either side.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring returns the start indices and length of the longest
// run of runes common to a and b. Earlier occurrences win ties, keeping the
// ratio deterministic.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
		clear(cur)
	}
	return ai, bi, size
}
