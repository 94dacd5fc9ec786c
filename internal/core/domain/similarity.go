package domain

// Similarity computes a sequence-matching ratio between two strings:
// 2.0 times the number of matched characters over the combined length,
// in [0.0, 1.0]. 1.0 means identical (two empty strings are identical),
// 0.0 means no common characters.
//
// Matches are counted with the classic recursive longest-matching-block
// scheme: find the longest common contiguous run, then repeat on the
// unmatched pieces to its left and right. Comparison is rune-wise, so
// multi-byte characters count once. Total for all inputs; never fails.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	combined := len(ra) + len(rb)
	if combined == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedRunes(ra, rb)) / float64(combined)
}

// span is a pair of half-open windows, one into each string, still
// awaiting block matching.
type span struct {
	alo, ahi int
	blo, bhi int
}

// matchedRunes returns the total length of all matching blocks between
// ra and rb.
func matchedRunes(ra, rb []rune) int {
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	// Positions of every rune in rb, ascending.
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	stack := []span{{0, len(ra), 0, len(rb)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, size := longestMatch(ra, b2j, s)
		if size == 0 {
			continue
		}
		matched += size
		if s.alo < i && s.blo < j {
			stack = append(stack, span{s.alo, i, s.blo, j})
		}
		if i+size < s.ahi && j+size < s.bhi {
			stack = append(stack, span{i + size, s.ahi, j + size, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block of runes common to ra[s.alo:s.ahi]
// and the rb window indexed by b2j. Of equally long blocks it reports the
// one starting earliest in ra, then earliest in rb.
func longestMatch(ra []rune, b2j map[rune][]int, s span) (besti, bestj, bestsize int) {
	besti, bestj = s.alo, s.blo

	// lengths[j] is the length of the longest block ending at the
	// previous rune of ra and rb[j].
	lengths := make(map[int]int)
	for i := s.alo; i < s.ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[ra[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}
	return besti, bestj, bestsize
}
