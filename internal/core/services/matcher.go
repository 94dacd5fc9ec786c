package services

import (
	"strings"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// MatchThreshold is the minimum title-similarity ratio at which two
// records in the same bucket are considered the same event. The
// boundary is inclusive: a ratio of exactly 0.80 matches.
const MatchThreshold = 0.80

// Matcher decides which raw events denote the same real-world event.
//
// Records are only ever compared within a bucket of equal
// (date, normalised venue): the domain assumption is that one event
// does not move venue or date between sources, and bucketing bounds
// the pairwise comparison cost.
type Matcher struct{}

// NewMatcher creates a bucketing matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// bucketKey identifies one comparison bucket.
type bucketKey struct {
	date  string
	venue string
}

// Group partitions the given raw events into match-groups. Each group
// holds the records of one real-world event, in first-seen order, and
// is destined to merge into exactly one canonical event. Grouping is
// transitive within a bucket: if A matches B and B matches C, all
// three group together even when A and C fall below the threshold.
func (m *Matcher) Group(events []domain.RawEvent) [][]domain.RawEvent {
	titles := make([]string, len(events))
	for i, ev := range events {
		titles[i] = domain.Normalise(ev.Title)
	}

	// 1. Bucket by (date, normalised venue), keeping first-seen order
	// of both buckets and members so the output is deterministic.
	buckets := make(map[bucketKey][]int)
	var order []bucketKey
	for i, ev := range events {
		key := bucketKey{date: ev.Date, venue: domain.Normalise(ev.Venue)}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	// 2. Pairwise-match within each bucket and take the transitive
	// closure with a union-find over bucket positions.
	var groups [][]domain.RawEvent
	for _, key := range order {
		members := buckets[key]
		uf := newUnionFind(len(members))
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				if titlesMatch(titles[members[a]], titles[members[b]]) {
					uf.union(a, b)
				}
			}
		}

		// 3. Emit connected components, members in first-seen order.
		componentOf := make(map[int]int)
		var component [][]domain.RawEvent
		for pos, idx := range members {
			root := uf.find(pos)
			g, seen := componentOf[root]
			if !seen {
				g = len(component)
				componentOf[root] = g
				component = append(component, nil)
			}
			component[g] = append(component[g], events[idx])
		}
		groups = append(groups, component...)
	}
	return groups
}

// titlesMatch reports whether two normalised titles denote the same
// event: either the similarity ratio reaches the threshold, or one
// title contains the other whole (a bare title against the same title
// with a subtitle bolted on, the most common cross-source variation).
func titlesMatch(a, b string) bool {
	if a == b {
		return true
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}
	return domain.Similarity(a, b) >= MatchThreshold
}

// unionFind is a plain disjoint-set over [0, n) with path halving.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
