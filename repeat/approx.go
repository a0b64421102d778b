package repeat

import (
	"sort"

	"github.com/grailbio/base/log"
)

// editDistance computes the Levenshtein distance between s1 and s2 with the
// classic dynamic program, keeping two rows of the matrix.
func editDistance(s1, s2 string) int {
	prev := make([]int, len(s2)+1)
	cur := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 0; i < len(s1); i++ {
		cur[0] = i + 1
		for j := 0; j < len(s2); j++ {
			sub := prev[j]
			if s1[i] != s2[j] {
				sub++
			}
			d := prev[j+1] + 1 // deletion
			if cur[j]+1 < d {
				d = cur[j] + 1 // insertion
			}
			if sub < d {
				d = sub
			}
			cur[j+1] = d
		}
		prev, cur = cur, prev
	}
	return prev[len(s2)]
}

// mergeable reports whether two representative sequences are close enough
// to consolidate.
func mergeable(s1, s2 string, maxEdit int) bool {
	return editDistance(s1, s2) <= maxEdit
}

// GroupByEdit consolidates groups whose representative sequences are within
// maxEdit of each other. For each non-empty group, in order, every later
// non-empty group within the threshold is folded into it: occurrences are
// appended, the absorbed representative becomes an alternate sequence, and
// the absorbed group turns into a tombstone. Tombstones are compacted away
// afterwards, preserving the relative order of survivors.
//
// Quadratic in the number of groups, which is orders of magnitude smaller
// than the text by the time this runs.
func GroupByEdit(groups []Group, maxEdit int, stats *Stats) []Group {
	if len(groups) == 0 {
		log.Printf("edit grouping: no groups")
		return groups
	}
	merged := 0
	for i := 0; i < len(groups)-1; i++ {
		if groups[i].Empty() {
			continue
		}
		for j := i + 1; j < len(groups); j++ {
			if groups[j].Empty() {
				continue
			}
			if mergeable(groups[i].Seq, groups[j].Seq, maxEdit) {
				groups[i].absorb(&groups[j])
				groups[j].setEmpty()
				merged++
			}
		}
	}

	out := groups[:0]
	for i := range groups {
		if !groups[i].Empty() {
			if len(groups[i].Occurrences) == 0 {
				log.Panicf("edit grouping: non-empty group %d has no occurrences", i)
			}
			occ := groups[i].Occurrences
			sort.Slice(occ, func(a, b int) bool {
				if occ[a].JoinedOff != occ[b].JoinedOff {
					return occ[a].JoinedOff < occ[b].JoinedOff
				}
				return occ[a].Strand < occ[b].Strand
			})
			out = append(out, groups[i])
		}
	}
	log.Printf("edit grouping: %d groups merged, %d remain", merged, len(out))
	if stats != nil {
		stats.MergedGroups += merged
	}
	return out
}
