package repeat

import (
	"sort"

	"github.com/grailbio/base/log"
)

// repeatRange is one occurrence flattened to an interval of the joined
// text. Transient: built, swept and discarded inside MergeContained.
type repeatRange struct {
	start, end int // [start, end)
	ownerID    int // index of the owning group
	strand     Strand
	removed    bool
}

// MergeContained removes occurrences whose span is fully contained in
// another occurrence's span and rebuilds deduplicated groups.
//
// Every (group, occurrence) pair becomes an interval
// [occurrence, occurrence+len(group.Seq)). Intervals are swept in
// (end descending, start ascending) order, so a covering range always
// precedes the ranges it absorbs; survivors are then regrouped per owning
// group. Both sorts use total orders so that identical input always yields
// identical groupings.
//
// A group whose every range was absorbed disappears. The result is a new
// slice; the input groups are not modified.
func MergeContained(groups []Group, stats *Stats) []Group {
	nRange := 0
	for i := range groups {
		nRange += len(groups[i].Occurrences)
	}
	if nRange == 0 {
		return nil
	}

	ranges := make([]repeatRange, 0, nRange)
	for i := range groups {
		g := &groups[i]
		for _, occ := range g.Occurrences {
			ranges = append(ranges, repeatRange{
				start:   occ.JoinedOff,
				end:     occ.JoinedOff + len(g.Seq),
				ownerID: i,
				strand:  occ.Strand,
			})
		}
	}

	// Larger/earlier ranges first: any range contained in another sorts
	// after it.
	sort.Slice(ranges, func(i, j int) bool {
		a, b := &ranges[i], &ranges[j]
		if a.end != b.end {
			return a.end > b.end
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.ownerID < b.ownerID
	})

	absorbed := 0
	for i := 0; i < len(ranges); {
		j := i + 1
		for ; j < len(ranges); j++ {
			if !(ranges[j].start >= ranges[i].start && ranges[j].end <= ranges[i].end) {
				break
			}
			ranges[j].removed = true
			absorbed++
		}
		i = j
	}
	log.Debug.Printf("containment merge: %d of %d ranges absorbed", absorbed, nRange)
	if stats != nil {
		stats.AbsorbedRanges += absorbed
	}

	survivors := ranges[:0]
	for _, r := range ranges {
		if !r.removed {
			survivors = append(survivors, r)
		}
	}
	if len(survivors) == 0 {
		log.Panicf("containment merge: all %d ranges absorbed", nRange)
	}

	// Regroup per owning group, occurrences ascending by offset. Offsets are
	// distinct within a group, so (ownerID, start) is already total; end is
	// kept as a final key for safety.
	sort.Slice(survivors, func(i, j int) bool {
		a, b := &survivors[i], &survivors[j]
		if a.ownerID != b.ownerID {
			return a.ownerID < b.ownerID
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.end > b.end
	})

	var merged []Group
	for i := 0; i < len(survivors); {
		j := i
		owner := survivors[i].ownerID
		g := Group{Seq: groups[owner].Seq}
		for ; j < len(survivors) && survivors[j].ownerID == owner; j++ {
			g.Occurrences = append(g.Occurrences, Coord{
				JoinedOff: survivors[j].start,
				Strand:    survivors[j].strand,
			})
		}
		merged = append(merged, g)
		i = j
	}
	return merged
}
