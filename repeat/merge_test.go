package repeat

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func fwd(offs ...int) []Coord {
	occ := make([]Coord, len(offs))
	for i, o := range offs {
		occ[i] = Coord{JoinedOff: o, Strand: Forward}
	}
	return occ
}

func TestMergeContainedDropsNestedOccurrences(t *testing.T) {
	// The short repeat's occurrences all sit inside spans of the long one:
	// the covering group keeps its two maximal occurrences, the nested
	// group disappears entirely.
	groups := []Group{
		{Seq: "ACGTACGT", Occurrences: fwd(0, 8)},
		{Seq: "ACGT", Occurrences: fwd(0, 4, 8, 12)},
	}
	merged := MergeContained(groups, nil)
	require.Len(t, merged, 1)
	expect.EQ(t, merged[0].Seq, "ACGTACGT")
	expect.EQ(t, merged[0].Occurrences, fwd(0, 8))
}

func TestMergeContainedKeepsOverlapping(t *testing.T) {
	// Overlap without containment removes nothing.
	groups := []Group{
		{Seq: "ACGTAC", Occurrences: fwd(0)},
		{Seq: "GTACGT", Occurrences: fwd(2)},
	}
	merged := MergeContained(groups, nil)
	require.Len(t, merged, 2)
	expect.EQ(t, merged[0].Occurrences, fwd(0))
	expect.EQ(t, merged[1].Occurrences, fwd(2))
}

func TestMergeContainedEqualIntervals(t *testing.T) {
	// Two groups with an identical span at the same locus: exactly one copy
	// survives, owned by the group that sorts first, and the outcome is the
	// same on every run.
	mk := func() []Group {
		return []Group{
			{Seq: "AAAA", Occurrences: fwd(10)},
			{Seq: "AAAA", Occurrences: fwd(10, 20)},
		}
	}
	first := MergeContained(mk(), nil)
	for i := 0; i < 10; i++ {
		expect.EQ(t, MergeContained(mk(), nil), first)
	}
	total := 0
	for _, g := range first {
		total += len(g.Occurrences)
	}
	expect.EQ(t, total, 2)
}

func TestMergeContainedLastGroupSurvives(t *testing.T) {
	// A group whose single range sorts last must still be rebuilt.
	groups := []Group{
		{Seq: "ACGTACGTAC", Occurrences: fwd(0)},
		{Seq: "TTTT", Occurrences: fwd(20)},
	}
	merged := MergeContained(groups, nil)
	require.Len(t, merged, 2)
	expect.EQ(t, merged[1].Seq, "TTTT")
	expect.EQ(t, merged[1].Occurrences, fwd(20))
}

func TestMergeContainedIdempotent(t *testing.T) {
	groups := []Group{
		{Seq: "ACGTACGT", Occurrences: fwd(0, 8, 30)},
		{Seq: "ACGT", Occurrences: fwd(0, 4, 8, 12, 50)},
		{Seq: "GGGGGG", Occurrences: fwd(60, 100)},
	}
	once := MergeContained(groups, nil)
	twice := MergeContained(once, nil)
	expect.EQ(t, twice, once)
}

func TestMergeContainedStats(t *testing.T) {
	groups := []Group{
		{Seq: "ACGTACGT", Occurrences: fwd(0)},
		{Seq: "ACGT", Occurrences: fwd(0, 4)},
	}
	var stats Stats
	merged := MergeContained(groups, &stats)
	require.Len(t, merged, 1)
	expect.EQ(t, stats.AbsorbedRanges, 2)
}

func TestMergeContainedEmpty(t *testing.T) {
	expect.EQ(t, len(MergeContained(nil, nil)), 0)
	expect.EQ(t, len(MergeContained([]Group{}, nil)), 0)
}
