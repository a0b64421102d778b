package repeat

import (
	"bytes"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The input sequence ACGTACGTNNACGTACGT joins into a 16-base text with two
// fragments split at the N gap.
func testGapLayout(t *testing.T) (EncodedText, *FragmentIndex) {
	t.Helper()
	text := NewEncodedText("ACGTACGTACGTACGT")
	descs := []FragmentDescriptor{
		{Start: 0, Length: 8, StartInSeq: 0, First: true},
		{Start: 8, Length: 8, StartInSeq: 10, First: false},
	}
	idx, err := NewFragmentIndex(descs, []string{"chr1"}, text.Len())
	require.NoError(t, err)
	return text, idx
}

func TestBuildAcrossGap(t *testing.T) {
	text, idx := testGapLayout(t)
	b, err := NewBuilder(text, idx, Forward, Opts{MinLength: 4, MinCount: 2, MaxEdit: 1, Grouping: true})
	require.NoError(t, err)
	require.NoError(t, b.Build(NewSliceStream(testSuffixPositions(text))))

	groups := b.Groups()
	require.Len(t, groups, 1)
	expect.EQ(t, groups[0].Seq, "ACGT")

	// No occurrence may span the join at offset 8, and every occurrence
	// must map back to a genomic coordinate on the correct side of the gap.
	var positions []int
	for _, occ := range groups[0].Occurrences {
		assert.False(t, occ.JoinedOff < 8 && occ.JoinedOff+len(groups[0].Seq) > 8,
			"occurrence at %d spans the sequence join", occ.JoinedOff)
		_, pos, ok := idx.GenomeCoord(occ.JoinedOff)
		require.True(t, ok)
		positions = append(positions, pos)
	}
	expect.EQ(t, positions, []int{0, 4, 10, 14})
	expect.EQ(t, b.Stats().FinalGroups, 1)
}

func TestBuildReverseStrand(t *testing.T) {
	text, idx := testGapLayout(t)
	rc := ReverseComplement(text)
	b, err := NewBuilder(rc, idx, Reverse, Opts{MinLength: 4, MinCount: 2})
	require.NoError(t, err)
	require.NoError(t, b.Build(NewSliceStream(testSuffixPositions(rc))))

	groups := b.Groups()
	require.Len(t, groups, 1)
	expect.EQ(t, groups[0].Seq, "ACGT")
	for _, occ := range groups[0].Occurrences {
		expect.EQ(t, occ.Strand, Reverse)
	}
}

func TestBuildDeterminism(t *testing.T) {
	run := func() []byte {
		text := NewEncodedText("ACGTACGTACGTACGTTTGCATTGCATTGCAACGTACGT")
		idx := testSingleFragmentIndex(t, text)
		b, err := NewBuilder(text, idx, Forward, Opts{MinLength: 4, MinCount: 2, MaxEdit: 2, Grouping: true})
		require.NoError(t, err)
		require.NoError(t, b.Build(NewSliceStream(testSuffixPositions(text))))

		var buf bytes.Buffer
		require.NoError(t, WriteSequence(&buf, b.Groups()))
		require.NoError(t, WritePositions(&buf, b.Groups(), idx))
		require.NoError(t, WriteRangeDump(&buf, b.Groups(), text.Len()))
		require.NoError(t, WriteAlternates(&buf, b.Groups()))
		return buf.Bytes()
	}
	first := run()
	for i := 0; i < 5; i++ {
		expect.EQ(t, run(), first)
	}
}

func TestBuildPreconditions(t *testing.T) {
	text, idx := testGapLayout(t)
	_, err := NewBuilder(NewEncodedText(""), idx, Forward, DefaultOpts)
	assert.Error(t, err)

	_, err = NewBuilder(NewEncodedText("ACGT"), idx, Forward, DefaultOpts)
	assert.Error(t, err)

	b, err := NewBuilder(text, idx, Forward, DefaultOpts)
	require.NoError(t, err)
	assert.Error(t, b.Build(NewSliceStream([]int{0, 1, 2})))
}
