package repeat

import (
	"github.com/grailbio/base/errors"
)

// FragmentDescriptor describes one contiguous block of the joined text, as
// produced by the sequence joiner. Start is the offset in the joined text,
// StartInSeq the offset of the block within its source sequence (gaps that
// were excised from the join push it past the previous block's end), and
// First marks the first block of each source sequence.
type FragmentDescriptor struct {
	Start      int
	Length     int
	StartInSeq int
	First      bool
}

// fragment is one row of the fragment table.
type fragment struct {
	start      int
	length     int
	startInSeq int
	seqID      int
	first      bool
}

func (f *fragment) contains(pos int) bool {
	return pos >= f.start && pos < f.start+f.length
}

// fragCacheSize is the number of recently located fragments kept by the
// index. Suffix positions arriving from the scanner are temporally
// clustered, so a handful of entries absorbs most queries.
const fragCacheSize = 8

// FragmentIndex maps joined-text positions back to source sequences.
// Read-only after construction.
type FragmentIndex struct {
	frags   []fragment // sorted by start; last entry is a zero-length sentinel
	names   []string   // one per source sequence, indexed by seqID
	textLen int

	cached  [fragCacheSize]int // fragment ids, most queries hit here
	nCached int
	victim  int // next cache slot to overwrite, round-robin
}

// NewFragmentIndex builds the fragment table. The descriptors must be
// sorted by Start, non-overlapping and contiguous (each block starts where
// the previous one ends); names holds one entry per source sequence, in
// order of the First flags.
func NewFragmentIndex(descs []FragmentDescriptor, names []string, textLen int) (*FragmentIndex, error) {
	if textLen <= 0 {
		return nil, errors.E("fragment index: empty text")
	}
	idx := &FragmentIndex{
		frags:   make([]fragment, 0, len(descs)+1),
		names:   names,
		textLen: textLen,
	}
	seqID := -1
	next := 0
	for i, d := range descs {
		if d.Length <= 0 {
			return nil, errors.E("fragment index: descriptor", i, "has non-positive length")
		}
		if d.Start != next {
			return nil, errors.E("fragment index: descriptor", i, "starts at", d.Start, "want", next)
		}
		if d.First {
			seqID++
		}
		if seqID < 0 {
			return nil, errors.E("fragment index: descriptor 0 does not start a sequence")
		}
		if seqID >= len(names) {
			return nil, errors.E("fragment index:", seqID+1, "sequences but", len(names), "names")
		}
		idx.frags = append(idx.frags, fragment{
			start:      d.Start,
			length:     d.Length,
			startInSeq: d.StartInSeq,
			seqID:      seqID,
			first:      d.First,
		})
		next = d.Start + d.Length
	}
	if next != textLen {
		return nil, errors.E("fragment index: descriptors cover", next, "bases, text has", textLen)
	}
	// Zero-length terminal fragment bounds searches.
	idx.frags = append(idx.frags, fragment{start: next, seqID: seqID})
	return idx, nil
}

// Locate returns the id of the fragment containing the joined position, or
// -1 if pos is past the end of the text.
func (idx *FragmentIndex) Locate(pos int) int {
	for i := 0; i < idx.nCached; i++ {
		if idx.frags[idx.cached[i]].contains(pos) {
			return idx.cached[i]
		}
	}

	top, bot := 0, len(idx.frags)-1
	for bot-top > 1 {
		mid := top + (bot-top)>>1
		if pos < idx.frags[mid].start {
			bot = mid
		} else {
			top = mid
		}
	}
	if !idx.frags[top].contains(pos) {
		return -1
	}
	if idx.nCached < fragCacheSize {
		idx.cached[idx.nCached] = top
		idx.nCached++
	} else {
		idx.cached[idx.victim] = top
		idx.victim = (idx.victim + 1) % fragCacheSize
	}
	return top
}

// GenomeCoord translates a joined position into a (sequence name, offset in
// sequence) pair. ok is false when the position cannot be resolved.
func (idx *FragmentIndex) GenomeCoord(pos int) (name string, posInSeq int, ok bool) {
	id := idx.Locate(pos)
	if id < 0 {
		return "", 0, false
	}
	f := &idx.frags[id]
	return idx.names[f.seqID], f.startInSeq + (pos - f.start), true
}

// FragmentEnd returns the end offset (exclusive) of the fragment containing
// pos, or -1 if pos cannot be resolved. The scanner uses it to stop LCP
// extension at sequence joins.
func (idx *FragmentIndex) FragmentEnd(pos int) int {
	id := idx.Locate(pos)
	if id < 0 {
		return -1
	}
	return idx.frags[id].start + idx.frags[id].length
}

// reverseFragmentEnd is FragmentEnd for a position in the reverse-complement
// addressing space. The fragment table is built over forward coordinates, so
// the position is mirrored first; the enclosing fragment then ends, in
// reverse coordinates, where it starts in forward ones.
func (idx *FragmentIndex) reverseFragmentEnd(pos int) int {
	id := idx.Locate(idx.textLen - pos - 1)
	if id < 0 {
		return -1
	}
	return idx.textLen - idx.frags[id].start
}

// TextLen returns the length of the joined text the index was built for.
func (idx *FragmentIndex) TextLen() int { return idx.textLen }

// NumFragments returns the number of fragments, excluding the terminal
// sentinel.
func (idx *FragmentIndex) NumFragments() int { return len(idx.frags) - 1 }
