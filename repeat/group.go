package repeat

// Strand is the orientation of an occurrence.
type Strand uint8

const (
	// Forward means the occurrence was found in the forward joined text.
	Forward Strand = iota
	// Reverse means the occurrence was found in the reverse-complement
	// addressing space.
	Reverse
)

// Char returns the strand symbol used in the position artifact.
func (s Strand) Char() byte {
	if s == Forward {
		return '+'
	}
	return '-'
}

// Coord is a single repeat occurrence: an offset in the joined text plus the
// strand of the scan that found it. A Coord belongs to exactly one group
// once merging is done.
type Coord struct {
	JoinedOff int
	Strand    Strand
}

// Group is one repeat family: a representative sequence and every location
// an occurrence of it (or, after edit-distance grouping, of a near-identical
// variant) was found.
//
// INVARIANT: a non-empty group has at least one occurrence, and Occurrences
// is sorted ascending by JoinedOff.
type Group struct {
	// Seq is the representative sequence, decoded to ASCII.
	Seq string
	// Occurrences lists every location of the family.
	Occurrences []Coord
	// AltSeqs holds representative sequences of groups that were folded into
	// this one by the edit-distance pass.
	AltSeqs []string

	empty bool
}

// Empty reports whether the group is a tombstone pending compaction.
func (g *Group) Empty() bool { return g.empty }

// setEmpty marks the group as merged away. Its occurrences and alternates
// are released.
func (g *Group) setEmpty() {
	g.empty = true
	g.Occurrences = nil
	g.AltSeqs = nil
}

// absorb folds o into g: occurrences are appended (offset order restored by
// the caller when required) and o's representative becomes an alternate of
// g.
func (g *Group) absorb(o *Group) {
	g.Occurrences = append(g.Occurrences, o.Occurrences...)
	g.AltSeqs = append(g.AltSeqs, o.Seq)
	g.AltSeqs = append(g.AltSeqs, o.AltSeqs...)
}

// Store is an append-only collection of raw repeat groups in scanner
// emission order. No identity or containment checks happen here; nested and
// redundant candidates are expected and resolved by MergeContained.
type Store struct {
	groups []Group
}

// Add appends a raw group.
func (s *Store) Add(seq string, occurrences []Coord) {
	s.groups = append(s.groups, Group{Seq: seq, Occurrences: occurrences})
}

// Groups returns the stored groups. The store retains ownership.
func (s *Store) Groups() []Group { return s.groups }

// Len returns the number of stored groups.
func (s *Store) Len() int { return len(s.groups) }
