package repeat

import (
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// PositionStream yields suffix-array positions in ascending suffix order.
// A well-formed stream yields exactly Text.Len()+1 values, a permutation of
// [0, Text.Len()]; it is produced by an external suffix-array builder.
type PositionStream interface {
	// Next returns the next suffix position. ok is false once the stream is
	// exhausted.
	Next() (pos int, ok bool)
}

// SliceStream adapts a precomputed suffix array to a PositionStream.
type SliceStream struct {
	positions []int
	next      int
}

// NewSliceStream returns a stream that yields the given positions in order.
func NewSliceStream(positions []int) *SliceStream {
	return &SliceStream{positions: positions}
}

// Next implements PositionStream.
func (s *SliceStream) Next() (int, bool) {
	if s.next >= len(s.positions) {
		return 0, false
	}
	p := s.positions[s.next]
	s.next++
	return p, true
}

// Scanner detects repeat seeds in a single pass over a suffix-position
// stream. Consecutive suffixes sharing a prefix of at least Opts.MinLength
// bases accumulate into a cluster; when the run ends, a cluster with at
// least Opts.MinCount members is emitted as a raw repeat group whose
// representative sequence is the cluster-wide guaranteed shared prefix.
//
// The LCP between two suffixes is capped at the end of each suffix's
// enclosing fragment, so no reported repeat straddles a sequence join.
type Scanner struct {
	text   Text
	frags  *FragmentIndex
	opts   Opts
	strand Strand
}

// NewScanner returns a scanner over text. For a Reverse scan, text must be
// the reverse complement of the joined text the fragment index was built
// over; positions are mirrored internally when the index is consulted.
func NewScanner(text Text, frags *FragmentIndex, strand Strand, opts Opts) *Scanner {
	return &Scanner{text: text, frags: frags, opts: opts, strand: strand}
}

// progressInterval is how often Scan logs streamed-position progress.
const progressInterval = 1 << 20

// Scan consumes the whole stream and appends raw repeat groups to store.
// It fails on a malformed stream: too short, too long, or containing an
// out-of-range position.
func (sc *Scanner) Scan(stream PositionStream, store *Store, stats *Stats) error {
	var (
		n       = sc.text.Len()
		cluster []Coord
		minLcp  = n
		prev    = 0
		count   = 0
	)
	for {
		cur, ok := stream.Next()
		if !ok {
			break
		}
		count++
		if count%progressInterval == 0 {
			log.Printf("scanned %d suffix positions", count)
		}
		if cur < 0 || cur > n {
			return errors.E("suffix stream: position", cur, "out of range [0,", n, "]")
		}
		if count > n+1 {
			return errors.E("suffix stream: more than", n+1, "positions")
		}

		if len(cluster) == 0 {
			cluster = append(cluster, Coord{JoinedOff: cur, Strand: sc.strand})
			prev = cur
			continue
		}
		lcp := sc.boundedLCP(prev, cur)
		if lcp >= sc.opts.MinLength {
			cluster = append(cluster, Coord{JoinedOff: cur, Strand: sc.strand})
			if lcp < minLcp {
				minLcp = lcp
			}
		} else {
			sc.flush(cluster, minLcp, store, stats)
			cluster = append(cluster[:0], Coord{JoinedOff: cur, Strand: sc.strand})
			minLcp = n
		}
		prev = cur
	}
	if count != n+1 {
		return errors.E("suffix stream: got", count, "positions, want", n+1)
	}
	sc.flush(cluster, minLcp, store, stats)
	if stats != nil {
		stats.Positions += count
	}
	return nil
}

// flush closes a cluster, emitting it as a raw group when it is large
// enough. The representative is read from the last cluster member, whose
// suffix is lexicographically greatest and therefore covers the cluster-wide
// minimum LCP.
func (sc *Scanner) flush(cluster []Coord, minLcp int, store *Store, stats *Stats) {
	if len(cluster) < sc.opts.MinCount {
		return
	}
	last := cluster[len(cluster)-1].JoinedOff
	occ := make([]Coord, len(cluster))
	copy(occ, cluster)
	sort.Slice(occ, func(i, j int) bool { return occ[i].JoinedOff < occ[j].JoinedOff })
	store.Add(DecodeRange(sc.text, last, minLcp), occ)
	if stats != nil {
		stats.RawGroups++
		stats.RawOccurrences += len(occ)
	}
}

// boundedLCP extends the common prefix of the suffixes at a and b while both
// stay inside their own enclosing fragments. Positions at the very end of
// the text (the empty suffix) yield 0.
func (sc *Scanner) boundedLCP(a, b int) int {
	n := sc.text.Len()
	if a >= n || b >= n {
		return 0
	}
	var aEnd, bEnd int
	if sc.strand == Forward {
		aEnd = sc.frags.FragmentEnd(a)
		bEnd = sc.frags.FragmentEnd(b)
	} else {
		aEnd = sc.frags.reverseFragmentEnd(a)
		bEnd = sc.frags.reverseFragmentEnd(b)
	}
	if aEnd < 0 || bEnd < 0 {
		log.Error.Printf("boundedLCP: unmapped position (%d, %d)", a, b)
		return 0
	}
	k := 0
	for a+k < aEnd && b+k < bEnd && sc.text.Base(a+k) == sc.text.Base(b+k) {
		k++
	}
	return k
}
