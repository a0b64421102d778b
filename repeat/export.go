package repeat

import (
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	gunsafe "github.com/grailbio/base/unsafe"
)

const (
	// outputWidth is the line width of the repeat-sequence artifact.
	outputWidth = 60
	// coordsPerLine is the number of coordinate tokens per line in the
	// repeat-position artifact.
	coordsPerLine = 10
)

// WriteSequence writes the repeat-sequence artifact: a single ">rep" name
// line followed by every representative sequence back-to-back, wrapped at
// outputWidth columns. The wrap position carries across group boundaries;
// the cumulative offsets in the position artifact address this concatenated
// space.
func WriteSequence(w io.Writer, groups []Group) error {
	write := func(ss ...string) error {
		for _, s := range ss {
			if _, err := w.Write(gunsafe.StringToBytes(s)); err != nil {
				return errors.E(err, "write repeat sequence")
			}
		}
		return nil
	}
	if err := write(">rep\n"); err != nil {
		return err
	}
	skip := 0
	for i := range groups {
		seq := groups[i].Seq
		for len(seq) > 0 {
			n := outputWidth - skip
			if n > len(seq) {
				n = len(seq)
			}
			if err := write(seq[:n]); err != nil {
				return err
			}
			seq = seq[n:]
			skip += n
			if skip == outputWidth {
				if err := write("\n"); err != nil {
					return err
				}
				skip = 0
			}
		}
	}
	if skip > 0 {
		return write("\n")
	}
	return nil
}

// WritePositions writes the repeat-position artifact. Each group gets a
// header line
//
//	>rpt_<i>*0	rep	<cumulative offset>	<seq length>	<occurrence count>	0
//
// followed by its occurrences as name:pos:strand tokens, space-separated,
// coordsPerLine per line, in occurrence order. An occurrence whose joined
// offset cannot be mapped back to a sequence is skipped with a diagnostic;
// given a well-formed fragment table this does not happen.
func WritePositions(w io.Writer, groups []Group, frags *FragmentIndex) error {
	accPos := 0
	for i := range groups {
		g := &groups[i]
		_, err := fmt.Fprintf(w, ">rpt_%d*0\trep\t%d\t%d\t%d\t0\n",
			i, accPos, len(g.Seq), len(g.Occurrences))
		if err != nil {
			return errors.E(err, "write repeat positions")
		}
		accPos += len(g.Seq)

		col := 0
		for _, occ := range g.Occurrences {
			pos := occ.JoinedOff
			if occ.Strand == Reverse {
				// The fragment table addresses the forward text.
				pos = frags.TextLen() - occ.JoinedOff - len(g.Seq)
			}
			name, posInSeq, ok := frags.GenomeCoord(pos)
			if !ok {
				log.Error.Printf("rpt_%d: occurrence at joined offset %d is unmappable, skipped", i, occ.JoinedOff)
				continue
			}
			if col > 0 {
				sep := " "
				if col%coordsPerLine == 0 {
					sep = "\n"
				}
				if _, err := io.WriteString(w, sep); err != nil {
					return errors.E(err, "write repeat positions")
				}
			}
			if _, err := fmt.Fprintf(w, "%s:%d:%c", name, posInSeq, occ.Strand.Char()); err != nil {
				return errors.E(err, "write repeat positions")
			}
			col++
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return errors.E(err, "write repeat positions")
		}
	}
	return nil
}

// WriteRangeDump writes the per-range diagnostic artifact: for every
// occurrence of every group, the joined-text interval, the representative
// sequence, the interval and sequence in reverse-complement coordinates,
// and the owning group id.
func WriteRangeDump(w io.Writer, groups []Group, textLen int) error {
	tw := tsv.NewWriter(w)
	n := 0
	for id := range groups {
		g := &groups[id]
		for _, occ := range g.Occurrences {
			start := occ.JoinedOff
			end := start + len(g.Seq)
			rcStart := textLen - end
			rcEnd := rcStart + len(g.Seq)
			tw.WriteString("CP " + strconv.Itoa(n))
			tw.WriteString(strconv.Itoa(start))
			tw.WriteString(strconv.Itoa(end))
			tw.WriteString(g.Seq)
			tw.WriteString(strconv.Itoa(rcStart))
			tw.WriteString(strconv.Itoa(rcEnd))
			tw.WriteString(reverseComplementASCII(g.Seq))
			tw.WriteString(strconv.Itoa(id))
			if err := tw.EndLine(); err != nil {
				return errors.E(err, "write range dump")
			}
			n++
		}
	}
	return tw.Flush()
}

// WriteAlternates writes the per-group alternate-sequence diagnostic
// artifact: the representative sequence of every non-empty group followed
// by each representative merged into it.
func WriteAlternates(w io.Writer, groups []Group) error {
	tw := tsv.NewWriter(w)
	for id := range groups {
		g := &groups[id]
		if g.Empty() {
			continue
		}
		tw.WriteString("CP " + strconv.Itoa(id))
		tw.WriteString(g.Seq)
		for _, alt := range g.AltSeqs {
			tw.WriteString(alt)
		}
		if err := tw.EndLine(); err != nil {
			return errors.E(err, "write alternates dump")
		}
	}
	return tw.Flush()
}
