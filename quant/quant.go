// Package quant holds the transcript-quantification bookkeeping: transcript
// registration, compatibility-class counts, and a fixed-round EM estimate of
// per-transcript abundances. It is deliberately simple; classes are keyed by
// the sorted transcript-id list so that estimation and reporting are
// deterministic.
package quant

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Transcript is one registered transcript.
type Transcript struct {
	Name string
	Len  uint64
}

// emRounds is the number of EM iterations run by Calculate.
const emRounds = 10

// Quant accumulates compatibility classes and estimates abundances.
type Quant struct {
	byName      map[string]int
	transcripts []Transcript

	// classKeys keeps class insertion order; classes maps a key (sorted
	// transcript ids joined by ',') to its member ids and read count.
	classKeys []string
	classes   map[string]*compatClass

	abundance []float64
}

type compatClass struct {
	ids   []int
	count uint64
}

// New returns an empty Quant.
func New() *Quant {
	return &Quant{
		byName:  map[string]int{},
		classes: map[string]*compatClass{},
	}
}

// AddTranscript registers a transcript and returns its id. Re-registering a
// name keeps the first id and, when the stored length is zero, adopts the
// given length.
func (q *Quant) AddTranscript(name string, length uint64) int {
	if id, ok := q.byName[name]; ok {
		if q.transcripts[id].Len == 0 {
			q.transcripts[id].Len = length
		}
		return id
	}
	id := len(q.transcripts)
	q.byName[name] = id
	q.transcripts = append(q.transcripts, Transcript{Name: name, Len: length})
	return id
}

// AddClass adds count reads compatible with exactly the named transcripts.
// Unknown transcripts are registered with zero length.
func (q *Quant) AddClass(names []string, count uint64) {
	if len(names) == 0 || count == 0 {
		return
	}
	ids := make([]int, 0, len(names))
	for _, name := range names {
		ids = append(ids, q.AddTranscript(name, 0))
	}
	sort.Ints(ids)
	n := 1
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[n-1] {
			ids[n] = ids[i]
			n++
		}
	}
	ids = ids[:n]

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	key := strings.Join(parts, ",")
	if c, ok := q.classes[key]; ok {
		c.count += count
		return
	}
	q.classes[key] = &compatClass{ids: ids, count: count}
	q.classKeys = append(q.classKeys, key)
}

// ReadClasses parses a compatibility-class dump: one class per line,
//
//	<read count>	<name>[,<name>...]
//
// Blank lines and lines starting with '#' are skipped.
func (q *Quant) ReadClasses(r io.Reader) error {
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return errors.Errorf("line %d: want 2 tab-separated fields, got %d", lineno, len(fields))
		}
		count, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "line %d: bad read count %q", lineno, fields[0])
		}
		q.AddClass(strings.Split(fields[1], ","), count)
	}
	return errors.Wrap(sc.Err(), "read compatibility classes")
}

// Calculate runs the EM rounds and fills the abundance estimates. Safe to
// call again after adding more classes.
func (q *Quant) Calculate() {
	nT := len(q.transcripts)
	if nT == 0 {
		return
	}
	a := make([]float64, nT)
	for i := range a {
		a[i] = 1 / float64(nT)
	}
	n := make([]float64, nT)
	for round := 0; round < emRounds; round++ {
		for i := range n {
			n[i] = 0
		}
		total := 0.0
		for _, key := range q.classKeys {
			c := q.classes[key]
			denom := 0.0
			for _, id := range c.ids {
				denom += a[id]
			}
			if denom == 0 {
				continue
			}
			for _, id := range c.ids {
				n[id] += float64(c.count) * a[id] / denom
			}
			total += float64(c.count)
		}
		if total == 0 {
			break
		}
		for i := range a {
			a[i] = n[i] / total
		}
	}
	q.abundance = a
}

// Abundance returns the estimated abundance of the named transcript.
//
// REQUIRES: Calculate has been called.
func (q *Quant) Abundance(name string) (float64, bool) {
	id, ok := q.byName[name]
	if !ok || q.abundance == nil {
		return 0, false
	}
	return q.abundance[id], true
}

// NumTranscripts returns the number of registered transcripts.
func (q *Quant) NumTranscripts() int { return len(q.transcripts) }

// Report writes one tab-separated row per transcript, in registration
// order: name, length, abundance.
func (q *Quant) Report(w io.Writer) error {
	tw := tsv.NewWriter(w)
	for id, tr := range q.transcripts {
		tw.WriteString(tr.Name)
		tw.WriteUint32(uint32(tr.Len))
		ab := 0.0
		if q.abundance != nil {
			ab = q.abundance[id]
		}
		tw.WriteString(strconv.FormatFloat(ab, 'f', 6, 64))
		if err := tw.EndLine(); err != nil {
			return errors.Wrap(err, "write quant report")
		}
	}
	return errors.Wrap(tw.Flush(), "write quant report")
}

// ShowInfo logs a one-line summary.
func (q *Quant) ShowInfo() {
	reads := uint64(0)
	for _, c := range q.classes {
		reads += c.count
	}
	log.Printf("quant: %d transcripts, %d compatibility classes, %d reads",
		len(q.transcripts), len(q.classes), reads)
}
