package repeat

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Builder runs the whole repeat-detection pipeline over one addressing
// space: streamed suffix scan, containment merge, then optional
// edit-distance grouping. Construct one Builder per strand; forward and
// reverse results are kept separate.
type Builder struct {
	text   Text
	frags  *FragmentIndex
	strand Strand
	opts   Opts

	store  Store
	groups []Group
	stats  Stats
	built  bool
}

// NewBuilder returns a builder over text. frags must be built over the
// forward joined text; for a Reverse builder, text is the reverse
// complement of that joined text.
func NewBuilder(text Text, frags *FragmentIndex, strand Strand, opts Opts) (*Builder, error) {
	if text.Len() == 0 {
		return nil, errors.E("repeat builder: empty text")
	}
	if text.Len() != frags.TextLen() {
		return nil, errors.E("repeat builder: text length", text.Len(),
			"does not match fragment table", frags.TextLen())
	}
	return &Builder{text: text, frags: frags, strand: strand, opts: opts}, nil
}

// Build consumes the suffix-position stream and produces the final groups.
// It must be called exactly once.
func (b *Builder) Build(stream PositionStream) error {
	if b.built {
		log.Panic("repeat builder: Build called twice")
	}
	b.built = true

	sc := NewScanner(b.text, b.frags, b.strand, b.opts)
	if err := sc.Scan(stream, &b.store, &b.stats); err != nil {
		return err
	}
	log.Printf("scan done: %d raw groups, %d occurrences", b.stats.RawGroups, b.stats.RawOccurrences)

	b.groups = MergeContained(b.store.Groups(), &b.stats)
	log.Printf("containment merge done: %d groups", len(b.groups))

	if b.opts.Grouping {
		b.groups = GroupByEdit(b.groups, b.opts.MaxEdit, &b.stats)
	}
	b.stats.FinalGroups = len(b.groups)
	log.Printf("%d repeat groups found", len(b.groups))
	return nil
}

// Groups returns the final groups.
//
// REQUIRES: Build has returned successfully.
func (b *Builder) Groups() []Group { return b.groups }

// Stats returns counters for the completed run.
func (b *Builder) Stats() Stats { return b.stats }

// Strand returns the addressing space this builder scanned.
func (b *Builder) Strand() Strand { return b.strand }
