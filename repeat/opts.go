package repeat

// Opts configures the repeat builder pipeline.
type Opts struct {
	// MinLength is the minimum length of a repeat seed: a streamed suffix
	// joins the current cluster only when it shares a prefix of at least this
	// many bases with its predecessor.
	MinLength int
	// MinCount is the minimum number of occurrences a cluster needs to be
	// emitted as a repeat group.
	MinCount int
	// MaxEdit is the edit-distance threshold of the approximate grouping
	// pass: two groups whose representative sequences are within MaxEdit of
	// each other are consolidated.
	MaxEdit int
	// Grouping enables the approximate (edit-distance) grouping pass after
	// containment merging.
	Grouping bool
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	MinLength: 100,
	MinCount:  5,
	MaxEdit:   10,
	Grouping:  true,
}
