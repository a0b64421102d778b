package repeat

// Stats counts work done by one run of the pipeline.
type Stats struct {
	// Positions is the number of suffix positions streamed through the
	// scanner.
	Positions int
	// RawGroups is the number of clusters the scanner emitted.
	RawGroups int
	// RawOccurrences is the total occurrence count across raw groups.
	RawOccurrences int
	// AbsorbedRanges is the number of occurrences removed by the containment
	// pass.
	AbsorbedRanges int
	// MergedGroups is the number of groups folded into a survivor by the
	// edit-distance pass.
	MergedGroups int
	// FinalGroups is the number of groups after compaction.
	FinalGroups int
}

// Merge adds the field values of the two Stats objects and creates new
// Stats. Useful when forward and reverse scans run as separate pipelines.
func (s Stats) Merge(o Stats) Stats {
	s.Positions += o.Positions
	s.RawGroups += o.RawGroups
	s.RawOccurrences += o.RawOccurrences
	s.AbsorbedRanges += o.AbsorbedRanges
	s.MergedGroups += o.MergedGroups
	s.FinalGroups += o.FinalGroups
	return s
}
