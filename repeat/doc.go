// Package repeat builds a catalogue of repeated substrings across one or
// more concatenated sequences, using a streamed suffix array over the
// joined text.
//
// The pipeline is strictly sequential: a Scanner consumes suffix positions
// in suffix-sorted order and clusters consecutive suffixes by their
// boundary-aware longest common prefix; MergeContained flattens every
// occurrence to an interval and removes occurrences nested inside longer
// ones; GroupByEdit consolidates groups whose representative sequences are
// within an edit-distance threshold. A FragmentIndex maps joined-text
// positions back to per-sequence coordinates throughout. The resulting
// groups are serialized by the writers in export.go and can be masked out
// of the text with Mask before downstream indexing.
//
// Suffix-array construction is deliberately external: the scanner only
// needs a PositionStream.
package repeat
