package repeat

// Mask overwrites every occurrence span of every group with BaseN, clipped
// at the end of the text. Reverse-strand occurrences address the
// reverse-complement space and are mirrored onto the forward text first.
func Mask(text MutableText, groups []Group) {
	n := text.Len()
	for i := range groups {
		g := &groups[i]
		for _, occ := range g.Occurrences {
			start := occ.JoinedOff
			if occ.Strand == Reverse {
				start = n - occ.JoinedOff - len(g.Seq)
				if start < 0 {
					start = 0
				}
			}
			for p := 0; p < len(g.Seq) && start+p < n; p++ {
				text.SetBase(start+p, BaseN)
			}
		}
	}
}
