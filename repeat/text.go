package repeat

// Coded bases. The joined text stores one coded base per byte: 0..3 are
// A,C,G,T and BaseN marks an unknown or masked position.
const (
	BaseA = iota
	BaseC
	BaseG
	BaseT
	// BaseN is the unknown/masked sentinel base.
	BaseN
)

// baseChars renders coded bases back to ASCII.
const baseChars = "ACGTN"

// baseCodes maps ASCII to coded bases. Everything outside acgtACGT maps to
// BaseN.
var baseCodes [256]byte

func init() {
	for i := range baseCodes {
		baseCodes[i] = BaseN
	}
	baseCodes['a'], baseCodes['A'] = BaseA, BaseA
	baseCodes['c'], baseCodes['C'] = BaseC, BaseC
	baseCodes['g'], baseCodes['G'] = BaseG, BaseG
	baseCodes['t'], baseCodes['T'] = BaseT, BaseT
}

// Text is a read-only view of the joined text: every input sequence
// concatenated into one 0-based addressable coded-base string. The scanner
// and the merger only need indexed access and the length, so short synthetic
// texts can stand in during tests.
type Text interface {
	// Base returns the coded base at position i.
	//
	// REQUIRES: 0 <= i < Len().
	Base(i int) byte
	// Len returns the number of bases in the text.
	Len() int
}

// MutableText is a Text whose bases can be overwritten. The repeat masker
// needs it; nothing else does.
type MutableText interface {
	Text
	SetBase(i int, b byte)
}

// EncodedText is the standard Text implementation: a flat slice of coded
// bases.
type EncodedText []byte

// NewEncodedText codes an ASCII sequence. Bases outside acgtACGT become
// BaseN.
func NewEncodedText(ascii string) EncodedText {
	t := make(EncodedText, len(ascii))
	for i := 0; i < len(ascii); i++ {
		t[i] = baseCodes[ascii[i]]
	}
	return t
}

func (t EncodedText) Base(i int) byte { return t[i] }

func (t EncodedText) Len() int { return len(t) }

func (t EncodedText) SetBase(i int, b byte) { t[i] = b }

// DecodeRange renders text[start,start+length) as an ASCII string, clipped
// at the end of the text.
func DecodeRange(t Text, start, length int) string {
	n := t.Len()
	buf := make([]byte, 0, length)
	for i := 0; i < length && start+i < n; i++ {
		buf = append(buf, baseChars[t.Base(start+i)])
	}
	return string(buf)
}

// ReverseComplement returns the reverse complement of the text as a new
// EncodedText. BaseN complements to itself.
func ReverseComplement(t Text) EncodedText {
	n := t.Len()
	rc := make(EncodedText, n)
	for i := 0; i < n; i++ {
		b := t.Base(n - i - 1)
		if b < BaseN {
			b = BaseT - b
		}
		rc[i] = b
	}
	return rc
}

// reverseComplementASCII computes the reverse complement of a decoded
// sequence, for the diagnostic range dump.
func reverseComplementASCII(seq string) string {
	buf := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		b := baseCodes[seq[len(seq)-i-1]]
		if b < BaseN {
			b = BaseT - b
		}
		buf[i] = baseChars[b]
	}
	return string(buf)
}
