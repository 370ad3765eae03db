package token

import "fmt"

// Span is a pointer into the source: which region it belongs to, its
// position within that region, its position within the current line, its
// position in the monotone global byte stream, the 0-indexed line number,
// and its length in bytes.
//
// Invariant: ByteOffsetInRegion+Length <= region length, and
// ByteOffsetFromLineStart <= ByteOffsetInRegion.
type Span struct {
	RegionIndex             int
	ByteOffsetInRegion      int
	ByteOffsetFromLineStart int
	GlobalByteOffset        int
	LineNumber              int
	Length                  int
}

// End returns the byte offset in the region immediately after this span.
func (s Span) End() int {
	return s.ByteOffsetInRegion + s.Length
}

// String implements [fmt.Stringer] for a [Span].
func (s Span) String() string {
	return fmt.Sprintf(
		"region=%d offset=%d line=%d col=%d len=%d global=%d",
		s.RegionIndex, s.ByteOffsetInRegion, s.LineNumber, s.ByteOffsetFromLineStart, s.Length, s.GlobalByteOffset,
	)
}
