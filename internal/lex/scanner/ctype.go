package scanner

// ASCII-only byte classifiers. The core explicitly excludes Unicode-class
// whitespace and locale awareness, so these stay fixed-set comparisons
// rather than reaching for unicode.IsSpace or similar.

func isIdentByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isHorizontalSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func isNewline(b byte) bool {
	return b == '\n'
}
