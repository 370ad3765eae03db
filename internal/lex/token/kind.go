package token

// Kind is the lexical category carried by a [Token]'s body.
type Kind int

// Token body kinds, per the TokenBody union.
const (
	Unknown Kind = iota
	Include
	OpenParen
	CloseParen
	Lt
	Gt
	TagOpenStart
	TagOpenEnd
	TagCloseStart
	TagClose
	EscapedAt
	UnescapedAt
	WhiteSpace      // generic: whitespace on a line with no following newline
	WhiteSpaceLd    // leading: whitespace before content on a line that also has content
	WhiteSpaceTr    // trailing: whitespace after content, before a newline
	WhiteSpaceWhole // whole-line: whitespace from column 0 to a newline, with no other content
	Newline
	Defered
	FilePath
)

// String implements [fmt.Stringer] for a [Kind].
func (k Kind) String() string {
	switch k {
	case Include:
		return "Include"
	case OpenParen:
		return "OpenParen"
	case CloseParen:
		return "CloseParen"
	case Lt:
		return "Lt"
	case Gt:
		return "Gt"
	case TagOpenStart:
		return "TagOpenStart"
	case TagOpenEnd:
		return "TagOpenEnd"
	case TagCloseStart:
		return "TagCloseStart"
	case TagClose:
		return "TagClose"
	case EscapedAt:
		return "EscapedAt"
	case UnescapedAt:
		return "UnescapedAt"
	case WhiteSpace:
		return "WhiteSpace"
	case WhiteSpaceLd:
		return "WhiteSpaceLd"
	case WhiteSpaceTr:
		return "WhiteSpaceTr"
	case WhiteSpaceWhole:
		return "WhiteSpaceWhole"
	case Newline:
		return "Newline"
	case Defered:
		return "Defered"
	case FilePath:
		return "FilePath"
	default:
		return "Unknown"
	}
}
