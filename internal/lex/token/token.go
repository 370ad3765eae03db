// Package token provides the shared data model for the scanning core: the
// Span that locates bytes in the source, the tagged Token union that flows
// between the Scanner, the Resolver and their callers, and the ErrorKind
// sum used for diagnostics.
package token

import "fmt"

// Tag distinguishes the severity/shape of a [Token], playing the role the
// source design calls a tagged union over Real/Phantom/Warning/Error/Fatal/
// StateChange.
type Tag int

const (
	// Real is a token carrying source content that should be rendered.
	Real Tag = iota
	// Phantom is a recognized lexical entity whose source bytes are
	// consumed but must not appear in rendered output.
	Phantom
	// Warning is delivered to the caller but parsing continues.
	Warning
	// Error is a template-level defect that prevents correct
	// compilation but not further scanning.
	Error
	// Fatal is unrecoverable; the producing component enters Failed.
	Fatal
	// StateChange is an opaque marker; callers ignore it.
	StateChange
)

// String implements [fmt.Stringer] for a [Tag].
func (t Tag) String() string {
	switch t {
	case Real:
		return "Real"
	case Phantom:
		return "Phantom"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	case StateChange:
		return "StateChange"
	default:
		return "Unknown"
	}
}

// Token is a single item in the stream produced by a Scanner or Resolver.
//
// For Real/Phantom tags, Kind and Span describe the lexical body. For
// Warning/Error/Fatal tags, ErrKind and Source describe the diagnostic;
// Span is still populated with the offending position where known.
// StateChange carries no payload, it exists purely so a caller re-enters
// the pull loop and drains any diagnostics queued behind it.
type Token struct {
	Tag     Tag
	Kind    Kind
	Span    Span
	ErrKind ErrorKind
	Source  Source
}

// NewReal returns a Real token with the given body kind and span.
func NewReal(kind Kind, span Span) Token {
	return Token{Tag: Real, Kind: kind, Span: span}
}

// NewPhantom returns a Phantom token with the given body kind and span.
func NewPhantom(kind Kind, span Span) Token {
	return Token{Tag: Phantom, Kind: kind, Span: span}
}

// NewDiagnostic returns a diagnostic token (Warning, Error or Fatal) with the
// given error kind and source provenance, optionally anchored to span.
func NewDiagnostic(tag Tag, kind ErrorKind, src Source, span Span) Token {
	return Token{Tag: tag, ErrKind: kind, Source: src, Span: span}
}

// NewStateChange returns the opaque StateChange marker token.
func NewStateChange() Token {
	return Token{Tag: StateChange}
}

// Retag returns a copy of t with its Tag flipped from Real to Phantom.
//
// It is a no-op (returns t unchanged) for any other tag; this is the
// Resolver's "consume-but-preserve-shape" transformation: a one-field
// retag rather than a reconstruction of the token.
func (t Token) Retag() Token {
	if t.Tag == Real {
		t.Tag = Phantom
	}

	return t
}

// Untag returns a copy of t with its Tag flipped back from Phantom to Real.
//
// It is a no-op for any other tag. This undoes [Token.Retag] for a batch
// that turns out not to have resolved after all: a directive header
// committed to Phantom optimistically, before its arguments were known to
// be valid, needs to render as ordinary content again once the batch fails.
func (t Token) Untag() Token {
	if t.Tag == Phantom {
		t.Tag = Real
	}

	return t
}

// Is reports whether the token's Tag is any of the given tags.
func (t Token) Is(tags ...Tag) bool {
	for _, tag := range tags {
		if t.Tag == tag {
			return true
		}
	}

	return false
}

// IsContentBearing reports whether t carries a Span that participates in the
// monotonic global-offset ordering (Real or Phantom).
func (t Token) IsContentBearing() bool {
	return t.Tag == Real || t.Tag == Phantom
}

// String implements [fmt.Stringer] for a [Token], in the canonical
// "<Token::TAG:KIND start=N len=N>" debug format the scan command prints.
func (t Token) String() string {
	switch t.Tag {
	case Warning, Error, Fatal:
		return fmt.Sprintf("<Token::%s:%s @%d>", t.Tag, t.ErrKind, t.Span.GlobalByteOffset)
	case StateChange:
		return "<Token::StateChange>"
	default:
		return fmt.Sprintf("<Token::%s:%s start=%d len=%d>", t.Tag, t.Kind, t.Span.ByteOffsetInRegion, t.Span.Length)
	}
}
