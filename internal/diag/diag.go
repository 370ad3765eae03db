// Package diag renders the diagnostic [token.Token]s a Scanner or Resolver
// produces for display on a terminal: the offending source line with a
// caret under the span.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go.followtheprocess.codes/hue"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
)

// Position is a human-facing source position derived from a [token.Span]:
// 1-indexed line and column, for display only. The core's own Span stays
// 0-indexed internally; Position exists purely at this presentation edge.
type Position struct {
	Name   string
	Line   int
	Column int
}

// String implements [fmt.Stringer] for a [Position], in the
// "file:line:column" form most terminals and editors can navigate to.
func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Name, p.Line, p.Column)
}

// SourceLookup resolves a region index back to its name and backing bytes.
// Both [*scanner.Scanner] and [*resolver.Resolver] implement it.
type SourceLookup interface {
	RegionName(index int) string
	RegionBytes(index int) ([]byte, bool)
}

// PositionOf derives a display [Position] from a diagnostic token's span,
// looking up the region's filename via src.
func PositionOf(src SourceLookup, tok token.Token) Position {
	name := src.RegionName(tok.Span.RegionIndex)
	if name == "" {
		name = "<template>"
	}

	return Position{
		Name:   name,
		Line:   tok.Span.LineNumber + 1,
		Column: tok.Span.ByteOffsetFromLineStart + 1,
	}
}

// Handler is called for every diagnostic (Warning, Error or Fatal) token a
// caller pulls from the stream.
type Handler func(tok token.Token)

// PrettyConsoleHandler returns a [Handler] that formats a diagnostic token
// for display on the terminal: the stable error code and position, followed
// by the offending source line with a caret under the span, styled with
// [hue.Red].
func PrettyConsoleHandler(w io.Writer, src SourceLookup) Handler {
	return func(tok token.Token) {
		pos := PositionOf(src, tok)

		fmt.Fprintf(w, "%s: %s: %s (%s)\n\n", pos, tok.Tag, tok.ErrKind, tok.Source.Code)

		contents, ok := src.RegionBytes(tok.Span.RegionIndex)
		if !ok {
			fmt.Fprintf(w, "unable to show src context for %q\n", pos.Name)
			return
		}

		lines := bytes.Split(contents, []byte("\n"))

		const contextLines = 3

		startLine := max(pos.Line-contextLines, 1)
		endLine := min(pos.Line+contextLines, len(lines))

		length := max(tok.Span.Length, 1)

		for i, line := range lines {
			lineNo := i + 1
			if lineNo < startLine || lineNo > endLine {
				continue
			}

			// Note: U+2502 "Box Drawings Light Vertical", not a plain pipe.
			margin := fmt.Sprintf("%d │ ", lineNo)
			fmt.Fprintf(w, "%s%s\n", margin, line)

			if lineNo == pos.Line {
				hue.Red.Fprintf(
					w,
					"%s%s\n",
					strings.Repeat(" ", len(margin)+pos.Column-1),
					strings.Repeat("^", length),
				)
			}
		}
	}
}
