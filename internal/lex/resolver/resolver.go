// Package resolver implements the include resolver sitting atop a
// [scanner.Scanner]: it recognizes an `@include(path)` directive in the
// token stream, reads the referenced file, pushes it onto the scanner as a
// new region, and retags the directive's own tokens from Real to Phantom
// so they never appear in rendered output.
package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.tmplforge.dev/tmplforge/internal/lex/queue"
	"go.tmplforge.dev/tmplforge/internal/lex/scanner"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
)

// ErrPathEscape is returned internally when a resolved include path would
// escape the configured root directory. Rejection is not strictly required,
// so this denies it by default, but a caller may install an
// [EscapeDecider] (e.g. an interactive confirm prompt) to allow specific
// escapes on a case-by-case basis.
var ErrPathEscape = errors.New("resolver: include path escapes root directory")

// EscapeDecider is consulted when a resolved include path would escape the
// configured root directory. It returns true to allow the read to proceed
// anyway. A nil decider denies every escape.
type EscapeDecider func(relativeFilename string) bool

// state is the Resolver's top-level state.
type state int

const (
	passthroughState state = iota
	resolveIncludeState
	failedState
)

// includeSubstate tracks progress collecting an in-flight `@include(...)`.
//
// The core names a third substate, ExpectCloseParen, but the scanner's
// token stream gives no way to distinguish "done collecting path, waiting
// on the close paren" from "still collecting path": a CloseParen can arrive
// immediately after OpenParen (empty path) or after any number of
// Defered/Newline tokens. This implementation folds ExpectCloseParen into
// ExpectPath: seeing a CloseParen while in ExpectPath always finalizes.
type includeSubstate int

const (
	expectOpenParen includeSubstate = iota
	expectPath
)

// Resolver wraps a [scanner.Scanner], resolving `@include` directives into
// pushed regions and hiding the directive's own tokens from the rendered
// stream.
type Resolver struct {
	scanner  *scanner.Scanner
	delivery *queue.Buf // tokens ready to hand back to the caller, in order
	batch    *queue.Buf // tokens collected for the in-flight include, pending Finalize/Fail

	rootDir string

	escapeDecider EscapeDecider

	state state
	sub   includeSubstate

	includeOffset int // global offset of the include being resolved, for diagnostics

	hasPath    bool
	pathRegion int
	pathStart  int
	pathEnd    int

	Guard bool
}

// New returns a Resolver pulling from s.
func New(s *scanner.Scanner) *Resolver {
	return &Resolver{
		scanner:  s,
		delivery: queue.New(false),
		batch:    queue.New(false),
		state:    passthroughState,
	}
}

// SetGuard toggles the Resolver's own queues, and the underlying Scanner's
// queue, into guarded mode.
func (r *Resolver) SetGuard(guard bool) {
	r.Guard = guard
	r.delivery.Guard = guard
	r.batch.Guard = guard
	r.scanner.SetGuard(guard)
}

// RegionName delegates to the underlying [scanner.Scanner], for callers
// rendering diagnostics against the Resolver rather than the Scanner
// directly.
func (r *Resolver) RegionName(index int) string {
	return r.scanner.RegionName(index)
}

// RegionBytes delegates to the underlying [scanner.Scanner].
func (r *Resolver) RegionBytes(index int) ([]byte, bool) {
	return r.scanner.RegionBytes(index)
}

// SpanSlice delegates to the underlying [scanner.Scanner].
func (r *Resolver) SpanSlice(span token.Span) ([]byte, bool) {
	return r.scanner.SpanSlice(span)
}

// SetEscapeDecider installs fn as the arbiter for include paths that would
// escape the configured root directory. Pass nil (the default) to deny
// every such escape.
func (r *Resolver) SetEscapeDecider(fn EscapeDecider) {
	r.escapeDecider = fn
}

// SetRootDir configures the template search root. Relative-vs-absolute
// handling is left to the caller; the Resolver only concatenates this
// string with the requested filename.
func (r *Resolver) SetRootDir(path string) {
	r.rootDir = path
}

// ReadFile reads relativeFilename under the configured root and pushes it
// onto the Scanner as a new region. It returns the zero Token on success,
// or a diagnostic Token describing the failure (a missing file, or a path
// that escapes the root).
func (r *Resolver) ReadFile(relativeFilename string) token.Token {
	return r.readFile(relativeFilename)
}

func (r *Resolver) readFile(relativeFilename string) token.Token {
	full, err := r.resolvePath(relativeFilename)
	if err != nil {
		if r.escapeDecider == nil || !r.escapeDecider(relativeFilename) {
			return r.diagnostic(token.Error, token.InstructionError, "resolver_path_escape", r.includeOffset)
		}

		full = filepath.Join(filepath.Clean(r.rootDir), relativeFilename)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return r.diagnostic(token.Error, token.InstructionError, "resolver_read_file_failed", r.includeOffset)
	}

	return r.scanner.PushSource(relativeFilename, true, data)
}

// resolvePath joins rootDir and relativeFilename and rejects the result if
// it escapes rootDir via "..". Callers that want to offer an override should
// consult [Resolver.SetEscapeDecider] rather than retrying this directly.
func (r *Resolver) resolvePath(relativeFilename string) (string, error) {
	root := filepath.Clean(r.rootDir)
	full := filepath.Join(root, relativeFilename)

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathEscape
	}

	return full, nil
}

func (r *Resolver) diagnostic(tag token.Tag, kind token.ErrorKind, code string, globalOffset int) token.Token {
	return token.NewDiagnostic(
		tag,
		kind,
		token.Source{Component: "resolver", Code: code, GlobalOffset: globalOffset},
		token.Span{GlobalByteOffset: globalOffset},
	)
}

// Next pulls the next token from the Resolver: Scanner tokens passed
// through unchanged outside an include, or the resolved/retagged stream of
// an `@include` directive's tokens.
func (r *Resolver) Next() (token.Token, bool) {
	if r.delivery.Len() > 0 {
		return r.delivery.PopFront()
	}

	switch r.state {
	case passthroughState:
		return r.nextPassthrough()
	case resolveIncludeState:
		return r.nextResolveInclude()
	default:
		return token.Token{}, false
	}
}

func (r *Resolver) nextPassthrough() (token.Token, bool) {
	tok, ok := r.scanner.Next()
	if !ok {
		return token.Token{}, false
	}

	if tok.Tag == token.Real && tok.Kind == token.Include {
		r.state = resolveIncludeState
		r.sub = expectOpenParen
		r.includeOffset = tok.Span.GlobalByteOffset
		r.hasPath = false

		r.batch.Append(tok.Retag())

		return token.NewStateChange(), true
	}

	return tok, true
}

// nextResolveInclude drives the ExpectOpenParen/ExpectPath substate machine
// until the in-flight include Finalizes or Fails, then settles the batch
// and returns the first token the caller should see.
func (r *Resolver) nextResolveInclude() (token.Token, bool) {
	for {
		tok, ok := r.scanner.Next()
		if !ok {
			diag := r.diagnostic(token.Error, token.InstructionNotOpen, "resolver_scanner_exhausted_mid_include", r.includeOffset)
			return r.settleFailure(diag, false)
		}

		switch tok.Tag {
		case token.Fatal:
			return r.settleFailure(tok, true)
		case token.Error:
			return r.settleFailure(tok, false)
		case token.Warning:
			r.batch.Append(tok)
			continue
		case token.StateChange:
			continue
		}

		switch r.sub {
		case expectOpenParen:
			switch {
			case tok.Kind == token.OpenParen:
				r.batch.Append(tok)
				r.sub = expectPath
			case tok.Kind == token.WhiteSpace:
				// Tolerated: the scanner already queued a Warning for it,
				// handled by the Warning case above on the next pull.
				r.batch.Append(tok)
			default:
				diag := r.diagnostic(token.Error, token.InstructionNotOpen, "resolver_instruction_not_open", tok.Span.GlobalByteOffset)
				return r.settleFailure(diag, false)
			}
		case expectPath:
			switch tok.Kind {
			case token.Defered, token.Newline:
				if !r.hasPath {
					r.hasPath = true
					r.pathRegion = tok.Span.RegionIndex
					r.pathStart = tok.Span.ByteOffsetInRegion
				}

				r.pathEnd = tok.Span.End()

				r.batch.Append(tok)
			case token.CloseParen:
				return r.closeInclude(tok)
			default:
				diag := r.diagnostic(token.Error, token.InstructionNotOpen, "resolver_unexpected_token_in_path", tok.Span.GlobalByteOffset)
				return r.settleFailure(diag, false)
			}
		}
	}
}

// closeInclude handles the balancing CloseParen: resolving the captured
// path span to a filename, reading the file, and settling the batch either
// way.
func (r *Resolver) closeInclude(closeTok token.Token) (token.Token, bool) {
	if !r.hasPath {
		// "@include()": parens matched but no path captured. SHOULD-level
		// ambiguity in the core: treated here as a non-fatal diagnostic,
		// with the parens still retagged to Phantom on Finalize.
		diag := r.diagnostic(token.Error, token.InstructionMissingArgs, "resolver_include_missing_path", closeTok.Span.GlobalByteOffset)
		r.batch.Append(diag)
		r.batch.Append(closeTok)

		return r.settleSuccess()
	}

	pathSpan := token.Span{
		RegionIndex:        r.pathRegion,
		ByteOffsetInRegion: r.pathStart,
		Length:             r.pathEnd - r.pathStart,
	}

	raw, ok := r.scanner.SpanSlice(pathSpan)
	if !ok {
		r.batch.Append(closeTok)

		diag := r.diagnostic(token.Error, token.InstructionError, "resolver_path_span_out_of_bounds", closeTok.Span.GlobalByteOffset)

		return r.settleFailure(diag, false)
	}

	r.batch.Append(closeTok)

	filename := string(raw)

	diag := r.readFile(filename)
	if diag != (token.Token{}) {
		return r.settleFailure(diag, false)
	}

	return r.settleSuccess()
}

// settleSuccess drains the batch into the delivery queue, delivering the
// first token (the already-Phantom Include header) as-is and retagging
// every other content-bearing token from Real to Phantom, then returns to
// Passthrough.
func (r *Resolver) settleSuccess() (token.Token, bool) {
	if r.batch.Len() == 0 {
		diag := r.diagnostic(token.Fatal, token.InternalError, "resolver_empty_batch_on_finalize", r.includeOffset)
		r.delivery.Append(diag)
		r.state = failedState

		return r.delivery.PopFront()
	}

	first := true

	for {
		tok, ok := r.batch.PopFront()
		if !ok {
			break
		}

		if tok.Tag == token.StateChange {
			continue
		}

		if first {
			r.delivery.Append(tok)
			first = false

			continue
		}

		if tok.IsContentBearing() {
			tok = tok.Retag()
		}

		r.delivery.Append(tok)
	}

	r.state = passthroughState

	return r.delivery.PopFront()
}

// settleFailure surfaces the whole batch as Real content (undoing the
// Include header's provisional Phantom retag from nextPassthrough, so the
// directive's own tokens don't half-disappear from the rendered output),
// followed by diag, then returns either to Passthrough or, for a Fatal,
// sticks in Failed.
func (r *Resolver) settleFailure(diag token.Token, sticky bool) (token.Token, bool) {
	for {
		tok, ok := r.batch.PopFront()
		if !ok {
			break
		}

		if tok.Tag == token.StateChange {
			continue
		}

		r.delivery.Append(tok.Untag())
	}

	r.delivery.Append(diag)

	if sticky {
		r.state = failedState
	} else {
		r.state = passthroughState
	}

	return r.delivery.PopFront()
}
