// Package scanner implements the lexical scanner at the bottom of the
// template-scanning pipeline: a pull-based, single-threaded state machine
// that walks a stack of pushed byte regions and emits a token at a time.
//
// Unlike the channel-driven scanner this package's state-function idiom is
// borrowed from, there is no goroutine here: Next runs the state machine
// synchronously to completion for exactly one delivered token, queuing any
// extra tokens it produced along the way in buf for the following calls.
package scanner

import (
	"go.tmplforge.dev/tmplforge/internal/lex/directive"
	"go.tmplforge.dev/tmplforge/internal/lex/queue"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
)

// state is the scanner's top-level mode.
type state int

const (
	// expectInput is the idle state before any region has been pushed.
	expectInput state = iota
	// expectDefered is the ordinary scanning mode.
	expectDefered
	// expectInstructionClose is active between a delivered Include's
	// OpenParen and its balancing CloseParen.
	expectInstructionClose
	// failed is sticky: once entered, Next only drains queued diagnostics.
	failed
)

// region is one pushed byte buffer. Regions are never removed from the
// Scanner's backing slice, only their index stops being "current" once
// popped, so that SpanSlice can still resolve spans from a region whose
// tokenizing already finished.
type region struct {
	bytes    []byte
	filename string
	hasName  bool
}

// snapshot is the position state saved immediately before a new region is
// pushed, and restored once that region is exhausted.
type snapshot struct {
	regionIndex             int
	byteOffsetInRegion      int
	byteOffsetFromLineStart int
	lineNumber              int
}

// Scanner is the lexical scanner. The zero value is not usable; construct
// with [New].
type Scanner struct {
	regions    []region
	snapshots  []snapshot
	buf        *queue.Buf
	directives *directive.Table
	state      state
	lastError  token.ErrorKind
	Guard      bool

	regionIndex             int
	byteOffsetInRegion      int
	byteOffsetFromLineStart int
	globalByteOffset        int
	lineNumber              int
	regionLengthCap         int

	// openParens/closeParens track the balance of an in-flight
	// instruction's argument list. Seeded to 1/0 when the directive's own
	// OpenParen is delivered.
	openParens  int
	closeParens int

	// includeGlobalOffset is the global offset of the most recently
	// delivered Include token, carried into an OpenInstruction diagnostic
	// if its argument list never balances.
	includeGlobalOffset int
}

// New returns an idle Scanner in ExpectInput. table supplies the directive
// name lookup used when a "@name(" run is recognised; a nil table falls
// back to [directive.Default].
func New(table *directive.Table) *Scanner {
	if table == nil {
		table = directive.Default()
	}

	return &Scanner{
		buf:        queue.New(false),
		directives: table,
		state:      expectInput,
	}
}

// SetGuard toggles the debug-mode cross-checks described in the core's
// design notes: the position-discipline assertions in deliver and the
// TokenBuf's drain-discipline guard.
func (s *Scanner) SetGuard(guard bool) {
	s.Guard = guard
	s.buf.Guard = guard
}

// PushSource pushes a new region of bytes onto the scanner, snapshotting
// the current position so it can be restored once this region is
// exhausted. filename is optional context retained for diagnostics; pass
// hasName=false when the region has none (e.g. an in-memory template with
// no backing file).
func (s *Scanner) PushSource(filename string, hasName bool, bytes []byte) token.Token {
	if s.state != expectInput {
		s.snapshots = append(s.snapshots, snapshot{
			regionIndex:             s.regionIndex,
			byteOffsetInRegion:      s.byteOffsetInRegion,
			byteOffsetFromLineStart: s.byteOffsetFromLineStart,
			lineNumber:              s.lineNumber,
		})
	} else {
		s.state = expectDefered
	}

	s.regions = append(s.regions, region{bytes: bytes, filename: filename, hasName: hasName})
	s.regionIndex = len(s.regions) - 1
	s.byteOffsetInRegion = 0
	s.byteOffsetFromLineStart = 0
	s.lineNumber = 0
	s.regionLengthCap = len(bytes)

	return token.Token{}
}

// Next pulls the next token from the scanner, or reports false once the
// stream is exhausted.
func (s *Scanner) Next() (token.Token, bool) {
	if s.buf.Len() > 0 {
		tok, ok := s.buf.PopFront()
		if !ok {
			return token.Token{}, false
		}

		return s.deliver(tok), true
	}

	switch s.state {
	case expectDefered:
		return s.scanDefered()
	case expectInstructionClose:
		return s.scanInstructionArgs()
	case failed:
		return token.Token{}, false
	default: // expectInput
		if s.lastError == token.NoInput {
			return token.Token{}, false
		}

		s.lastError = token.NoInput

		return token.NewDiagnostic(token.Error, token.NoInput, s.newSource("scanner_no_input", 1, 0), token.Span{}), true
	}
}

// SpanSlice resolves span to the bytes it covers. It never mutates scanner
// state, and reports false for an out-of-range span or before any region
// has been pushed.
func (s *Scanner) SpanSlice(span token.Span) ([]byte, bool) {
	if span.RegionIndex < 0 || span.RegionIndex >= len(s.regions) {
		return nil, false
	}

	reg := s.regions[span.RegionIndex]
	end := span.ByteOffsetInRegion + span.Length

	if span.ByteOffsetInRegion < 0 || span.Length < 0 || end > len(reg.bytes) {
		return nil, false
	}

	return reg.bytes[span.ByteOffsetInRegion:end], true
}

func (s *Scanner) currentRegion() region {
	return s.regions[s.regionIndex]
}

// RegionName reports the filename a pushed region was given, or "" if the
// index is out of range or the region was pushed with hasName=false.
func (s *Scanner) RegionName(index int) string {
	if index < 0 || index >= len(s.regions) {
		return ""
	}

	reg := s.regions[index]
	if !reg.hasName {
		return ""
	}

	return reg.filename
}

// RegionBytes returns the full backing bytes of the region at index, for
// callers (diagnostic rendering) that need more context than a single
// [token.Span] resolves. Like SpanSlice, this is a pure read: a popped
// region's bytes stay retained for exactly this purpose.
func (s *Scanner) RegionBytes(index int) ([]byte, bool) {
	if index < 0 || index >= len(s.regions) {
		return nil, false
	}

	return s.regions[index].bytes, true
}

// spanAt builds a Span for a region-relative offset and length, computed
// relative to the scanner's current (not-yet-advanced) position. This is
// safe for any offset reachable without crossing a newline since the last
// delivered token, which holds for every caller in this package: each
// scan_* pass stops at the first newline or region boundary it finds.
func (s *Scanner) spanAt(regionOffset, length int) token.Span {
	delta := regionOffset - s.byteOffsetInRegion

	return token.Span{
		RegionIndex:             s.regionIndex,
		ByteOffsetInRegion:      regionOffset,
		ByteOffsetFromLineStart: s.byteOffsetFromLineStart + delta,
		GlobalByteOffset:        s.globalByteOffset + delta,
		LineNumber:              s.lineNumber,
		Length:                  length,
	}
}

func (s *Scanner) globalOffsetAt(regionOffset int) int {
	return s.globalByteOffset + (regionOffset - s.byteOffsetInRegion)
}

func (s *Scanner) newSource(code string, implLine, globalOffset int) token.Source {
	return token.Source{Component: "scanner", ImplLine: implLine, Code: code, GlobalOffset: globalOffset}
}

// deliver runs the return-tokenized position-discipline path for
// content-bearing tokens, and passes diagnostics/StateChange straight
// through untouched. This is the single routine that ever advances the
// scanner's position.
func (s *Scanner) deliver(tok token.Token) token.Token {
	if !tok.IsContentBearing() {
		return tok
	}

	sp := tok.Span

	if s.Guard {
		if sp.RegionIndex != s.regionIndex ||
			sp.ByteOffsetInRegion != s.byteOffsetInRegion ||
			sp.ByteOffsetFromLineStart != s.byteOffsetFromLineStart ||
			sp.GlobalByteOffset != s.globalByteOffset ||
			sp.LineNumber != s.lineNumber {
			if s.lastError != token.InternalError {
				s.lastError = token.InternalError
				s.buf.Append(tok)
			}

			s.state = failed

			return token.NewDiagnostic(token.Fatal, token.InternalError,
				s.newSource("scanner_position_mismatch", 2, sp.GlobalByteOffset), sp)
		}
	}

	s.byteOffsetInRegion += sp.Length
	s.globalByteOffset += sp.Length
	s.byteOffsetFromLineStart += sp.Length

	switch tok.Kind {
	case token.Newline:
		s.lineNumber++
		s.byteOffsetFromLineStart = 0
	case token.Include:
		s.state = expectInstructionClose
		s.openParens = 0
		s.closeParens = 0
		s.includeGlobalOffset = sp.GlobalByteOffset
	case token.OpenParen:
		s.openParens++
	}

	if s.byteOffsetInRegion > s.regionLengthCap {
		s.lastError = token.InternalError
		s.state = failed

		return token.NewDiagnostic(token.Fatal, token.InternalError,
			s.newSource("scanner_span_overflow", 3, s.globalByteOffset), sp)
	}

	if s.byteOffsetInRegion == s.regionLengthCap && s.regionIndex > 0 {
		s.popRegion()
	}

	return tok
}

// popRegion restores the position saved before the current region was
// pushed. The region's bytes stay retained in s.regions for SpanSlice.
func (s *Scanner) popRegion() {
	last := len(s.snapshots) - 1
	snap := s.snapshots[last]
	s.snapshots = s.snapshots[:last]

	s.regionIndex = snap.regionIndex
	s.byteOffsetInRegion = snap.byteOffsetInRegion
	s.byteOffsetFromLineStart = snap.byteOffsetFromLineStart
	s.lineNumber = snap.lineNumber
	s.regionLengthCap = len(s.regions[s.regionIndex].bytes)
}

// scanDefered walks the current region from the current offset looking for
// a newline or '@'. It pops any exhausted non-base region before scanning,
// since an empty or already-consumed included file never delivers a token
// of its own to trigger the pop in deliver.
func (s *Scanner) scanDefered() (token.Token, bool) {
	for {
		reg := s.currentRegion()
		start := s.byteOffsetInRegion

		if start >= len(reg.bytes) {
			if s.regionIndex == 0 {
				return token.Token{}, false
			}

			s.popRegion()

			continue
		}

		i := start
		for i < len(reg.bytes) {
			b := reg.bytes[i]
			if isNewline(b) {
				return s.finishDeferedRun(start, i)
			}

			if b == '@' {
				return s.scanInstruction(start, i)
			}

			i++
		}

		return s.emitDeferedThrough(start, i)
	}
}

// finishDeferedRun handles a run ending at a newline byte: the newline
// itself is queued, and any preceding defered bytes are delivered now (or,
// if there were none, the newline is delivered directly).
func (s *Scanner) finishDeferedRun(start, nlOffset int) (token.Token, bool) {
	nlTok := token.NewReal(token.Newline, s.spanAt(nlOffset, 1))

	if start == nlOffset {
		return s.deliver(nlTok), true
	}

	s.buf.Append(nlTok)

	deferedTok := token.NewReal(token.Defered, s.spanAt(start, nlOffset-start))

	return s.deliver(deferedTok), true
}

// emitDeferedThrough delivers [start, end) of the current region as one
// Defered token, or reports no token if the range is empty.
func (s *Scanner) emitDeferedThrough(start, end int) (token.Token, bool) {
	if end <= start {
		return token.Token{}, false
	}

	tok := token.NewReal(token.Defered, s.spanAt(start, end-start))

	return s.deliver(tok), true
}

// emitSigil delivers a single recognised '@' construct (UnescapedAt or
// EscapedAt) at atOffset, flushing any preceding defered run first.
func (s *Scanner) emitSigil(runStart, atOffset, length int, kind token.Kind) (token.Token, bool) {
	sigilTok := token.NewReal(kind, s.spanAt(atOffset, length))

	if runStart == atOffset {
		return s.deliver(sigilTok), true
	}

	s.buf.Append(sigilTok)

	deferedTok := token.NewReal(token.Defered, s.spanAt(runStart, atOffset-runStart))

	return s.deliver(deferedTok), true
}

// scanInstruction is called with the scanner positioned at a '@' byte at
// atOffset; runStart is the start of any not-yet-delivered defered run
// preceding it.
func (s *Scanner) scanInstruction(runStart, atOffset int) (token.Token, bool) {
	reg := s.currentRegion()

	if atOffset+1 >= len(reg.bytes) {
		return s.emitSigil(runStart, atOffset, 1, token.UnescapedAt)
	}

	if reg.bytes[atOffset+1] == '@' {
		return s.emitSigil(runStart, atOffset, 2, token.EscapedAt)
	}

	if !isIdentByte(reg.bytes[atOffset+1]) {
		// '@' not immediately followed by an identifier character: the
		// sigil is literal regardless of what follows.
		return s.emitSigil(runStart, atOffset, 1, token.UnescapedAt)
	}

	i := atOffset + 1
	identStart := i

	for i < len(reg.bytes) && isIdentByte(reg.bytes[i]) {
		i++
	}

	identEnd := i
	wsStart := i

	for i < len(reg.bytes) && isHorizontalSpace(reg.bytes[i]) {
		i++
	}

	wsEnd := i

	switch {
	case i < len(reg.bytes) && reg.bytes[i] == '(':
		kind, ok := s.directives.Lookup(reg.bytes[identStart:identEnd])
		if !ok {
			// Not a recognised instruction name; the whole run scanned so
			// far is ordinary content, scanning resumes from i.
			return s.emitDeferedThrough(runStart, i)
		}

		return s.scanInstructionOpen(runStart, atOffset, wsStart, wsEnd, i, kind)
	case i < len(reg.bytes) && reg.bytes[i] == ')':
		s.buf.Append(token.NewDiagnostic(token.Error, token.InstructionError,
			s.newSource("instruction_close_before_open", 4, s.globalOffsetAt(atOffset)), s.spanAt(atOffset, 1)))

		return s.emitSigil(runStart, atOffset, 1, token.UnescapedAt)
	default:
		// End of region, or some other byte interrupted the whitespace
		// run: no '(' was found, so this isn't a valid instruction.
		return s.emitDeferedThrough(runStart, i)
	}
}

// scanInstructionOpen delivers the Include/whitespace/OpenParen sequence
// for a matched "@name(" run. The Include token's span
// covers atOffset through wsStart (the '@' plus the matched identifier,
// with no whitespace).
func (s *Scanner) scanInstructionOpen(runStart, atOffset, wsStart, wsEnd, openOffset int, kind token.Kind) (token.Token, bool) {
	includeTok := token.NewReal(kind, s.spanAt(atOffset, wsStart-atOffset))

	hasWS := wsEnd > wsStart

	var wsTok token.Token
	if hasWS {
		wsTok = token.NewReal(token.WhiteSpace, s.spanAt(wsStart, wsEnd-wsStart))
	}

	openTok := token.NewReal(token.OpenParen, s.spanAt(openOffset, 1))

	queueWSAndOpen := func() {
		if hasWS {
			s.buf.Append(wsTok)
			s.buf.Append(token.NewDiagnostic(token.Warning, token.UnwantedWhiteSpace,
				s.newSource("instruction_whitespace_before_open_paren", 5, wsTok.Span.GlobalByteOffset), wsTok.Span))
		}

		s.buf.Append(openTok)
	}

	if runStart == atOffset {
		queueWSAndOpen()

		return s.deliver(includeTok), true
	}

	deferedTok := token.NewReal(token.Defered, s.spanAt(runStart, atOffset-runStart))

	s.buf.Append(includeTok)
	queueWSAndOpen()

	return s.deliver(deferedTok), true
}

// scanInstructionArgs is active while the scanner's state is
// expectInstructionClose: it accumulates the instruction's raw argument
// bytes as a Defered run, tracking a local paren balance that starts
// seeded at 1 for the already-delivered outer '('.
func (s *Scanner) scanInstructionArgs() (token.Token, bool) {
	for {
		reg := s.currentRegion()
		start := s.byteOffsetInRegion

		if start >= len(reg.bytes) {
			if s.regionIndex == 0 {
				return s.unbalancedInstruction(start, start)
			}

			s.popRegion()

			continue
		}

		i := start

		for i < len(reg.bytes) {
			switch reg.bytes[i] {
			case '\n':
				return s.finishDeferedRun(start, i)
			case '(':
				s.openParens++
				i++
			case ')':
				s.closeParens++
				if s.openParens == s.closeParens {
					return s.finalizeInstructionArgs(start, i)
				}

				i++
			default:
				i++
			}
		}

		return s.unbalancedInstruction(start, i)
	}
}

// finalizeInstructionArgs delivers the trailing Defered run (if any) and
// the balancing CloseParen, and returns the scanner to expectDefered.
func (s *Scanner) finalizeInstructionArgs(start, closeOffset int) (token.Token, bool) {
	closeTok := token.NewReal(token.CloseParen, s.spanAt(closeOffset, 1))

	if start == closeOffset {
		s.state = expectDefered

		return s.deliver(closeTok), true
	}

	s.buf.Append(closeTok)

	deferedTok := token.NewReal(token.Defered, s.spanAt(start, closeOffset-start))
	s.state = expectDefered

	return s.deliver(deferedTok), true
}

// unbalancedInstruction handles a region ending before the argument list
// balances: any trailing defered bytes and an OpenInstruction error are
// queued, and a StateChange is delivered so the caller re-enters and
// drains them.
func (s *Scanner) unbalancedInstruction(start, end int) (token.Token, bool) {
	if end > start {
		s.buf.Append(token.NewReal(token.Defered, s.spanAt(start, end-start)))
	}

	s.buf.Append(token.NewDiagnostic(token.Error, token.OpenInstruction,
		s.newSource("instruction_never_closed", 6, s.includeGlobalOffset),
		token.Span{GlobalByteOffset: s.includeGlobalOffset}))

	s.state = expectDefered

	return s.deliver(token.NewStateChange()), true
}
