// Package queue provides Buf, the FIFO token queue shared by the scanner and
// resolver: an all-in/all-out discipline over a slice that grows in fixed
// steps and is released back to empty once fully drained.
package queue

import "go.tmplforge.dev/tmplforge/internal/lex/token"

// growthStep is the fixed number of slots Buf grows by on each reservation.
const growthStep = 16

// defaultMaxLen is the soft capacity above which Append refuses to grow
// further and reports Fatal(NoMemory) instead. A single instruction or
// defered run pathological enough to need more than this many queued
// tokens indicates a runaway input, not a healthy template.
const defaultMaxLen = 1 << 20

// Buf is a FIFO queue of [token.Token] enforcing the drain discipline:
// callers may Append arbitrarily, but once PopFront has been called they
// must drain to empty before appending again. Guarded mode checks this and
// reports violations as Fatal(InternalError) tokens rather than panicking;
// release mode (Guard == false) is permissive, since a misordered caller
// only wastes memory, it never corrupts delivery order.
type Buf struct {
	storage []token.Token
	head    int
	Guard   bool
	MaxLen  int
}

// New returns an empty Buf. Guard controls whether the drain discipline is
// enforced; callers building debug/test binaries should set it true.
func New(guard bool) *Buf {
	return &Buf{Guard: guard, MaxLen: defaultMaxLen}
}

// Len reports the count of tokens not yet delivered.
func (b *Buf) Len() int {
	return len(b.storage) - b.head
}

// BackingLen reports the length of the backing storage, exposed for the
// invariant that it returns to zero once fully drained.
func (b *Buf) BackingLen() int {
	return len(b.storage)
}

// partiallyDrained reports whether some but not all enqueued tokens have
// been popped; appending in this state violates the drain discipline.
func (b *Buf) partiallyDrained() bool {
	return b.head > 0 && b.head < len(b.storage)
}

// Append enqueues t, growing the backing storage by [growthStep] slots when
// needed. In guarded mode, appending while partially drained is itself a
// protocol violation, reported as a Fatal(InternalError) token rather than
// appended.
func (b *Buf) Append(t token.Token) token.Token {
	if b.Guard && b.partiallyDrained() {
		return token.NewDiagnostic(
			token.Fatal,
			token.InternalError,
			token.Source{Component: "queue", Code: "queue_append_while_draining"},
			token.Span{},
		)
	}

	if len(b.storage) == cap(b.storage) {
		maxLen := b.MaxLen
		if maxLen == 0 {
			maxLen = defaultMaxLen
		}

		if len(b.storage)+growthStep > maxLen {
			return token.NewDiagnostic(
				token.Fatal,
				token.NoMemory,
				token.Source{Component: "queue", Code: "queue_capacity_exhausted"},
				token.Span{},
			)
		}

		grown := make([]token.Token, len(b.storage), cap(b.storage)+growthStep)
		copy(grown, b.storage)
		b.storage = grown
	}

	b.storage = append(b.storage, t)

	return token.Token{}
}

// PopFront returns the next pending token and true, or the zero Token and
// false if the queue is empty. Reaching empty releases the backing storage
// so the next Append starts from a fresh slice.
//
// In guarded mode, an internal counter/length mismatch returns a
// Fatal(InternalError) token and false rather than panicking.
func (b *Buf) PopFront() (token.Token, bool) {
	if b.Guard && b.head > len(b.storage) {
		return token.NewDiagnostic(
			token.Fatal,
			token.InternalError,
			token.Source{Component: "queue", Code: "queue_head_past_len"},
			token.Span{},
		), false
	}

	if b.head >= len(b.storage) {
		b.storage = nil
		b.head = 0

		return token.Token{}, false
	}

	t := b.storage[b.head]
	b.head++

	if b.head >= len(b.storage) {
		b.storage = nil
		b.head = 0
	}

	return t, true
}
