package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.followtheprocess.codes/test"
	"go.tmplforge.dev/tmplforge/internal/lex/resolver"
	"go.tmplforge.dev/tmplforge/internal/lex/scanner"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
	"go.uber.org/goleak"
)

// TestResolveInclude covers a simple include: "before@include(file.html)after"
// where file.html contains "INC".
func TestResolveInclude(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	test.Ok(t, os.WriteFile(filepath.Join(dir, "file.html"), []byte("INC"), 0o644))

	sc := scanner.New(nil)
	res := resolver.New(sc)
	res.SetGuard(true)
	res.SetRootDir(dir)

	sc.PushSource("root.html", true, []byte("before@include(file.html)after"))

	got := drainWithoutStateChange(res)

	var kinds []string
	for _, tok := range got {
		kinds = append(kinds, tok.Tag.String()+":"+tok.Kind.String())
	}

	want := []string{
		"Real:Defered",
		"Phantom:Include",
		"Phantom:OpenParen",
		"Phantom:Defered",
		"Phantom:CloseParen",
		"Real:Defered",
		"Real:Defered",
	}

	test.EqualFunc(t, kinds, want, func(a, b []string) bool {
		if len(a) != len(b) {
			return false
		}

		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}

		return true
	}, test.Context("got=%v", kinds))

	test.Equal(t, got[0].Tag, token.Real)

	raw, ok := sc.SpanSlice(got[3].Span)
	test.True(t, ok)
	test.Equal(t, string(raw), "file.html")

	raw, ok = sc.SpanSlice(got[5].Span)
	test.True(t, ok)
	test.Equal(t, string(raw), "INC")

	raw, ok = sc.SpanSlice(got[6].Span)
	test.True(t, ok)
	test.Equal(t, string(raw), "after")
}

// drainWithoutStateChange drains every token but filters out the opaque
// StateChange markers, since callers are meant to ignore them.
func drainWithoutStateChange(r *resolver.Resolver) []token.Token {
	var got []token.Token

	for {
		tok, ok := r.Next()
		if !ok {
			break
		}

		if tok.Tag == token.StateChange {
			continue
		}

		got = append(got, tok)
	}

	return got
}

func TestMissingIncludeFileFailsTheBatch(t *testing.T) {
	dir := t.TempDir()

	sc := scanner.New(nil)
	res := resolver.New(sc)
	res.SetGuard(true)
	res.SetRootDir(dir)

	sc.PushSource("root.html", true, []byte("@include(nope.html)"))

	got := drainWithoutStateChange(res)

	last := got[len(got)-1]
	test.Equal(t, last.Tag, token.Error)
	test.Equal(t, last.ErrKind, token.InstructionError)

	// The Include header is provisionally retagged to Phantom the moment
	// it is recognized as a directive attempt, but the include never
	// resolved, so the whole batch is untagged back to Real: the directive
	// renders as literal content rather than half-disappearing.
	test.Equal(t, got[0].Tag, token.Real)
	test.Equal(t, got[0].Kind, token.Include)

	test.Equal(t, got[1].Tag, token.Real, test.Context("OpenParen was never finalized, so it stays Real"))
}

func TestPathEscapeIsRejected(t *testing.T) {
	dir := t.TempDir()

	sc := scanner.New(nil)
	res := resolver.New(sc)
	res.SetGuard(true)
	res.SetRootDir(dir)

	sc.PushSource("root.html", true, []byte("@include(../escape.html)"))

	got := drainWithoutStateChange(res)

	last := got[len(got)-1]
	test.Equal(t, last.Tag, token.Error)
	test.Equal(t, last.ErrKind, token.InstructionError)
}

func TestEmptyIncludePathReportsMissingArgsButStillRetags(t *testing.T) {
	dir := t.TempDir()

	sc := scanner.New(nil)
	res := resolver.New(sc)
	res.SetGuard(true)
	res.SetRootDir(dir)

	sc.PushSource("root.html", true, []byte("@include()"))

	got := drainWithoutStateChange(res)

	var sawMissingArgs bool

	for _, tok := range got {
		if tok.Tag == token.Error && tok.ErrKind == token.InstructionMissingArgs {
			sawMissingArgs = true
		}
	}

	test.True(t, sawMissingArgs)

	for _, tok := range got {
		if tok.Tag == token.Real && (tok.Kind == token.Include || tok.Kind == token.OpenParen || tok.Kind == token.CloseParen) {
			t.Fatalf("directive token %s was not retagged to Phantom", tok)
		}
	}
}

func TestWhitespaceBeforeOpenParenIsTolerated(t *testing.T) {
	dir := t.TempDir()
	test.Ok(t, os.WriteFile(filepath.Join(dir, "f.html"), []byte("Z"), 0o644))

	sc := scanner.New(nil)
	res := resolver.New(sc)
	res.SetGuard(true)
	res.SetRootDir(dir)

	sc.PushSource("root.html", true, []byte("@include (f.html)"))

	got := drainWithoutStateChange(res)

	var sawWarning bool

	for _, tok := range got {
		if tok.Tag == token.Warning && tok.ErrKind == token.UnwantedWhiteSpace {
			sawWarning = true
		}
	}

	test.True(t, sawWarning, test.Context("got=%v", got))
}
