package token_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"go.followtheprocess.codes/test"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
)

func TestRetag(t *testing.T) {
	tests := []struct {
		name string
		in   token.Tag
		want token.Tag
	}{
		{name: "real becomes phantom", in: token.Real, want: token.Phantom},
		{name: "phantom stays phantom", in: token.Phantom, want: token.Phantom},
		{name: "warning untouched", in: token.Warning, want: token.Warning},
		{name: "error untouched", in: token.Error, want: token.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := token.Token{Tag: tt.in, Kind: token.Defered}
			got := tok.Retag()
			test.Equal(t, got.Tag, tt.want)
			test.Equal(t, got.Kind, tok.Kind, test.Context("retag must not touch Kind"))
		})
	}
}

func TestIs(t *testing.T) {
	tok := token.NewReal(token.Include, token.Span{})
	test.True(t, tok.Is(token.Real, token.Phantom))
	test.False(t, tok.Is(token.Phantom, token.Error))
}

func TestIsContentBearing(t *testing.T) {
	test.True(t, token.NewReal(token.Defered, token.Span{}).IsContentBearing())
	test.True(t, token.NewPhantom(token.Defered, token.Span{}).IsContentBearing())
	test.False(t, token.NewStateChange().IsContentBearing())
	test.False(t, token.NewDiagnostic(token.Error, token.NoInput, token.Source{}, token.Span{}).IsContentBearing())
}

func FuzzTokenString(f *testing.F) {
	for range 100 {
		f.Add(rand.Int(), rand.Int(), rand.Int())
	}

	f.Fuzz(func(t *testing.T, kind, start, length int) {
		tok := token.Token{
			Tag:  token.Real,
			Kind: token.Kind(kind),
			Span: token.Span{ByteOffsetInRegion: start, Length: length},
		}

		got := tok.String()
		want := fmt.Sprintf("<Token::%s:%s start=%d len=%d>", token.Real, token.Kind(kind), start, length)

		test.Equal(t, got, want)
	})
}
