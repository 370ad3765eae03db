package dump_test

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"testing"

	"go.followtheprocess.codes/snapshot"
	"go.followtheprocess.codes/test"
	"go.tmplforge.dev/tmplforge/internal/lex/dump"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
)

var update = flag.Bool("update", false, "Update snapshots")

func sampleDump() dump.Dump {
	tokens := []token.Token{
		token.NewReal(token.Defered, token.Span{ByteOffsetInRegion: 0, GlobalByteOffset: 0, Length: 6}),
		token.NewReal(token.Newline, token.Span{ByteOffsetInRegion: 6, GlobalByteOffset: 6, Length: 1}),
		token.NewDiagnostic(
			token.Warning,
			token.UnwantedWhiteSpace,
			token.Source{Component: "scanner", Code: "instruction_whitespace_before_open_paren", GlobalOffset: 7},
			token.Span{GlobalByteOffset: 7},
		),
	}

	return dump.FromTokens(tokens)
}

func TestFromTokens(t *testing.T) {
	d := sampleDump()

	test.Equal(t, len(d.Tokens), 3)
	test.Equal(t, d.Tokens[0].Tag, "Real")
	test.Equal(t, d.Tokens[0].Kind, "Defered")
	test.Equal(t, d.Tokens[1].Kind, "Newline")
	test.Equal(t, d.Tokens[2].Tag, "Warning")
	test.Equal(t, d.Tokens[2].ErrKind, "UnwantedWhiteSpace")
}

func TestJSONExporterRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	test.Ok(t, dump.JSONExporter{}.Export(buf, sampleDump()))

	var decoded dump.Dump
	test.Ok(t, json.Unmarshal(buf.Bytes(), &decoded))
	test.Equal(t, len(decoded.Tokens), 3)
	test.Equal(t, decoded.Tokens[0].Kind, "Defered")
}

func TestYAMLExporterProducesOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	test.Ok(t, dump.YAMLExporter{}.Export(buf, sampleDump()))
	test.True(t, buf.Len() > 0)
}

func TestTOMLExporterProducesOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	test.Ok(t, dump.TOMLExporter{}.Export(buf, sampleDump()))
	test.True(t, buf.Len() > 0)
}

func TestByNameUnknown(t *testing.T) {
	_, err := dump.ByName("csv")
	test.Err(t, err)
}

func TestJSONExporterSnapshot(t *testing.T) {
	snap := snapshot.New(t, snapshot.Update(*update), snapshot.Color(os.Getenv("CI") == ""))

	buf := &bytes.Buffer{}
	test.Ok(t, dump.JSONExporter{}.Export(buf, sampleDump()))

	snap.Snap(buf.String())
}

func TestByNameKnown(t *testing.T) {
	for _, name := range []string{"json", "yaml", "toml"} {
		_, err := dump.ByName(name)
		test.Ok(t, err)
	}
}
