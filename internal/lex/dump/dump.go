// Package dump serializes a scanned token stream into external document
// formats, one Exporter per format.
package dump

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
	"go.yaml.in/yaml/v4"
)

// Entry is the serializable form of one delivered [token.Token].
type Entry struct {
	Tag     string      `json:"tag"               toml:"tag"               yaml:"tag"`
	Kind    string      `json:"kind,omitempty"    toml:"kind,omitempty"    yaml:"kind,omitempty"`
	ErrKind string      `json:"errKind,omitempty" toml:"errKind,omitempty" yaml:"errKind,omitempty"`
	Span    token.Span  `json:"span"              toml:"span"              yaml:"span"`
	Source  token.Source `json:"source,omitempty" toml:"source,omitempty"  yaml:"source,omitempty"`
}

// Dump is a complete token stream in serializable form.
type Dump struct {
	Tokens []Entry `json:"tokens" toml:"tokens" yaml:"tokens"`
}

// FromTokens builds a [Dump] from a delivered token slice.
func FromTokens(tokens []token.Token) Dump {
	entries := make([]Entry, 0, len(tokens))

	for _, tok := range tokens {
		entries = append(entries, Entry{
			Tag:     tok.Tag.String(),
			Kind:    tok.Kind.String(),
			ErrKind: tok.ErrKind.String(),
			Span:    tok.Span,
			Source:  tok.Source,
		})
	}

	return Dump{Tokens: entries}
}

// Exporter transforms a [Dump] into an external document format, written to w.
type Exporter interface {
	Export(w io.Writer, d Dump) error
}

// JSONExporter is an [Exporter] that renders a [Dump] as an indented JSON document.
type JSONExporter struct{}

// Export implements [Exporter] for [JSONExporter].
func (JSONExporter) Export(w io.Writer, d Dump) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(d)
}

// YAMLExporter is an [Exporter] that renders a [Dump] as a YAML document.
type YAMLExporter struct{}

const yamlIndent = 2

// Export implements [Exporter] for [YAMLExporter].
func (YAMLExporter) Export(w io.Writer, d Dump) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	return encoder.Encode(d)
}

// TOMLExporter is an [Exporter] that renders a [Dump] as a TOML document.
type TOMLExporter struct{}

// Export implements [Exporter] for [TOMLExporter].
func (TOMLExporter) Export(w io.Writer, d Dump) error {
	encoder := toml.NewEncoder(w)
	encoder.Indent = ""

	return encoder.Encode(d)
}

// ByName resolves a format name ("json", "yaml", "toml") to its [Exporter].
func ByName(name string) (Exporter, error) {
	switch name {
	case "json":
		return JSONExporter{}, nil
	case "yaml":
		return YAMLExporter{}, nil
	case "toml":
		return TOMLExporter{}, nil
	default:
		return nil, fmt.Errorf("dump: unknown format %q", name)
	}
}
