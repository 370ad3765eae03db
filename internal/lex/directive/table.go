// Package directive provides the instruction name lookup the scanner
// consults when it sees "@name(" contiguous with the sigil: a small,
// swappable registry mapping directive names to the [token.Kind] they
// produce. Only "include" ships by default, matching the one directive the
// core currently understands, but the table can be extended from TOML or
// YAML so a host application can register more without touching the
// scanner itself.
package directive

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
	"go.yaml.in/yaml/v4"
)

// Table maps a directive name to the token kind the scanner should emit
// for its header token (e.g. "include" -> [token.Include]).
type Table struct {
	entries map[string]token.Kind
}

// Default returns the table the scanner uses when none is configured: the
// single "include" entry the core specifies today.
func Default() *Table {
	return &Table{entries: map[string]token.Kind{"include": token.Include}}
}

// New returns an empty table; callers add entries with Set or load one
// with LoadTOML/LoadYAML.
func New() *Table {
	return &Table{entries: make(map[string]token.Kind)}
}

// Set registers name against kind, overwriting any existing entry.
func (t *Table) Set(name string, kind token.Kind) {
	if t.entries == nil {
		t.entries = make(map[string]token.Kind)
	}

	t.entries[name] = kind
}

// Lookup reports the [token.Kind] registered for the exact byte sequence
// name, and whether an entry exists. Matching is case-sensitive, per the
// core's 7-byte exact match on "include".
func (t *Table) Lookup(name []byte) (token.Kind, bool) {
	kind, ok := t.entries[string(name)]
	return kind, ok
}

// fileFormat is the on-disk shape for both the TOML and YAML loaders: a
// flat table of directive name to kind name, e.g. `include = "Include"`.
type fileFormat struct {
	Directives map[string]string `toml:"directives" yaml:"directives"`
}

// kindByName resolves the handful of body kinds that make sense as a
// directive header. Unrecognised names are a load error, not a silent
// Unknown entry.
func kindByName(name string) (token.Kind, error) {
	switch name {
	case "Include":
		return token.Include, nil
	default:
		return token.Unknown, fmt.Errorf("directive: unrecognised token kind %q", name)
	}
}

func fromFileFormat(ff fileFormat) (*Table, error) {
	t := New()

	for name, kindName := range ff.Directives {
		kind, err := kindByName(kindName)
		if err != nil {
			return nil, fmt.Errorf("directive: loading %q: %w", name, err)
		}

		t.Set(name, kind)
	}

	return t, nil
}

// LoadTOML reads a directive table from TOML of the form:
//
//	[directives]
//	include = "Include"
func LoadTOML(r io.Reader) (*Table, error) {
	var ff fileFormat
	if _, err := toml.NewDecoder(r).Decode(&ff); err != nil {
		return nil, fmt.Errorf("directive: decoding toml: %w", err)
	}

	return fromFileFormat(ff)
}

// LoadYAML reads a directive table from YAML of the form:
//
//	directives:
//	  include: Include
func LoadYAML(r io.Reader) (*Table, error) {
	var ff fileFormat
	if err := yaml.NewDecoder(r).Decode(&ff); err != nil {
		return nil, fmt.Errorf("directive: decoding yaml: %w", err)
	}

	return fromFileFormat(ff)
}
