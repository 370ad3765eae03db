package directive_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/txtar"
	"go.tmplforge.dev/tmplforge/internal/lex/directive"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
)

// archiveFile returns the named file's contents from the shared testdata
// archive, failing the test if the archive or the file is missing.
func archiveFile(t *testing.T, name string) []byte {
	t.Helper()

	archive, err := txtar.ParseFile(filepath.Join("testdata", "tables.txtar"))
	test.Ok(t, err)

	for _, f := range archive.Files {
		if f.Name == name {
			return f.Data
		}
	}

	t.Fatalf("testdata/tables.txtar missing file %q", name)

	return nil
}

func TestDefault(t *testing.T) {
	table := directive.Default()

	kind, ok := table.Lookup([]byte("include"))
	test.True(t, ok)
	test.Equal(t, kind, token.Include)

	_, ok = table.Lookup([]byte("foreach"))
	test.False(t, ok)
}

func TestLookupCaseSensitive(t *testing.T) {
	table := directive.Default()

	_, ok := table.Lookup([]byte("Include"))
	test.False(t, ok)
}

func TestLoadTOML(t *testing.T) {
	src := archiveFile(t, "toml/valid.toml")

	table, err := directive.LoadTOML(bytes.NewReader(src))
	test.Ok(t, err)

	kind, ok := table.Lookup([]byte("include"))
	test.True(t, ok)
	test.Equal(t, kind, token.Include)
}

func TestLoadYAML(t *testing.T) {
	src := archiveFile(t, "yaml/valid.yaml")

	table, err := directive.LoadYAML(bytes.NewReader(src))
	test.Ok(t, err)

	kind, ok := table.Lookup([]byte("include"))
	test.True(t, ok)
	test.Equal(t, kind, token.Include)
}

func TestLoadTOMLUnrecognisedKind(t *testing.T) {
	src := archiveFile(t, "toml/unrecognised.toml")

	_, err := directive.LoadTOML(bytes.NewReader(src))
	test.Err(t, err)
}
