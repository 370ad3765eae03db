package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.tmplforge.dev/tmplforge/internal/diag"
	"go.tmplforge.dev/tmplforge/internal/lex/dump"
	"go.tmplforge.dev/tmplforge/internal/lex/resolver"
	"go.tmplforge.dev/tmplforge/internal/lex/scanner"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
)

// ScanOptions are the options passed to the scan subcommand.
type ScanOptions struct {
	// File is the template file to tokenize.
	File string
	// RootDir is the directory @include paths are resolved against. Empty
	// defaults to the scanned file's own directory.
	RootDir string
	// Format is the output format for the token stream: "text" (default,
	// one "<Token::...>" line per token) or one of "json"/"yaml"/"toml"
	// for a structured [dump.Dump] document.
	Format string
	// Debug enables debug logging.
	Debug bool
	// EscapeDecider, if set, is consulted whenever an @include path would
	// escape RootDir, in place of the default unconditional rejection.
	EscapeDecider resolver.EscapeDecider
}

// Scan implements the scan subcommand: it tokenizes a single template file,
// resolving any @include directives inline, and prints the resulting token
// stream to stdout in the requested Format. Diagnostic tokens are
// additionally rendered to diagStream via [diag.PrettyConsoleHandler]. It
// returns an error if any Error or Fatal token is delivered.
func (a App) Scan(_ context.Context, diagStream io.Writer, options ScanOptions) error {
	a.logger.Debug("Scanning file", slog.String("file", options.File))

	sc := scanner.New(nil)
	res := resolver.New(sc)
	res.SetGuard(options.Debug)

	if options.EscapeDecider != nil {
		res.SetEscapeDecider(options.EscapeDecider)
	}

	rootDir := options.RootDir
	if rootDir == "" {
		rootDir = dirOf(options.File)
	}

	res.SetRootDir(rootDir)

	handler := diag.PrettyConsoleHandler(diagStream, res)

	src, err := os.ReadFile(options.File)
	if err != nil {
		return fmt.Errorf("could not scan %s: %w", options.File, err)
	}

	if diagTok := sc.PushSource(baseName(options.File), true, src); diagTok != (token.Token{}) {
		handler(diagTok)
		return fmt.Errorf("could not scan %s: %s", options.File, diagTok.ErrKind)
	}

	format := options.Format
	if format == "" {
		format = "text"
	}

	var exporter dump.Exporter

	if format != "text" {
		var err error

		exporter, err = dump.ByName(format)
		if err != nil {
			return err
		}
	}

	var (
		failed    bool
		delivered []token.Token
	)

	for {
		tok, ok := res.Next()
		if !ok {
			break
		}

		switch tok.Tag {
		case token.Warning:
			handler(tok)
		case token.Error, token.Fatal:
			handler(tok)

			failed = true
		case token.StateChange:
			// Opaque; callers ignore it.
			continue
		}

		if exporter != nil {
			delivered = append(delivered, tok)
		} else {
			fmt.Fprintln(a.stdout, tok.String())
		}
	}

	if exporter != nil {
		if err := exporter.Export(a.stdout, dump.FromTokens(delivered)); err != nil {
			return fmt.Errorf("could not export token stream: %w", err)
		}
	}

	if failed {
		return fmt.Errorf("%s failed to scan cleanly", options.File)
	}

	return nil
}
