package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.followtheprocess.codes/msg"
	"go.tmplforge.dev/tmplforge/internal/diag"
	"go.tmplforge.dev/tmplforge/internal/lex/resolver"
	"go.tmplforge.dev/tmplforge/internal/lex/scanner"
	"go.tmplforge.dev/tmplforge/internal/lex/token"
	"golang.org/x/sync/errgroup"
)

// templateExtensions are the file extensions check walks for when given a
// directory.
var templateExtensions = map[string]bool{".tmpl": true, ".html": true}

// CheckOptions are the options passed to the check subcommand.
type CheckOptions struct {
	// Debug enables debug logging.
	Debug bool
}

// Check implements the check subcommand: path may be a single file or a
// directory, walked recursively for .tmpl/.html files. Every matching file
// is tokenized concurrently, one Scanner/Resolver pair per file; diagnostics
// for each file are rendered to diagStream and any Error/Fatal fails the
// whole check. Writes to diagStream from concurrent files may interleave at
// the line level.
func (a App) Check(ctx context.Context, path string, diagStream io.Writer, options CheckOptions) error {
	a.logger.Debug("Checking path", slog.String("path", path))

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("could not get path info: %w", err)
	}

	var paths []string

	if info.IsDir() {
		a.logger.Debug("Path is a directory", slog.String("path", path))

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && templateExtensions[filepath.Ext(p)] {
				paths = append(paths, p)
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("could not walk %s: %w", path, err)
		}
	} else {
		a.logger.Debug("Path is a file", slog.String("path", path))

		paths = []string{path}
	}

	a.logger.Debug("Checking template files", slog.Int("number", len(paths)))

	group := errgroup.Group{}

	for _, p := range paths {
		group.Go(func() error {
			return a.checkFile(p, diagStream, options.Debug)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, p := range paths {
		msg.Fsuccess(a.stdout, "%s is valid", p)
	}

	return nil
}

// checkFile runs a scan check on a single file: read, tokenize to
// exhaustion (resolving any @include), fail on the first Error/Fatal.
func (a App) checkFile(path string, diagStream io.Writer, guard bool) error {
	res := resolver.New(scanner.New(nil))
	res.SetGuard(guard)
	res.SetRootDir(filepath.Dir(path))

	handler := diag.PrettyConsoleHandler(diagStream, res)

	if diagTok := res.ReadFile(filepath.Base(path)); diagTok != (token.Token{}) {
		handler(diagTok)
		return fmt.Errorf("%s: %s", path, diagTok.ErrKind)
	}

	for {
		tok, ok := res.Next()
		if !ok {
			return nil
		}

		switch tok.Tag {
		case token.Warning:
			handler(tok)
		case token.Error, token.Fatal:
			handler(tok)
			return fmt.Errorf("%s: %s", path, tok.ErrKind)
		}
	}
}
