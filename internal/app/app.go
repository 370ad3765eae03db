// Package app implements the functionality behind tmplforge's CLI: the
// internal/cmd package is simply the entrypoint wiring flags and args onto
// the exported methods here.
package app

import (
	"io"

	"go.followtheprocess.codes/log"
)

// App holds the state shared by every tmplforge subcommand: where output
// goes, and the logger used for --debug diagnostics.
type App struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
	version string
}

// New returns a new [App].
func New(debug bool, version string, stdin io.Reader, stdout, stderr io.Writer) App {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	logger := log.New(
		stderr,
		log.WithLevel(level),
		log.Prefix("tmplforge"),
	)

	return App{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
		version: version,
	}
}

