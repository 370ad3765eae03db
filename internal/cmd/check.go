package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.tmplforge.dev/tmplforge/internal/app"
)

const checkLong = `
The path argument may be a directory or a file.

If it is the name of a single template file, then this file alone is
checked for validity.

If it is a directory, this directory is scanned recursively for all
files with the '.tmpl' or '.html' extension and every matching file is
validated, concurrently.
`

// check returns the check subcommand.
func check() (*cli.Command, error) {
	var options app.CheckOptions

	var path string

	return cli.New(
		"check",
		cli.Short("Check template files for syntax errors"),
		cli.Long(checkLong),
		cli.Arg(&path, "path", "The path to check", cli.ArgDefault(".")),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			a := app.New(options.Debug, version, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())

			return a.Check(ctx, path, cmd.Stderr(), options)
		}),
	)
}
