// Package cmd implements tmplforge's CLI: the command/flag/arg wiring
// only, entirely generic over the actual behavior in internal/app.
package cmd

import (
	"context"
	"fmt"

	"go.followtheprocess.codes/cli"
)

//nolint:gochecknoglobals // These have to be here
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build builds and returns the tmplforge CLI.
func Build() (*cli.Command, error) {
	var debug bool

	return cli.New(
		"tmplforge",
		cli.Short("A template scanning and include-resolution toolkit"),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Example("Tokenize a template, resolving includes inline", "tmplforge scan ./page.tmpl"),
		cli.Example("Check every template file under a directory", "tmplforge check ./templates"),
		cli.Flag(&debug, "debug", 'd', "Enable debug logs"),
		cli.SubCommands(
			scan,
			check,
		),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Stdout(), "tmplforge: pass a subcommand (scan, check) or -h for help")

			return nil
		}),
	)
}
