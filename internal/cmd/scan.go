package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"go.followtheprocess.codes/cli"
	"go.tmplforge.dev/tmplforge/internal/app"
)

const scanLong = `
The scan command tokenizes a single template file, resolving any
@include(path) directives inline, and prints the resulting token stream
to stdout: one token per line with the default text format, or a single
json, yaml or toml document with --format.

Included files are read relative to --root, which defaults to the
directory containing the scanned file.
`

// scan returns the scan subcommand.
func scan() (*cli.Command, error) {
	var (
		options        app.ScanOptions
		confirmEscapes bool
	)

	return cli.New(
		"scan",
		cli.Short("Tokenize a template file"),
		cli.Long(scanLong),
		cli.Arg(&options.File, "file", "Path to the template file"),
		cli.Flag(&options.RootDir, "root", 'r', "Root directory @include paths resolve against"),
		cli.Flag(&options.Format, "format", 'f', "Output format, one of (text|json|yaml|toml)", cli.FlagDefault("text")),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Flag(
			&confirmEscapes,
			"confirm-escapes",
			'c',
			"Prompt interactively before allowing an @include that escapes --root",
		),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			if confirmEscapes {
				options.EscapeDecider = escapePrompt(cmd)
			}

			a := app.New(options.Debug, version, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())

			return a.Scan(ctx, cmd.Stderr(), options)
		}),
	)
}

// escapePrompt builds an EscapeDecider that asks the user, via an interactive
// huh confirm, whether to allow an include path that escapes --root.
func escapePrompt(cmd *cli.Command) func(relativeFilename string) bool {
	return func(relativeFilename string) bool {
		var allow bool

		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("%q escapes the root directory, include it anyway?", relativeFilename)).
			Value(&allow)

		if err := confirm.Run(); err != nil {
			return false
		}

		return allow
	}
}
