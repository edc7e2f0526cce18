// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" default:"withargs" help:"Run a debate on a question"`
	Validate ValidateCmd `cmd:"" help:"Validate the configuration"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// RunCmd runs the full debate pipeline on one question.
type RunCmd struct {
	Question  string `arg:"" optional:"" help:"The question to debate"`
	File      string `short:"f" help:"Read the question from a file instead"`
	Mode      string `short:"m" help:"Run mode: minimal, standard or extended (prompted interactively when omitted)"`
	Config    string `short:"c" help:"Config file path (default: ./moot.toml)"`
	Out       string `short:"o" default:"." help:"Directory for report output"`
	Templates string `help:"Directory with prompt template overrides"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
}

// ValidateCmd parses and validates the configuration without running.
type ValidateCmd struct {
	Config string `short:"c" help:"Config file path (default: ./moot.toml)"`
}

// VersionCmd prints version information.
type VersionCmd struct{}

func parseCLI(args []string) (*kong.Context, *CLI, error) {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("moot"),
		kong.Description("Convene a panel of AI models to debate a question: independent answers, cross-critique, adjudication, and optional synthesis."),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := parser.Parse(args)
	return ctx, cli, err
}
