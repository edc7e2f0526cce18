// Package main is the entry point for the moot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// Pick up OPENROUTER_API_KEY and friends from a local .env if present.
	_ = godotenv.Load()
}

func main() {
	ctx, cli, err := parseCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case ctx.Command() == "version":
		fmt.Printf("moot version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	case ctx.Command() == "validate":
		err = cli.Validate.Run()
	default:
		err = cli.Run.Run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
