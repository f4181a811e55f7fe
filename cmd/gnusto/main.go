// Gnusto is a deterministic, data-driven game engine for text adventures,
// its world described entirely in sandboxed Lua (spec.md).
// Usage: gnusto [--version] [--plain] [--markdown] [--seed N] <game_directory>
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nathoo/questcore/blueprint"
	"github.com/nathoo/questcore/cli"
	"github.com/nathoo/questcore/engine"
	"github.com/nathoo/questcore/engine/narrate"
	"github.com/nathoo/questcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	plain := false
	markdown := false
	var gameDir string
	var seed int64
	haveSeed := false

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("gnusto %s (commit %s, built %s)\n", version, commit, date)
			return 0
		case "--plain":
			plain = true
		case "--markdown":
			markdown = true
		case "--seed":
			i++
			if i >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a numeric argument\n")
				return 2
			}
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				return 2
			}
			seed, haveSeed = n, true
		default:
			if gameDir == "" {
				gameDir = args[i]
			}
		}
	}

	if gameDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: gnusto [--version] [--plain] [--markdown] [--seed N] <game_directory>\n")
		return 2
	}

	compiled, err := blueprint.Load(gameDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		return 2
	}

	// --seed overrides the blueprint's declared RNGSeed, for deterministic
	// scripted playback and testing (spec.md §8 determinism property).
	if haveSeed {
		compiled.Blueprint.RNGSeed = seed
	}

	gameName := compiled.Blueprint.Title
	eng := engine.New(gameName, compiled.Blueprint, compiled.Vocab, compiled.Pipeline, compiled.Time, narrate.NewMessenger())

	if plain || !isTerminal() {
		var render *cli.MarkdownRenderer
		if markdown {
			render, _ = cli.NewMarkdownRenderer()
		}
		io := cli.NewStdIO(os.Stdin, os.Stdout, render)
		return cli.New(eng, io, gameName).Run()
	}

	return tui.Run(eng, gameName)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
