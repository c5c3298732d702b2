package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/narrative-engine/pkg/game"
)

func main() {
	seed := flag.String("seed", "", "fixed random seed for a replayable session")
	transcript := flag.Bool("transcript", true, "record a transcript for export")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <game.json>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	g, err := game.LoadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load game: %v\n", err)
		os.Exit(1)
	}
	if errs := g.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		fmt.Fprintf(os.Stderr, "%s: %d validation error(s)\n", flag.Arg(0), len(errs))
		os.Exit(1)
	}

	ui, err := NewConsoleUI(g, *seed, *transcript)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start game: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(ui,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
