package main

import (
	"fmt"
	"os"

	"github.com/jwebster45206/narrative-engine/pkg/game"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <game.json> [more.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	g, err := game.LoadFile(filename)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	errs := g.Validate()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		return fmt.Errorf("%s: %d validation error(s)", filename, len(errs))
	}

	fmt.Printf("%s is valid: %q, %d scenes\n", filename, g.Title, len(g.Scenes))
	return nil
}
