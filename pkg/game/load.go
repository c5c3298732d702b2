package game

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load reads a compiled game definition from r.
func Load(r io.Reader) (*Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read game definition: %w", err)
	}
	return Decode(data)
}

// LoadFile reads a compiled game definition from a JSON file.
func LoadFile(path string) (*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open game definition: %w", err)
	}
	defer f.Close()

	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// LoadDir loads every .json game definition in a directory, keyed by file
// name without extension.
func LoadDir(dir string) (map[string]*Game, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read games directory: %w", err)
	}

	games := make(map[string]*Game)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		g, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		games[strings.TrimSuffix(entry.Name(), ".json")] = g
	}
	return games, nil
}

// SortedIDs returns game map keys in a stable order for listings.
func SortedIDs(games map[string]*Game) []string {
	ids := make([]string, 0, len(games))
	for id := range games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
