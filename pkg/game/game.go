// Package game defines the immutable, compiled game definition the engine
// traverses: scenes, qualities, display transforms and the tag lookup. A
// definition is loaded once and shared read-only across engine instances.
package game

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jwebster45206/narrative-engine/pkg/content"
	"github.com/jwebster45206/narrative-engine/pkg/script"
)

// Game is a complete compiled game definition.
type Game struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`

	FirstScene string `json:"firstScene,omitempty"`
	RootScene  string `json:"rootScene,omitempty"`

	// Default signal names applied to scenes/qualities that declare none.
	SceneSignal   string `json:"sceneSignal,omitempty"`
	QualitySignal string `json:"qualitySignal,omitempty"`

	Scenes    map[string]*Scene    `json:"scenes"`
	Qualities map[string]*Quality  `json:"qualities,omitempty"`
	QDisplays map[string]*QDisplay `json:"qdisplays,omitempty"`

	// TagLookup maps a tag to the set of scene ids carrying it.
	TagLookup map[string]map[string]bool `json:"tagLookup,omitempty"`
}

// Quality declares a persistent numeric variable. All fields are optional;
// a quality with none of min/max/signal/isValid needs no accessor overhead.
type Quality struct {
	Min     *float64     `json:"min,omitempty"`
	Max     *float64     `json:"max,omitempty"`
	Initial any          `json:"initial,omitempty"`
	Signal  string       `json:"signal,omitempty"`
	IsValid *script.Unit `json:"isValid,omitempty"`
}

// QDisplay is a user-defined display transform: an ordered list of range
// cases, first match wins.
type QDisplay struct {
	Content []content.RangeCase `json:"content"`
}

// TaggedSceneIDs returns the scene ids for a tag in a stable order.
func (g *Game) TaggedSceneIDs(tag string) []string {
	set := g.TagLookup[tag]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Decode parses a compiled game definition from JSON, populating scene ids
// from their map keys.
func Decode(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse game definition: %w", err)
	}
	if len(g.Scenes) == 0 {
		return nil, fmt.Errorf("game definition has no scenes")
	}
	for id, scene := range g.Scenes {
		if scene == nil {
			return nil, fmt.Errorf("scene %q is null", id)
		}
		scene.ID = id
	}
	return &g, nil
}
