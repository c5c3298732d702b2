// Package state holds the serializable game-state aggregate. A GameState is
// the save file: round-tripping it through JSON and handing it back to an
// engine reproduces identical subsequent behavior, including RNG output.
package state

import (
	"time"

	"github.com/google/uuid"
)

// Card is one entry in a hand: a card scene id plus the display data
// captured when it was drawn.
type Card struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// GameState is the single mutable aggregate owned by one engine instance.
// All fields are plain JSON-compatible data; empty scene-id strings stand
// for "not set".
type GameState struct {
	ID        uuid.UUID `json:"id"`
	Game      string    `json:"game,omitempty"` // definition key, set by the session layer
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SceneID           string   `json:"sceneId"`
	SceneIDsSinceGoTo []string `json:"sceneIdsSinceGoTo,omitempty"`
	RootSceneID       string   `json:"rootSceneId"`
	PrevSceneID       string   `json:"prevSceneId,omitempty"`
	PrevTopSceneID    string   `json:"prevTopSceneId,omitempty"`
	// PrevSpecialSceneID is a one-level back-pointer, set only while
	// logically inside a special scene.
	PrevSpecialSceneID string `json:"prevSpecialSceneId,omitempty"`
	JumpSceneID        string `json:"jumpSceneId,omitempty"`
	GameOver           bool   `json:"gameOver"`

	Visits    map[string]int `json:"visits"`
	Qualities map[string]any `json:"qualities"`

	// RandomState is captured after all randomness-consuming logic of a
	// scene arrival, fixing the exact replay point for a resumed save.
	RandomState []uint32 `json:"currentRandomState,omitempty"`

	CurrentContent []any `json:"currentContent,omitempty"`
	// TempCurrentContent snapshots the page before entering a special
	// scene so back-navigation can restore it.
	TempCurrentContent []any `json:"tempCurrentContent,omitempty"`

	Achievements map[string]int    `json:"achievements,omitempty"`
	Bg           string            `json:"bg,omitempty"`
	Sprites      map[string]string `json:"sprites,omitempty"`

	// Reserved for the unfinished subroutine mechanism; no transition
	// currently pushes to the stack.
	SceneStack        []string `json:"sceneStack,omitempty"`
	JustReturned      bool     `json:"justReturned,omitempty"`
	JustReturnedStart bool     `json:"justReturnedStart,omitempty"`
	JustReturnedEnd   bool     `json:"justReturnedEnd,omitempty"`

	// Deck/card/hand extension: hand contents per hand scene.
	CurrentHands   map[string][]Card `json:"currentHands,omitempty"`
	LastDrawnCard  *Card             `json:"lastDrawnCard,omitempty"`
	LastPlayedCard string            `json:"lastPlayedCard,omitempty"`

	EnableTranscript bool `json:"enableTranscript,omitempty"`
	DisableSaves     bool `json:"disableSaves,omitempty"`
}

// New returns a blank state for a fresh game.
func New() *GameState {
	now := time.Now()
	return &GameState{
		ID:           uuid.New(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Visits:       make(map[string]int),
		Qualities:    make(map[string]any),
		Achievements: make(map[string]int),
		Sprites:      make(map[string]string),
		CurrentHands: make(map[string][]Card),
	}
}
