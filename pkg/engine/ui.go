package engine

import "github.com/jwebster45206/narrative-engine/pkg/state"

// Signal is the typed payload the engine emits at scene and quality
// transitions for collaborators that react to game events.
type Signal struct {
	Signal string `json:"signal"`
	Event  string `json:"event"` // scene-arrival, scene-departure, scene-display, quality-change
	ID     string `json:"id"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Now    any    `json:"now,omitempty"`
	Was    any    `json:"was,omitempty"`
}

// Choice is a resolved, displayable candidate presented to the player.
// Title and Subtitle are resolved content items.
type Choice struct {
	ID        string `json:"id"`
	Title     []any  `json:"title"`
	Subtitle  []any  `json:"subtitle,omitempty"`
	CanChoose bool   `json:"canChoose"`

	// Check display data, present when the target scene declares a check.
	CheckQuality string   `json:"checkQuality,omitempty"`
	SuccessProb  *float64 `json:"successProb,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`

	// Deck display decoration for hand scenes.
	IsDeck bool   `json:"isDeck,omitempty"`
	Image  string `json:"image,omitempty"`
}

// UI is the presentation interface the engine drives. Every method is a
// one-way notification; implementations render however they like. The
// engine calls these synchronously within a transition, bracketed by
// BeginOutput/EndOutput.
type UI interface {
	BeginGame()
	DisplayContent(items []any, faceImage string)
	DisplayChoices(choices []Choice)
	DisplayGameOver()
	RemoveChoices()
	BeginOutput()
	EndOutput()
	NewPage()
	SetStyle(style string)
	Signal(s Signal)
	SetBg(image string)
	SetSprites(sprites map[string]string)
	SetSpriteStyle(location string, style map[string]string)
	Audio(directive any)

	// Deck/card/hand display hooks, called instead of DisplayChoices when
	// the current scene is a hand.
	DisplayDecks(decks []Choice)
	DisplayHand(hand []state.Card, maxCards int)
	DisplayPinnedCards(cards []Choice)
}

// NullUI discards all output. Embed it to implement only the methods a
// collaborator cares about.
type NullUI struct{}

func (NullUI) BeginGame()                                              {}
func (NullUI) DisplayContent(items []any, faceImage string)            {}
func (NullUI) DisplayChoices(choices []Choice)                         {}
func (NullUI) DisplayGameOver()                                        {}
func (NullUI) RemoveChoices()                                          {}
func (NullUI) BeginOutput()                                            {}
func (NullUI) EndOutput()                                              {}
func (NullUI) NewPage()                                                {}
func (NullUI) SetStyle(style string)                                   {}
func (NullUI) Signal(s Signal)                                         {}
func (NullUI) SetBg(image string)                                      {}
func (NullUI) SetSprites(sprites map[string]string)                    {}
func (NullUI) SetSpriteStyle(location string, style map[string]string) {}
func (NullUI) Audio(directive any)                                     {}
func (NullUI) DisplayDecks(decks []Choice)                             {}
func (NullUI) DisplayHand(hand []state.Card, maxCards int)             {}
func (NullUI) DisplayPinnedCards(cards []Choice)                       {}

var _ UI = NullUI{}
