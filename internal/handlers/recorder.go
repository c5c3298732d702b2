package handlers

import (
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// recorder implements engine.UI by collecting everything the engine displays
// during one request, so handlers can hand it back as the response body.
type recorder struct {
	engine.NullUI

	Content   []any
	FaceImage string
	Choices   []engine.Choice
	Decks     []engine.Choice
	Hand      []state.Card
	MaxCards  int
	Pinned    []engine.Choice
	Signals   []engine.Signal
	GameOver  bool
	Bg        string
	Sprites   map[string]string
	Style     string
}

func newRecorder() *recorder {
	return &recorder{}
}

// reset clears recorded output between the state-restoring redisplay and the
// operation whose output the caller actually wants.
func (r *recorder) reset() {
	*r = recorder{}
}

func (r *recorder) DisplayContent(items []any, faceImage string) {
	r.Content = append(r.Content, items...)
	if faceImage != "" {
		r.FaceImage = faceImage
	}
}

func (r *recorder) DisplayChoices(choices []engine.Choice)   { r.Choices = choices }
func (r *recorder) DisplayGameOver()                         { r.GameOver = true }
func (r *recorder) RemoveChoices()                           { r.Choices = nil }
func (r *recorder) NewPage()                                 { r.Content = nil }
func (r *recorder) SetStyle(style string)                    { r.Style = style }
func (r *recorder) Signal(s engine.Signal)                   { r.Signals = append(r.Signals, s) }
func (r *recorder) SetBg(image string)                       { r.Bg = image }
func (r *recorder) SetSprites(sprites map[string]string)     { r.Sprites = sprites }
func (r *recorder) DisplayDecks(decks []engine.Choice)       { r.Decks = decks }
func (r *recorder) DisplayPinnedCards(cards []engine.Choice) { r.Pinned = cards }

func (r *recorder) DisplayHand(hand []state.Card, maxCards int) {
	r.Hand = hand
	r.MaxCards = maxCards
}

var _ engine.UI = (*recorder)(nil)
