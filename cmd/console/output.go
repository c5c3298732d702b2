package main

import (
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// consoleSink receives engine output. The engine calls it synchronously
// while a command is applied; the model reads the accumulated fields
// afterward to rebuild the story and action panels.
type consoleSink struct {
	engine.NullUI

	// Pages holds the resolved content of every page shown so far, oldest
	// first. A transition that does not start a new page appends to the
	// last one.
	Pages [][]any

	Choices  []engine.Choice
	Decks    []engine.Choice
	Hand     []state.Card
	MaxCards int
	Pinned   []engine.Choice

	Signals  []engine.Signal
	GameOver bool
}

func newConsoleSink() *consoleSink {
	return &consoleSink{}
}

func (s *consoleSink) NewPage() {
	s.Pages = append(s.Pages, nil)
}

func (s *consoleSink) DisplayContent(items []any, faceImage string) {
	if len(s.Pages) == 0 {
		s.Pages = append(s.Pages, nil)
	}
	last := len(s.Pages) - 1
	s.Pages[last] = append(s.Pages[last], items...)
}

func (s *consoleSink) DisplayChoices(choices []engine.Choice) {
	s.Choices = choices
}

func (s *consoleSink) RemoveChoices() {
	s.Choices = nil
	s.Decks = nil
	s.Pinned = nil
}

func (s *consoleSink) DisplayDecks(decks []engine.Choice) {
	s.Decks = decks
}

func (s *consoleSink) DisplayHand(hand []state.Card, maxCards int) {
	s.Hand = hand
	s.MaxCards = maxCards
}

func (s *consoleSink) DisplayPinnedCards(cards []engine.Choice) {
	s.Pinned = cards
}

func (s *consoleSink) Signal(sig engine.Signal) {
	s.Signals = append(s.Signals, sig)
}

func (s *consoleSink) DisplayGameOver() {
	s.GameOver = true
}

var _ engine.UI = (*consoleSink)(nil)
