package engine

import (
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/content"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// drawFromDeck picks one card scene from a deck at random, excluding cards
// already in the current hand. A nil result means the deck has nothing left
// to offer. The draw consumes one random number when the deck is non-empty.
func (e *Engine) drawFromDeck(deckID string) (*Choice, error) {
	deck := e.game.Scenes[deckID]
	if deck == nil {
		return nil, fmt.Errorf("%w: deck %q", ErrSceneNotFound, deckID)
	}
	viewable, _, err := e.compileChoices(deck)
	if err != nil {
		return nil, err
	}
	if viewable == nil {
		return nil, nil
	}

	inHand := make(map[string]bool)
	for _, card := range e.st.CurrentHands[e.st.SceneID] {
		inHand[card.ID] = true
	}
	var choosable []Choice
	for _, c := range viewable {
		target := e.game.Scenes[c.ID]
		if target == nil || !target.IsCard {
			continue
		}
		if c.CanChoose && !inHand[c.ID] {
			choosable = append(choosable, c)
		}
	}
	if len(choosable) == 0 {
		return nil, nil
	}
	pick := e.rand.Uint32() % uint32(len(choosable))
	return &choosable[pick], nil
}

// DrawCard draws from the named deck into the current hand. The hand is
// checked for space before any randomness is consumed, so a refused draw
// leaves the random stream untouched.
func (e *Engine) DrawCard(deckID string) (*state.Card, DrawResult, error) {
	scene, err := e.CurrentScene()
	if err != nil {
		return nil, DrawNoCard, err
	}
	hand := e.st.CurrentHands[e.st.SceneID]
	if scene.MaxCards <= len(hand) {
		return nil, DrawNoSpace, nil
	}
	choice, err := e.drawFromDeck(deckID)
	if err != nil {
		return nil, DrawNoCard, err
	}
	if choice == nil {
		return nil, DrawNoCard, nil
	}

	card := state.Card{
		ID:    choice.ID,
		Title: content.Text(choice.Title),
		Image: e.game.Scenes[choice.ID].CardImage,
	}
	e.st.LastDrawnCard = &card
	e.st.CurrentHands[e.st.SceneID] = append(hand, card)
	e.ui.DisplayHand(e.st.CurrentHands[e.st.SceneID], scene.MaxCards)
	return &card, DrawOK, nil
}

// PlayCard removes the card from the current hand and navigates to its
// scene.
func (e *Engine) PlayCard(cardID string) error {
	hand := e.st.CurrentHands[e.st.SceneID]
	for i, card := range hand {
		if card.ID == cardID {
			e.st.CurrentHands[e.st.SceneID] = append(hand[:i], hand[i+1:]...)
			break
		}
	}
	e.st.LastPlayedCard = cardID
	e.invalidateChoices()
	return e.GoToScene(cardID)
}

// PlayPinnedCard navigates to a pinned card's scene. Pinned cards are never
// held in the hand, so nothing is removed.
func (e *Engine) PlayPinnedCard(cardID string) error {
	e.invalidateChoices()
	return e.GoToScene(cardID)
}

// pruneHand drops cards whose scenes are no longer viewable, keeping hand
// order, and returns the updated hand.
func (e *Engine) pruneHand(sceneID string) []state.Card {
	hand := e.st.CurrentHands[sceneID]
	kept := hand[:0]
	for _, card := range hand {
		target := e.game.Scenes[card.ID]
		if target == nil {
			continue
		}
		if target.MaxVisits > 0 && e.st.Visits[card.ID] >= target.MaxVisits {
			continue
		}
		if !e.RunPredicate(target.ViewIf, true) {
			continue
		}
		kept = append(kept, card)
	}
	e.st.CurrentHands[sceneID] = kept
	return kept
}
