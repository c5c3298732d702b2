package engine

import "errors"

// Fatal content/authoring errors. These indicate a broken game definition;
// the engine must be reloaded from a known-good state after one occurs.
var (
	ErrSceneNotFound  = errors.New("scene not found")
	ErrNoCurrentScene = errors.New("no current scene")
	ErrBadRandomState = errors.New("invalid random state")
	ErrGameOver       = errors.New("game is over")
)

// User-input errors. State is left untouched when these are returned.
var (
	ErrInvalidChoice = errors.New("no choice at index")
	ErrCannotChoose  = errors.New("choice is unavailable")
	ErrNoChoiceCache = errors.New("no choices are being displayed")
)

// DrawResult reports the outcome of a card draw. Failure results are
// expected, frequent conditions, not errors.
type DrawResult int

const (
	DrawOK DrawResult = iota
	// DrawNoSpace means the hand is at capacity.
	DrawNoSpace
	// DrawNoCard means no viewable, choosable card remains in the deck.
	DrawNoCard
)

func (r DrawResult) String() string {
	switch r {
	case DrawOK:
		return "ok"
	case DrawNoSpace:
		return "no_space_in_hand"
	case DrawNoCard:
		return "no_card_in_deck"
	default:
		return "unknown"
	}
}
