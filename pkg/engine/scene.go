package engine

import (
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/content"
	"github.com/jwebster45206/narrative-engine/pkg/game"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// Symbolic transition targets resolved against the live state.
const (
	targetPrevScene        = "prevScene"
	targetPrevTopScene     = "prevTopScene"
	targetJumpScene        = "jumpScene"
	targetBackSpecialScene = "backSpecialScene"
)

func (e *Engine) sceneSignal(scene *game.Scene) string {
	if scene.Signal != "" {
		return scene.Signal
	}
	return e.game.SceneSignal
}

// changeScene is the transition core: resolve the target, leave the old
// scene, arrive at the new one, capture the replay point, render, then
// follow any outgoing transition. It recurses through goTo chains until the
// navigator settles on a scene that presents choices or ends the game.
func (e *Engine) changeScene(id string) error {
	restorePage := false
	switch id {
	case targetPrevScene:
		id = e.st.PrevSceneID
	case targetPrevTopScene:
		id = e.st.PrevTopSceneID
	case targetJumpScene:
		id = e.st.JumpSceneID
	case targetBackSpecialScene:
		id = e.st.PrevSpecialSceneID
		restorePage = true
		// An empty back-pointer means we are outside any special scene,
		// allowing the next entry to take a fresh page snapshot.
		e.st.PrevSpecialSceneID = ""
	}
	scene := e.game.Scenes[id]
	if scene == nil {
		return fmt.Errorf("%w: %q", ErrSceneNotFound, id)
	}

	// Leave the previous scene.
	fromID := e.st.SceneID
	if fromID != "" {
		e.st.PrevSceneID = fromID
		if scene.IsTop {
			e.st.PrevTopSceneID = fromID
		}
		if scene.IsSpecial && e.st.PrevSpecialSceneID == "" {
			e.st.TempCurrentContent = append([]any(nil), e.st.CurrentContent...)
			e.st.PrevSpecialSceneID = fromID
		}
		if from := e.game.Scenes[fromID]; from != nil {
			e.runActions(from.OnDeparture)
			if sig := e.sceneSignal(from); sig != "" {
				e.ui.Signal(Signal{Signal: sig, Event: "scene-departure", ID: fromID, To: id})
			}
		}
	}

	// Arrive.
	e.st.SceneID = id
	e.st.SceneIDsSinceGoTo = append(e.st.SceneIDsSinceGoTo, id)
	if scene.SetRoot {
		e.st.RootSceneID = id
	}
	if scene.SetJump != "" {
		e.st.JumpSceneID = scene.SetJump
	}
	if scene.CountVisitsMax > 0 {
		if v := e.st.Visits[id]; v < scene.CountVisitsMax {
			e.st.Visits[id] = v + 1
		}
	}
	// Returning from a special scene restores the page as it was; the
	// arrival actions must not run a second time.
	if !restorePage {
		e.runActions(scene.OnArrival)
		if scene.Call != "" {
			if callScene := e.game.Scenes[scene.Call]; callScene != nil {
				e.runActions(callScene.OnArrival)
			}
		}
	}
	if sig := e.sceneSignal(scene); sig != "" {
		s := Signal{Signal: sig, Event: "scene-arrival", ID: id}
		if fromID != "" {
			s.From = fromID
		}
		e.ui.Signal(s)
	}

	// Arrival is done with everything that can consume randomness except
	// the outgoing transition, which recurses back through here. Capture
	// the replay point for resumed saves.
	rs := e.rand.State()
	e.st.RandomState = rs[:]

	if err := e.displaySceneContent(restorePage); err != nil {
		return err
	}
	if scene.SetBg != "" {
		e.st.Bg = scene.SetBg
		e.ui.SetBg(scene.SetBg)
	}
	if scene.SetSprites != nil {
		e.st.Sprites = scene.SetSprites
		e.ui.SetSprites(scene.SetSprites)
	}
	if scene.Audio != nil {
		e.ui.Audio(scene.Audio)
	}
	if scene.SetTopLeftStyle != nil {
		e.ui.SetSpriteStyle("topLeft", scene.SetTopLeftStyle)
	}
	if scene.SetTopRightStyle != nil {
		e.ui.SetSpriteStyle("topRight", scene.SetTopRightStyle)
	}
	if scene.SetBottomLeftStyle != nil {
		e.ui.SetSpriteStyle("bottomLeft", scene.SetBottomLeftStyle)
	}
	if scene.SetBottomRightStyle != nil {
		e.ui.SetSpriteStyle("bottomRight", scene.SetBottomRightStyle)
	}
	if scene.Achievement != "" {
		e.Achieve(scene.Achievement)
	}

	// Outgoing transitions, in precedence order. A goTo block with no
	// valid entry falls through to choices, never to goToRef.
	if scene.GameOver != nil && *scene.GameOver {
		e.gameOver()
		return nil
	}
	if len(scene.GoTo) > 0 {
		if target, ok := e.pickGoTo(scene.GoTo); ok {
			return e.changeScene(target)
		}
	} else if len(scene.GoToRef) > 0 {
		if ref, ok := e.pickGoTo(scene.GoToRef); ok {
			target, ok := e.st.Qualities[ref].(string)
			if !ok {
				return fmt.Errorf("goToRef quality %q does not hold a scene id", ref)
			}
			return e.changeScene(target)
		}
	}
	if scene.HasCheck() {
		p, _ := e.checkProbability(scene)
		if e.rollCheck(p) {
			return e.changeScene(scene.CheckSuccessGoTo)
		}
		return e.changeScene(scene.CheckFailureGoTo)
	}

	choices, _, err := e.compileChoices(scene)
	if err != nil {
		return err
	}
	e.choiceCache = choices
	e.cacheValid = choices != nil
	if choices == nil {
		// No way forward ends the game, unless the scene explicitly
		// opts out and parks the player here.
		if scene.GameOver == nil || *scene.GameOver {
			e.gameOver()
		}
		return nil
	}
	return e.displayChoices()
}

// pickGoTo filters entries by predicate and picks one: a single valid entry
// directly, several by a uniform random draw.
func (e *Engine) pickGoTo(entries []game.GoTo) (string, bool) {
	var valid []string
	for _, g := range entries {
		if g.Predicate == nil || e.RunPredicate(g.Predicate, false) {
			valid = append(valid, g.ID)
		}
	}
	switch len(valid) {
	case 0:
		return "", false
	case 1:
		return valid[0], true
	default:
		return valid[e.rand.Uint32()%uint32(len(valid))], true
	}
}

// displaySceneContent renders the current scene's page. With restorePage the
// pre-special-scene snapshot is shown instead of the scene's own content.
func (e *Engine) displaySceneContent(restorePage bool) error {
	scene, err := e.CurrentScene()
	if err != nil {
		return err
	}
	if sig := e.sceneSignal(scene); sig != "" {
		e.ui.Signal(Signal{Signal: sig, Event: "scene-display", ID: e.st.SceneID})
	}
	if restorePage {
		e.ui.NewPage()
		e.ui.DisplayContent(e.st.TempCurrentContent, scene.FaceImage)
		e.st.CurrentContent = append([]any(nil), e.st.TempCurrentContent...)
	} else if scene.NewPage {
		e.ui.NewPage()
		e.st.CurrentContent = nil
	}
	e.ui.SetStyle(scene.Style)
	e.ui.RemoveChoices()

	if scene.Content != nil && !restorePage {
		items := content.Resolve(scene.Content, e, true)
		if e.st.EnableTranscript {
			e.transcript = append(e.transcript, items...)
		}
		e.st.CurrentContent = append(e.st.CurrentContent, items...)
		e.ui.DisplayContent(items, scene.FaceImage)
	}
	e.runActions(scene.OnDisplay)
	return nil
}

// displayChoices presents the cached choice list. Hand scenes split their
// choices into decks and pinned cards and show the current hand instead of
// a flat list; deck availability is probed by a trial draw, which consumes
// randomness.
func (e *Engine) displayChoices() error {
	scene, err := e.CurrentScene()
	if err != nil {
		return err
	}
	if !scene.IsHand {
		if e.st.EnableTranscript {
			e.transcript = append(e.transcript, e.choiceCache)
		}
		e.ui.DisplayChoices(e.choiceCache)
		return nil
	}

	var decks, pinned []Choice
	for _, c := range e.choiceCache {
		target := e.game.Scenes[c.ID]
		if target == nil {
			return fmt.Errorf("%w: %q", ErrSceneNotFound, c.ID)
		}
		switch {
		case target.IsDeck:
			drawn, err := e.drawFromDeck(c.ID)
			if err != nil {
				return err
			}
			if drawn == nil {
				c.CanChoose = false
				if target.UnavailableSubtitle != nil {
					c.Subtitle = content.Resolve(target.UnavailableSubtitle, e, false)
				} else {
					c.Subtitle = []any{"No cards available from deck."}
				}
			} else {
				c.CanChoose = true
			}
			c.IsDeck = true
			c.Image = target.CardImage
			decks = append(decks, c)
		case target.IsPinnedCard:
			c.Image = target.CardImage
			pinned = append(pinned, c)
		}
	}

	if e.st.CurrentHands[e.st.SceneID] == nil {
		e.st.CurrentHands[e.st.SceneID] = []state.Card{}
	}
	hand := e.pruneHand(e.st.SceneID)

	e.ui.DisplayDecks(decks)
	e.ui.DisplayHand(hand, scene.MaxCards)
	e.ui.DisplayPinnedCards(pinned)
	return nil
}
