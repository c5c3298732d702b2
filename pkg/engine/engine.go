// Package engine implements the narrative-state machine: scene navigation,
// the quality store, choice compilation and the deck/card/hand layer. An
// Engine owns exactly one GameState and drives one UI; all calls are
// synchronous and single-threaded.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/narrative-engine/pkg/content"
	"github.com/jwebster45206/narrative-engine/pkg/game"
	"github.com/jwebster45206/narrative-engine/pkg/rng"
	"github.com/jwebster45206/narrative-engine/pkg/script"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// Engine drives one game session. The game definition is shared and
// read-only; the state is exclusively owned.
type Engine struct {
	ui     UI
	game   *game.Game
	logger *slog.Logger

	st     *state.GameState
	rand   *rng.Generator
	runner *script.Runner

	// choiceCache is valid from the moment the navigator settles on a
	// non-terminal scene until the next commit (choose/play/navigation).
	choiceCache []Choice
	cacheValid  bool

	accessors  map[string]*qualityAccessor
	transcript []any
}

// New creates an engine for the given definition. The UI may be NullUI for
// headless use.
func New(ui UI, g *game.Game, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ui:     ui,
		game:   g,
		logger: logger,
		runner: script.NewRunner(),
	}
}

// State returns the live game state. Callers must treat it as read-only;
// serialize it for saves.
func (e *Engine) State() *state.GameState {
	return e.st
}

// ExportableState returns the state aggregate for serialization. The
// returned value aliases live state; clone it (e.g. via JSON) to keep a
// snapshot.
func (e *Engine) ExportableState() *state.GameState {
	return e.st
}

// IsGameOver reports whether the session reached the terminal state.
func (e *Engine) IsGameOver() bool {
	return e.st != nil && e.st.GameOver
}

// CurrentScene returns the scene the navigator last settled on.
func (e *Engine) CurrentScene() (*game.Scene, error) {
	if e.st == nil || e.st.SceneID == "" {
		return nil, ErrNoCurrentScene
	}
	scene := e.game.Scenes[e.st.SceneID]
	if scene == nil {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, e.st.SceneID)
	}
	return scene, nil
}

// CurrentChoices returns the cached choice list for the current scene, or
// nil if no choices are being displayed.
func (e *Engine) CurrentChoices() []Choice {
	if !e.cacheValid {
		return nil
	}
	return e.choiceCache
}

// Transcript returns the accumulated transcript when the state has
// transcripts enabled.
func (e *Engine) Transcript() []any {
	return e.transcript
}

// BeginGame starts a fresh session. With seeds, the random stream is fully
// determined by them; without, a unique stream is drawn from the wall clock
// and process counter.
func (e *Engine) BeginGame(seeds ...any) error {
	if len(seeds) > 0 {
		e.rand = rng.FromSeeds(seeds...)
	} else {
		e.rand = rng.FromUnique()
	}

	e.st = state.New()
	e.st.RootSceneID = e.game.RootScene
	if e.st.RootSceneID == "" {
		e.st.RootSceneID = e.game.FirstScene
	}
	if e.st.RootSceneID == "" {
		e.st.RootSceneID = "root"
	}
	e.transcript = nil
	e.invalidateChoices()
	e.setUpQualities()

	e.ui.BeginGame()

	first := e.game.FirstScene
	if first == "" {
		first = e.st.RootSceneID
	}
	return e.GoToScene(first)
}

// SetState adopts a previously exported state and redisplays the current
// page, continuing the random stream from the captured replay point.
func (e *Engine) SetState(st *state.GameState) error {
	if len(st.RandomState) != 5 {
		return fmt.Errorf("%w: expected 5 words, got %d", ErrBadRandomState, len(st.RandomState))
	}
	e.st = st
	if e.st.Visits == nil {
		e.st.Visits = make(map[string]int)
	}
	if e.st.Qualities == nil {
		e.st.Qualities = make(map[string]any)
	}
	if e.st.Achievements == nil {
		e.st.Achievements = make(map[string]int)
	}
	if e.st.CurrentHands == nil {
		e.st.CurrentHands = make(map[string][]state.Card)
	}
	e.setUpQualities()
	e.loadAchievementQualities()
	e.rand = rng.FromState([5]uint32(st.RandomState))
	e.invalidateChoices()

	if e.IsGameOver() {
		e.ui.DisplayGameOver()
		return nil
	}

	scene, err := e.CurrentScene()
	if err != nil {
		return err
	}
	choices, _, err := e.compileChoices(scene)
	if err != nil {
		return err
	}
	e.choiceCache = choices
	e.cacheValid = choices != nil
	e.ui.NewPage()
	e.ui.RemoveChoices()
	e.ui.DisplayContent(e.st.CurrentContent, "")
	if err := e.displayChoices(); err != nil {
		return err
	}
	e.ui.SetSprites(e.st.Sprites)
	e.ui.SetBg(e.st.Bg)
	return nil
}

// GoToScene performs an explicit transition, resetting the goTo trail and
// bracketing the visible output.
func (e *Engine) GoToScene(id string) error {
	e.st.SceneIDsSinceGoTo = nil
	e.ui.BeginOutput()
	err := e.changeScene(id)
	e.ui.EndOutput()
	return err
}

// Choose commits the choice at index in the current choice list. Choosing
// invalidates the cache and navigates to the chosen scene. Out-of-range or
// unchoosable indices are user-input errors and leave state untouched.
func (e *Engine) Choose(index int) error {
	if !e.cacheValid {
		return ErrNoChoiceCache
	}
	if index < 0 || index >= len(e.choiceCache) {
		return fmt.Errorf("%w %d, only %d choices are available", ErrInvalidChoice, index, len(e.choiceCache))
	}
	choice := e.choiceCache[index]
	if !choice.CanChoose {
		return fmt.Errorf("%w: index %d", ErrCannotChoose, index)
	}

	if e.st.EnableTranscript {
		e.transcript = append(e.transcript, "> "+content.Text(choice.Title))
	}
	e.invalidateChoices()
	return e.GoToScene(choice.ID)
}

// ChooseSceneID navigates directly to a scene id, invalidating any
// displayed choices. Intended for trusted collaborators (e.g. debug UIs).
func (e *Engine) ChooseSceneID(id string) error {
	e.invalidateChoices()
	return e.GoToScene(id)
}

// Achieve awards an achievement: it is recorded in state and mirrored as
// the achievement_X and game_achievement_X quasi-qualities, bypassing
// validation since these are not declared qualities.
func (e *Engine) Achieve(name string) {
	e.st.Achievements[name] = 1
	e.st.Qualities["achievement_"+name] = float64(1)
	e.st.Qualities["game_achievement_"+name] = float64(1)
}

func (e *Engine) invalidateChoices() {
	e.choiceCache = nil
	e.cacheValid = false
}

// loadAchievementQualities mirrors persisted achievements back into the
// quality table after a state load.
func (e *Engine) loadAchievementQualities() {
	for name := range e.st.Achievements {
		e.st.Qualities["achievement_"+name] = float64(1)
	}
}

func (e *Engine) gameOver() {
	e.st.GameOver = true
	e.ui.DisplayGameOver()
}

// ---------------------------------------------------------------------------
// Scripted-unit evaluation. Errors inside a unit are authoring problems in
// content, not engine failures: they are logged and replaced with the
// documented default.

func (e *Engine) scriptView() script.StateView {
	return script.StateView{
		SceneID:        e.st.SceneID,
		PrevSceneID:    e.st.PrevSceneID,
		PrevTopSceneID: e.st.PrevTopSceneID,
		RootSceneID:    e.st.RootSceneID,
		JumpSceneID:    e.st.JumpSceneID,
		GameOver:       e.st.GameOver,
		Visits:         e.st.Visits,
	}
}

// RunPredicate evaluates a predicate unit, returning def when the unit is
// absent or fails. Lua truthiness applies: only nil and false are false.
func (e *Engine) RunPredicate(p *script.Unit, def bool) bool {
	if p == nil {
		return def
	}
	v, err := e.runner.Call(p, e.scriptView(), engineQualities{e})
	if err != nil {
		e.logger.Error("predicate failed", "error", err, "scene", e.st.SceneID)
		return def
	}
	return v != nil && v != false
}

// RunExpression evaluates an expression unit, returning def when the unit
// is absent or fails.
func (e *Engine) RunExpression(expr *script.Unit, def any) any {
	if expr == nil {
		return def
	}
	v, err := e.runner.Call(expr, e.scriptView(), engineQualities{e})
	if err != nil {
		e.logger.Error("expression failed", "error", err, "scene", e.st.SceneID)
		return def
	}
	return v
}

func (e *Engine) runActions(actions []*script.Unit) {
	for _, action := range actions {
		if action == nil {
			continue
		}
		if _, err := e.runner.Call(action, e.scriptView(), engineQualities{e}); err != nil {
			e.logger.Error("action failed", "error", err, "scene", e.st.SceneID)
		}
	}
}

// QDisplay formats a value through a named display transform, implementing
// content.Evaluator.
func (e *Engine) QDisplay(value any, id string) string {
	n, isNum := toNumber(value)
	switch id {
	case "cardinal", "number":
		if isNum {
			return content.Cardinal(n)
		}
	case "ordinal":
		if isNum {
			return content.Ordinal(n)
		}
	case "fudge":
		if isNum {
			return content.Fudge(n)
		}
	default:
		qd := e.game.QDisplays[id]
		if qd == nil {
			e.logger.Error("undefined qdisplay", "qdisplay", id)
			break
		}
		if isNum {
			return content.FormatRange(n, qd.Content)
		}
	}
	return fmt.Sprint(value)
}

var _ content.Evaluator = (*Engine)(nil)

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
