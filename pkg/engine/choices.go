package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/content"
	"github.com/jwebster45206/narrative-engine/pkg/game"
	"github.com/jwebster45206/narrative-engine/pkg/script"
)

// candidate is an expanded option bound to a concrete target scene id,
// carrying the option's overrides until defaults are filled in.
type candidate struct {
	id                  string
	title               *content.Template
	subtitle            *content.Template
	unavailableSubtitle *content.Template
	chooseIf            *script.Unit
	order               int
	priority            int
	frequency           game.Frequency
	selectionPriority   float64
}

func candidateFromOption(opt *game.Option, id string) *candidate {
	return &candidate{
		id:                  id,
		title:               opt.Title,
		subtitle:            opt.Subtitle,
		unavailableSubtitle: opt.UnavailableSubtitle,
		chooseIf:            opt.ChooseIf,
		order:               opt.Order,
		priority:            opt.Priority,
		frequency:           opt.Frequency,
	}
}

// expandOptions resolves each option to concrete scene ids. Options failing
// their own view predicate are skipped before expansion. A direct @id
// replaces an earlier candidate for the same id; tag expansion only adds
// ids not already present, so the first-listed option wins.
func (e *Engine) expandOptions(options []*game.Option) ([]*candidate, error) {
	var ordered []*candidate
	index := make(map[string]int)

	for _, opt := range options {
		if !e.RunPredicate(opt.ViewIf, true) {
			continue
		}
		switch {
		case strings.HasPrefix(opt.ID, "@"):
			id := opt.ID[1:]
			c := candidateFromOption(opt, id)
			if at, ok := index[id]; ok {
				ordered[at] = c
			} else {
				index[id] = len(ordered)
				ordered = append(ordered, c)
			}
		case strings.HasPrefix(opt.ID, "#"):
			for _, id := range e.game.TaggedSceneIDs(opt.ID[1:]) {
				if _, ok := index[id]; ok {
					continue
				}
				index[id] = len(ordered)
				ordered = append(ordered, candidateFromOption(opt, id))
			}
		default:
			return nil, fmt.Errorf("option id %q must start with @ or #", opt.ID)
		}
	}
	return ordered, nil
}

// filterViewable drops candidates whose target scene is past its visit cap
// or fails its view predicate. An unknown target id is a fatal content
// error.
func (e *Engine) filterViewable(cands []*candidate) ([]*candidate, error) {
	out := cands[:0:0]
	for _, c := range cands {
		scene := e.game.Scenes[c.id]
		if scene == nil {
			return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, c.id)
		}
		if scene.MaxVisits > 0 && e.st.Visits[c.id] >= scene.MaxVisits {
			continue
		}
		if !e.RunPredicate(scene.ViewIf, true) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// fillSelectionDefaults resolves order/priority/frequency: the option's
// value, else the target scene's, else 0 / 1 / 100. An explicit null
// frequency survives as the always-include sentinel.
func (e *Engine) fillSelectionDefaults(cands []*candidate) {
	for _, c := range cands {
		scene := e.game.Scenes[c.id]
		if c.order == 0 {
			c.order = scene.Order
		}
		if c.priority == 0 {
			c.priority = scene.Priority
		}
		if c.priority == 0 {
			c.priority = 1
		}
		if !c.frequency.Set {
			c.frequency = scene.Frequency
		}
		if !c.frequency.Set {
			c.frequency = game.Frequency{Set: true, Value: 100}
		}
		c.selectionPriority = 0
	}
}

// filterByPriority performs the two-phase selection. Phase 1 accumulates
// whole priority tiers until the minimum is met, never splitting a tier to
// satisfy it. Phase 2 trims the final tier to the maximum using a
// random()/frequency score, ascending; a null frequency scores 0 and always
// wins. Zero min/max mean unbounded.
func (e *Engine) filterByPriority(cands []*candidate, minChoices, maxChoices int) []*candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].priority > cands[j].priority
	})

	var committed, tier []*candidate
	lastPriority := 0
	lastSet := false
	for i, c := range cands {
		if !lastSet || c.priority != lastPriority {
			if lastSet && (minChoices == 0 || i >= minChoices) {
				break
			}
			committed = append(committed, tier...)
			tier = nil
			lastPriority = c.priority
			lastSet = true
		}
		tier = append(tier, c)
	}

	if maxChoices == 0 || maxChoices >= len(committed)+len(tier) {
		return append(committed, tier...)
	}

	for _, c := range tier {
		if c.frequency.Null {
			c.selectionPriority = 0
		} else {
			c.selectionPriority = e.rand.Float64() / c.frequency.Value
		}
	}
	sort.SliceStable(tier, func(i, j int) bool {
		return tier[i].selectionPriority < tier[j].selectionPriority
	})
	extra := maxChoices - len(committed)
	if extra > len(tier) {
		extra = len(tier)
	}
	return append(committed, tier[:extra]...)
}

// choiceDisplayData materializes display data for the selected candidates.
func (e *Engine) choiceDisplayData(selected []*candidate) ([]Choice, int, error) {
	choices := make([]Choice, 0, len(selected))
	numChoosable := 0

	for _, c := range selected {
		scene := e.game.Scenes[c.id]
		if scene == nil {
			return nil, 0, fmt.Errorf("%w: %q", ErrSceneNotFound, c.id)
		}

		canChoose := true
		if c.chooseIf != nil {
			canChoose = e.RunPredicate(c.chooseIf, true)
		}
		if canChoose && scene.ChooseIf != nil {
			canChoose = e.RunPredicate(scene.ChooseIf, true)
		}

		title := c.title
		if title == nil {
			title = scene.Title
		}
		if title == nil {
			return nil, 0, fmt.Errorf("scene %q has no title for choice display", c.id)
		}

		var subtitle *content.Template
		if !canChoose {
			subtitle = c.unavailableSubtitle
			if subtitle == nil {
				subtitle = scene.UnavailableSubtitle
			}
		}
		if subtitle == nil {
			subtitle = c.subtitle
		}
		if subtitle == nil {
			subtitle = scene.Subtitle
		}

		choice := Choice{
			ID:        c.id,
			CanChoose: canChoose,
			Title:     content.Resolve(title, e, false),
		}
		if subtitle != nil {
			choice.Subtitle = content.Resolve(subtitle, e, false)
		}
		if p, ok := e.checkProbability(scene); ok {
			prob := p
			choice.CheckQuality = scene.CheckQuality
			choice.SuccessProb = &prob
			choice.Difficulty = DifficultyLabel(prob)
		}

		choices = append(choices, choice)
		if canChoose {
			numChoosable++
		}
	}
	return choices, numChoosable, nil
}

// compileChoices builds the displayable choice list for a scene. A nil list
// means "no choices" (distinct from an empty one), which the navigator
// treats as an implicit game over unless the scene suppresses it.
func (e *Engine) compileChoices(scene *game.Scene) ([]Choice, int, error) {
	var choices []Choice
	numChoosable := 0

	if len(scene.Options) > 0 {
		cands, err := e.expandOptions(scene.Options)
		if err != nil {
			return nil, 0, err
		}
		cands, err = e.filterViewable(cands)
		if err != nil {
			return nil, 0, err
		}
		e.fillSelectionDefaults(cands)
		cands = e.filterByPriority(cands, scene.MinChoices, scene.MaxChoices)

		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].order < cands[j].order
		})

		choices, numChoosable, err = e.choiceDisplayData(cands)
		if err != nil {
			return nil, 0, err
		}
	}

	// With nothing choosable, fall back to a single choice returning to
	// the root scene. This may exceed the scene's max-choices bound.
	if numChoosable == 0 {
		root := e.st.RootSceneID
		if root != e.st.SceneID {
			rootScene := e.game.Scenes[root]
			if rootScene == nil {
				return nil, 0, fmt.Errorf("%w: root scene %q", ErrSceneNotFound, root)
			}
			if rootScene.ChooseIf == nil || e.RunPredicate(rootScene.ChooseIf, true) {
				choices = append(choices, Choice{
					ID:        root,
					Title:     []any{"Continue..."},
					CanChoose: true,
				})
				numChoosable++
			}
		}
	}

	if numChoosable > 0 {
		return choices, numChoosable, nil
	}
	return nil, 0, nil
}
