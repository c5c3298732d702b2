package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/script"
)

// Validate checks a definition for authoring errors that would otherwise
// surface as fatal lookup failures mid-game: dangling scene references,
// scenes declaring both a go-to and a check, malformed option ids and
// scripted units that do not compile. It returns all problems found.
func (g *Game) Validate() []error {
	var errs []error

	sceneIDs := make([]string, 0, len(g.Scenes))
	for id := range g.Scenes {
		sceneIDs = append(sceneIDs, id)
	}
	sort.Strings(sceneIDs)

	for _, id := range sceneIDs {
		scene := g.Scenes[id]
		errs = append(errs, g.validateScene(id, scene)...)
	}

	for id, q := range g.Qualities {
		if q.IsValid != nil {
			if err := script.Check(q.IsValid.Source); err != nil {
				errs = append(errs, fmt.Errorf("quality %q isValid: %w", id, err))
			}
		}
	}

	return errs
}

func (g *Game) validateScene(id string, scene *Scene) []error {
	var errs []error

	ref := func(target, field string) {
		if target == "" {
			return
		}
		if isSymbolicTarget(target) {
			return
		}
		if _, ok := g.Scenes[target]; !ok {
			errs = append(errs, fmt.Errorf("scene %q: %s references undefined scene %q", id, field, target))
		}
	}

	for _, gt := range scene.GoTo {
		ref(gt.ID, "goTo")
	}
	// goToRef ids name qualities, not scenes; nothing to resolve statically.

	ref(scene.CheckSuccessGoTo, "checkSuccessGoTo")
	ref(scene.CheckFailureGoTo, "checkFailureGoTo")
	ref(scene.SetJump, "setJump")
	ref(scene.Call, "call")

	if scene.HasCheck() && (len(scene.GoTo) > 0 || len(scene.GoToRef) > 0) {
		errs = append(errs, fmt.Errorf("scene %q declares both a go-to and a check; behavior would be ambiguous", id))
	}

	for i, opt := range scene.Options {
		switch {
		case strings.HasPrefix(opt.ID, "@"):
			target := opt.ID[1:]
			if _, ok := g.Scenes[target]; !ok {
				errs = append(errs, fmt.Errorf("scene %q: option %d references undefined scene %q", id, i, target))
			}
		case strings.HasPrefix(opt.ID, "#"):
			if len(g.TagLookup[opt.ID[1:]]) == 0 {
				errs = append(errs, fmt.Errorf("scene %q: option %d references empty tag %q", id, i, opt.ID[1:]))
			}
		default:
			errs = append(errs, fmt.Errorf("scene %q: option %d id %q must start with @ or #", id, i, opt.ID))
		}
	}

	for _, u := range sceneUnits(scene) {
		if err := script.Check(u.Source); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: %w", id, err))
		}
	}

	return errs
}

func sceneUnits(scene *Scene) []*script.Unit {
	var units []*script.Unit
	add := func(u *script.Unit) {
		if u != nil {
			units = append(units, u)
		}
	}
	add(scene.ViewIf)
	add(scene.ChooseIf)
	for _, u := range scene.OnArrival {
		add(u)
	}
	for _, u := range scene.OnDeparture {
		add(u)
	}
	for _, u := range scene.OnDisplay {
		add(u)
	}
	for _, gt := range scene.GoTo {
		add(gt.Predicate)
	}
	for _, gt := range scene.GoToRef {
		add(gt.Predicate)
	}
	for _, opt := range scene.Options {
		add(opt.ViewIf)
		add(opt.ChooseIf)
	}
	return units
}

// isSymbolicTarget reports whether id is one of the pseudo-targets resolved
// against live state at transition time.
func isSymbolicTarget(id string) bool {
	switch id {
	case "prevScene", "prevTopScene", "jumpScene", "backSpecialScene":
		return true
	}
	return false
}
