package engine

import "github.com/jwebster45206/narrative-engine/pkg/game"

// Success-probability models for quality checks. Both treat a
// scaler/increment above 1 as a percentage.

// BroadDifficulty returns clamp_to_1(scaler * quality / difficulty).
// A zero scaler takes the 0.6 default.
func BroadDifficulty(quality, difficulty, scaler float64) float64 {
	if scaler == 0 {
		scaler = 0.6
	}
	if scaler > 1 {
		scaler = scaler / 100
	}
	p := scaler * (quality / difficulty)
	if p > 1 {
		p = 1
	}
	return p
}

// NarrowDifficulty returns (quality-difficulty)*increment + 0.5 clamped to
// [increment, 1]. A zero increment takes the 0.1 default.
func NarrowDifficulty(quality, difficulty, increment float64) float64 {
	if increment == 0 {
		increment = 0.1
	}
	if increment > 1 {
		increment = increment / 100
	}
	p := (quality-difficulty)*increment + 0.5
	if p > 1 {
		p = 1
	} else if p < increment {
		p = increment
	}
	return p
}

// DifficultyLabel maps a success probability onto the fixed nine-bucket
// risk vocabulary.
func DifficultyLabel(p float64) string {
	switch {
	case p <= 0.1:
		return "almost impossible"
	case p <= 0.3:
		return "high-risk"
	case p <= 0.4:
		return "tough"
	case p <= 0.5:
		return "very chancy"
	case p <= 0.6:
		return "chancy"
	case p <= 0.7:
		return "modest"
	case p <= 0.8:
		return "very modest"
	case p <= 0.9:
		return "low risk"
	default:
		return "straightforward"
	}
}

// checkProbability computes the success probability for a scene's declared
// check against the live quality value. The bool reports whether the scene
// has a fully-specified check.
func (e *Engine) checkProbability(scene *game.Scene) (float64, bool) {
	if !scene.HasCheck() {
		return 0, false
	}
	quality, _ := toNumber(e.Quality(scene.CheckQuality))
	if scene.BroadDifficulty != 0 {
		return BroadDifficulty(quality, scene.BroadDifficulty, scene.DifficultyScaler), true
	}
	return NarrowDifficulty(quality, scene.NarrowDifficulty, scene.DifficultyIncrement), true
}

// rollCheck consumes one random draw and reports success.
func (e *Engine) rollCheck(p float64) bool {
	return e.rand.Float64() < p
}
