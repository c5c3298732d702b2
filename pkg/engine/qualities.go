package engine

import "github.com/jwebster45206/narrative-engine/pkg/script"

// qualityAccessor carries the modifiers that require the full set protocol.
// Qualities without one are plain map entries with no overhead.
type qualityAccessor struct {
	min, max *float64
	isValid  *script.Unit
	signal   string
}

// setUpQualities installs accessors for declared qualities and seeds
// missing values from their declared initials. Initial seeding goes through
// SetQuality so bounds and signals apply.
func (e *Engine) setUpQualities() {
	e.accessors = make(map[string]*qualityAccessor)
	for id, q := range e.game.Qualities {
		signal := q.Signal
		if signal == "" {
			signal = e.game.QualitySignal
		}
		if q.Min != nil || q.Max != nil || q.IsValid != nil || signal != "" {
			e.accessors[id] = &qualityAccessor{
				min:     q.Min,
				max:     q.Max,
				isValid: q.IsValid,
				signal:  signal,
			}
		}
	}
	for id, q := range e.game.Qualities {
		if q.Initial != nil {
			if _, exists := e.st.Qualities[id]; !exists {
				e.SetQuality(id, normalizeValue(q.Initial))
			}
		}
	}
}

// Quality returns the live value of a quality, or nil when unset.
func (e *Engine) Quality(id string) any {
	return e.st.Qualities[id]
}

// SetQuality assigns a quality following the set protocol: clamp to
// declared bounds, tentatively commit, run the validity predicate (rolling
// back on rejection), then emit a quality-change signal if the committed
// value differs from the previous one.
func (e *Engine) SetQuality(id string, value any) {
	value = normalizeValue(value)
	acc := e.accessors[id]
	if acc == nil {
		e.st.Qualities[id] = value
		return
	}

	if n, ok := toNumber(value); ok {
		if acc.min != nil && n < *acc.min {
			n = *acc.min
		}
		if acc.max != nil && n > *acc.max {
			n = *acc.max
		}
		value = n
	}

	was, hadWas := e.st.Qualities[id]
	e.st.Qualities[id] = value

	// A rejecting validity predicate reverses the change. Predicate
	// failure defaults permissive.
	if !e.RunPredicate(acc.isValid, true) {
		if hadWas {
			e.st.Qualities[id] = was
		} else {
			delete(e.st.Qualities, id)
		}
		value = was
	}

	if acc.signal != "" && value != was {
		sig := Signal{
			Signal: acc.signal,
			Event:  "quality-change",
			ID:     id,
			Now:    value,
		}
		if hadWas {
			sig.Was = was
		}
		e.ui.Signal(sig)
	}
}

// normalizeValue keeps the quality table JSON-shaped: integers become
// float64 so values compare equal across a save round trip.
func normalizeValue(v any) any {
	if n, ok := v.(int); ok {
		return float64(n)
	}
	return v
}

// engineQualities adapts the engine's accessor protocol to the script
// package's Q argument.
type engineQualities struct {
	e *Engine
}

func (q engineQualities) Get(id string) any        { return q.e.Quality(id) }
func (q engineQualities) Set(id string, value any) { q.e.SetQuality(id, value) }

var _ script.Qualities = engineQualities{}
