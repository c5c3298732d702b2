package engine

import "testing"

const qualityGame = `{
	"firstScene": "limbo",
	"qualities": {
		"health": {"min": 0, "max": 10, "initial": 5},
		"gold": {"initial": 10, "isValid": {"$code": "return Q.gold <= 100"}},
		"mood": {"signal": "alert"}
	},
	"scenes": {"limbo": {"title": "Limbo", "gameOver": false}}
}`

func TestQualityClamping(t *testing.T) {
	e, _ := newTestEngine(t, qualityGame)
	if err := e.BeginGame(1); err != nil {
		t.Fatalf("BeginGame failed: %v", err)
	}

	tests := []struct {
		name  string
		set   any
		want  float64
	}{
		{"within bounds", 7, 7},
		{"above max", 15, 10},
		{"below min", -5, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e.SetQuality("health", tc.set)
			if got := e.Quality("health"); got != tc.want {
				t.Errorf("SetQuality(health, %v) = %v, want %v", tc.set, got, tc.want)
			}
		})
	}
}

func TestQualityInitialSeeding(t *testing.T) {
	e, _ := newTestEngine(t, qualityGame)
	if err := e.BeginGame(1); err != nil {
		t.Fatalf("BeginGame failed: %v", err)
	}
	if got := e.Quality("health"); got != float64(5) {
		t.Errorf("health initial = %v, want 5", got)
	}
	if got := e.Quality("gold"); got != float64(10) {
		t.Errorf("gold initial = %v, want 10", got)
	}
	if got := e.Quality("mood"); got != nil {
		t.Errorf("mood has no initial but is %v", got)
	}
}

func TestQualityValidityRollback(t *testing.T) {
	e, _ := newTestEngine(t, qualityGame)
	if err := e.BeginGame(1); err != nil {
		t.Fatalf("BeginGame failed: %v", err)
	}

	e.SetQuality("gold", 50)
	if got := e.Quality("gold"); got != float64(50) {
		t.Fatalf("valid set rejected: gold = %v", got)
	}
	e.SetQuality("gold", 150)
	if got := e.Quality("gold"); got != float64(50) {
		t.Errorf("invalid set not rolled back: gold = %v", got)
	}
}

func TestQualityChangeSignal(t *testing.T) {
	e, ui := newTestEngine(t, qualityGame)
	if err := e.BeginGame(1); err != nil {
		t.Fatalf("BeginGame failed: %v", err)
	}

	e.SetQuality("mood", 1)
	e.SetQuality("mood", 1) // unchanged, must not signal again
	e.SetQuality("mood", 2)

	var got []Signal
	for _, s := range ui.signals {
		if s.Event == "quality-change" {
			got = append(got, s)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 quality-change signals, got %d", len(got))
	}
	first, second := got[0], got[1]
	if first.Signal != "alert" || first.ID != "mood" || first.Now != float64(1) || first.Was != nil {
		t.Errorf("unexpected first signal: %+v", first)
	}
	if second.Now != float64(2) || second.Was != float64(1) {
		t.Errorf("unexpected second signal: %+v", second)
	}
}

func TestQualitySetThroughScript(t *testing.T) {
	// A scripted action writes through the same accessor protocol, so the
	// clamp applies to Lua assignments too.
	def := `{
		"firstScene": "start",
		"qualities": {"health": {"min": 0, "max": 10}},
		"scenes": {
			"start": {
				"title": "Start",
				"onArrival": [{"$code": "Q.health = 99"}],
				"gameOver": false
			}
		}
	}`
	e, _ := newTestEngine(t, def)
	if err := e.BeginGame(1); err != nil {
		t.Fatalf("BeginGame failed: %v", err)
	}
	if got := e.Quality("health"); got != float64(10) {
		t.Errorf("scripted set bypassed the clamp: health = %v", got)
	}
}
