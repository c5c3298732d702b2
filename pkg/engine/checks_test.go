package engine

import "testing"

func TestBroadDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		quality    float64
		difficulty float64
		scaler     float64
		want       float64
	}{
		{"default scaler", 5, 10, 0, 0.3},
		{"explicit scaler", 5, 10, 0.8, 0.4},
		{"percent scaler", 5, 10, 80, 0.4},
		{"clamped to one", 50, 10, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BroadDifficulty(tc.quality, tc.difficulty, tc.scaler)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("BroadDifficulty(%v, %v, %v) = %v, want %v",
					tc.quality, tc.difficulty, tc.scaler, got, tc.want)
			}
		})
	}
}

func TestNarrowDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		quality    float64
		difficulty float64
		increment  float64
		want       float64
	}{
		{"at difficulty", 5, 5, 0, 0.5},
		{"one above", 6, 5, 0, 0.6},
		{"floor is increment", 0, 50, 0, 0.1},
		{"ceiling is one", 50, 0, 0, 1},
		{"percent increment", 6, 5, 20, 0.7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NarrowDifficulty(tc.quality, tc.difficulty, tc.increment)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("NarrowDifficulty(%v, %v, %v) = %v, want %v",
					tc.quality, tc.difficulty, tc.increment, got, tc.want)
			}
		})
	}
}

func TestDifficultyLabel(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.05, "almost impossible"},
		{0.25, "high-risk"},
		{0.35, "tough"},
		{0.45, "very chancy"},
		{0.55, "chancy"},
		{0.65, "modest"},
		{0.75, "very modest"},
		{0.85, "low risk"},
		{0.95, "straightforward"},
	}
	for _, tc := range tests {
		if got := DifficultyLabel(tc.p); got != tc.want {
			t.Errorf("DifficultyLabel(%v) = %q, want %q", tc.p, got, tc.want)
		}
	}
}
