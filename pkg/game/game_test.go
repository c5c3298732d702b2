package game

import (
	"strings"
	"testing"
)

const sampleGame = `{
	"title": "The Cellar",
	"author": "tester",
	"firstScene": "start",
	"rootScene": "start",
	"scenes": {
		"start": {
			"title": "Start",
			"content": "You stand at the top of the stairs.",
			"options": [
				{"id": "@descend"},
				{"id": "#lights", "priority": 2}
			]
		},
		"descend": {
			"title": "Descend",
			"content": "Down you go.",
			"goTo": [{"id": "start", "predicate": {"$code": "return Q.lamp == 1"}}]
		},
		"lamp": {"title": "Light the lamp"},
		"candle": {"title": "Light a candle"}
	},
	"qualities": {
		"lamp": {"min": 0, "max": 1, "initial": 0}
	},
	"tagLookup": {
		"lights": {"lamp": true, "candle": true}
	}
}`

func TestDecode(t *testing.T) {
	g, err := Decode([]byte(sampleGame))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if g.Title != "The Cellar" {
		t.Errorf("unexpected title %q", g.Title)
	}
	if len(g.Scenes) != 4 {
		t.Errorf("expected 4 scenes, got %d", len(g.Scenes))
	}
	if g.Scenes["start"].ID != "start" {
		t.Errorf("scene ID not populated from map key: %q", g.Scenes["start"].ID)
	}

	gt := g.Scenes["descend"].GoTo
	if len(gt) != 1 || gt[0].Predicate == nil {
		t.Fatalf("goTo predicate not revived: %#v", gt)
	}
	if gt[0].Predicate.Source != "return Q.lamp == 1" {
		t.Errorf("unexpected predicate source %q", gt[0].Predicate.Source)
	}

	if got := g.TaggedSceneIDs("lights"); len(got) != 2 || got[0] != "candle" || got[1] != "lamp" {
		t.Errorf("unexpected tagged ids: %v", got)
	}
}

func TestDecode_NoScenes(t *testing.T) {
	if _, err := Decode([]byte(`{"title": "empty"}`)); err == nil {
		t.Error("expected error for definition without scenes")
	}
}

func TestFrequency_Unmarshal(t *testing.T) {
	g, err := Decode([]byte(`{
		"scenes": {
			"a": {"frequency": null},
			"b": {"frequency": 50},
			"c": {}
		}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	fa := g.Scenes["a"].Frequency
	if !fa.Set || !fa.Null {
		t.Errorf("explicit null should be Set+Null: %+v", fa)
	}

	fb := g.Scenes["b"].Frequency
	if !fb.Set || fb.Null || fb.Value != 50 {
		t.Errorf("explicit value mishandled: %+v", fb)
	}

	fc := g.Scenes["c"].Frequency
	if fc.Set {
		t.Errorf("absent frequency should be unset: %+v", fc)
	}
}

func TestValidate_CleanGame(t *testing.T) {
	g, err := Decode([]byte(sampleGame))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Errorf("expected no validation errors, got %v", errs)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		want     string
	}{
		{
			name:     "dangling goTo",
			jsonData: `{"scenes": {"a": {"goTo": [{"id": "nowhere"}]}}}`,
			want:     "undefined scene",
		},
		{
			name: "goTo and check on one scene",
			jsonData: `{"scenes": {
				"a": {
					"goTo": [{"id": "b"}],
					"checkQuality": "luck",
					"broadDifficulty": 10,
					"checkSuccessGoTo": "b",
					"checkFailureGoTo": "b"
				},
				"b": {}
			}}`,
			want: "both a go-to and a check",
		},
		{
			name:     "malformed option id",
			jsonData: `{"scenes": {"a": {"options": [{"id": "plain"}]}}}`,
			want:     "must start with @ or #",
		},
		{
			name:     "broken scripted unit",
			jsonData: `{"scenes": {"a": {"viewIf": {"$code": "return ((("}}}}`,
			want:     "compile scripted unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Decode([]byte(tt.jsonData))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			errs := g.Validate()
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e.Error(), tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error containing %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestValidate_SymbolicTargetsAllowed(t *testing.T) {
	g, err := Decode([]byte(`{"scenes": {"a": {"goTo": [{"id": "prevScene"}]}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Errorf("symbolic targets should validate: %v", errs)
	}
}
