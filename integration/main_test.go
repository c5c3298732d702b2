//go:build integration
// +build integration

// Package integration exercises a running API end to end: it needs the
// server up (API_BASE_URL, default localhost:8080) with the bundled games
// directory, and Redis behind it. Run with:
//
//	go test -tags integration ./integration/
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/narrative-engine/internal/handlers"
)

var (
	baseURL string
	client  *http.Client
)

func TestMain(m *testing.M) {
	baseURL = os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client = &http.Client{Timeout: 30 * time.Second}

	fmt.Printf("Running Narrative Engine Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", baseURL)

	resp, err := client.Get(baseURL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "API is not reachable at %s. Start it first.\n", baseURL)
		os.Exit(1)
	}
	resp.Body.Close()

	os.Exit(m.Run())
}

func doJSON(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("%s %s: parse response %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode
}

func TestGamesAreListed(t *testing.T) {
	var resp struct {
		Games map[string]string `json:"games"`
	}
	if code := doJSON(t, http.MethodGet, "/v1/games", nil, &resp); code != http.StatusOK {
		t.Fatalf("list games: status %d", code)
	}
	if resp.Games["lighthouse"] != "The Lighthouse" {
		t.Fatalf("bundled game missing from listing: %v", resp.Games)
	}
}

// TestSessionLifecycle walks a full seeded session: create, read it back,
// commit a choice, and delete it.
func TestSessionLifecycle(t *testing.T) {
	var created handlers.SessionResponse
	code := doJSON(t, http.MethodPost, "/v1/sessions",
		handlers.CreateSessionRequest{Game: "lighthouse", Seed: "integration"},
		&created)
	if code != http.StatusCreated {
		t.Fatalf("create session: status %d", code)
	}
	if created.SceneID != "shore" {
		t.Errorf("sceneId = %q, want %q", created.SceneID, "shore")
	}
	if len(created.Content) == 0 {
		t.Error("expected opening content")
	}
	if len(created.Choices) == 0 {
		t.Fatal("expected opening choices")
	}

	sessionPath := "/v1/sessions/" + created.ID.String()

	var read handlers.SessionResponse
	if code := doJSON(t, http.MethodGet, sessionPath, nil, &read); code != http.StatusOK {
		t.Fatalf("read session: status %d", code)
	}
	if read.SceneID != created.SceneID {
		t.Errorf("read sceneId = %q, want %q", read.SceneID, created.SceneID)
	}

	var chosen handlers.SessionResponse
	code = doJSON(t, http.MethodPost, sessionPath+"/choose",
		handlers.ChooseRequest{Index: 0}, &chosen)
	if code != http.StatusOK {
		t.Fatalf("choose: status %d", code)
	}
	if chosen.SceneID == "shore" && !chosen.GameOver {
		t.Errorf("choice did not move the session: still at %q", chosen.SceneID)
	}

	if code := doJSON(t, http.MethodDelete, sessionPath, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete session: status %d", code)
	}
	if code := doJSON(t, http.MethodGet, sessionPath, nil, nil); code != http.StatusNotFound {
		t.Errorf("deleted session still readable: status %d", code)
	}
}

// TestSeededSessionsReplayIdentically creates two sessions with the same
// seed and drives them through the same choices, expecting identical scene
// trails.
func TestSeededSessionsReplayIdentically(t *testing.T) {
	run := func() []string {
		var s handlers.SessionResponse
		code := doJSON(t, http.MethodPost, "/v1/sessions",
			handlers.CreateSessionRequest{Game: "lighthouse", Seed: "replay"}, &s)
		if code != http.StatusCreated {
			t.Fatalf("create session: status %d", code)
		}
		path := "/v1/sessions/" + s.ID.String()
		defer doJSON(t, http.MethodDelete, path, nil, nil)

		trail := []string{s.SceneID}
		for i := 0; i < 6 && !s.GameOver && len(s.Choices) > 0; i++ {
			index := -1
			for j := range s.Choices {
				k := (i + j) % len(s.Choices)
				if s.Choices[k].CanChoose {
					index = k
					break
				}
			}
			if index < 0 {
				break
			}
			if code := doJSON(t, http.MethodPost, path+"/choose",
				handlers.ChooseRequest{Index: index}, &s); code != http.StatusOK {
				t.Fatalf("choose step %d: status %d", i, code)
			}
			trail = append(trail, s.SceneID)
		}
		return trail
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("trail lengths differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("trails diverge at step %d: %v vs %v", i, first, second)
		}
	}
}
