package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/pkg/game"
)

const testGameDef = `{
	"title": "The Cellar",
	"firstScene": "start",
	"qualities": {"nerve": {"initial": 3}},
	"scenes": {
		"start": {
			"title": "Start",
			"content": "A dark stair leads down.",
			"options": [
				{"id": "@descend", "title": "Go down"},
				{"id": "@flee", "title": "Run away"}
			]
		},
		"descend": {
			"title": "Descend",
			"content": "The cellar smells of earth.",
			"options": [{"id": "@start", "title": "Back up"}]
		},
		"flee": {"title": "Flee", "content": "You run.", "gameOver": true}
	}
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSessionFixture(t *testing.T) (*SessionHandler, *storage.MockStorage) {
	t.Helper()
	mockStorage := storage.NewMockStorage()
	g, err := game.Decode([]byte(testGameDef))
	if err != nil {
		t.Fatalf("decode test game: %v", err)
	}
	mockStorage.AddGame("cellar", g)
	return NewSessionHandler(testLogger(), mockStorage), mockStorage
}

func createSession(t *testing.T, handler *SessionHandler, body string) SessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSessionCreate(t *testing.T) {
	handler, _ := newSessionFixture(t)
	resp := createSession(t, handler, `{"game":"cellar","seed":"abc"}`)

	if resp.ID == uuid.Nil {
		t.Error("expected a session ID")
	}
	if resp.Game != "cellar" {
		t.Errorf("game = %q, want cellar", resp.Game)
	}
	if resp.SceneID != "start" {
		t.Errorf("sceneId = %q, want start", resp.SceneID)
	}
	if len(resp.Choices) != 2 {
		t.Errorf("expected 2 choices, got %v", resp.Choices)
	}
	if len(resp.Content) == 0 {
		t.Error("expected scene content in response")
	}
}

func TestSessionCreateErrors(t *testing.T) {
	handler, _ := newSessionFixture(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"missing game", `{"seed":"x"}`, http.StatusBadRequest},
		{"unknown game", `{"game":"nope"}`, http.StatusNotFound},
		{"invalid JSON", `{broken`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSessionChoose(t *testing.T) {
	handler, _ := newSessionFixture(t)
	created := createSession(t, handler, `{"game":"cellar","seed":"abc"}`)

	req := httptest.NewRequest(http.MethodPost,
		"/v1/sessions/"+created.ID.String()+"/choose",
		strings.NewReader(`{"index":0}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SceneID != "descend" {
		t.Errorf("sceneId = %q, want descend", resp.SceneID)
	}
	if len(resp.Choices) != 1 {
		t.Errorf("expected 1 choice after descending, got %v", resp.Choices)
	}
}

func TestSessionChooseOutOfRange(t *testing.T) {
	handler, _ := newSessionFixture(t)
	created := createSession(t, handler, `{"game":"cellar"}`)

	req := httptest.NewRequest(http.MethodPost,
		"/v1/sessions/"+created.ID.String()+"/choose",
		strings.NewReader(`{"index":9}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSessionGameOverPersisted(t *testing.T) {
	handler, mockStorage := newSessionFixture(t)
	created := createSession(t, handler, `{"game":"cellar","seed":"abc"}`)

	// Choice 1 flees, which ends the game.
	req := httptest.NewRequest(http.MethodPost,
		"/v1/sessions/"+created.ID.String()+"/choose",
		strings.NewReader(`{"index":1}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.GameOver {
		t.Error("expected gameOver in response")
	}

	saved, err := mockStorage.LoadGameState(req.Context(), created.ID)
	if err != nil || saved == nil {
		t.Fatalf("load saved state: %v", err)
	}
	if !saved.GameOver {
		t.Error("game over not persisted")
	}
}

func TestSessionReadRedisplaysPage(t *testing.T) {
	handler, _ := newSessionFixture(t)
	created := createSession(t, handler, `{"game":"cellar","seed":"abc"}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SceneID != "start" {
		t.Errorf("sceneId = %q, want start", resp.SceneID)
	}
	if len(resp.Choices) != 2 {
		t.Errorf("expected redisplayed choices, got %v", resp.Choices)
	}
	if len(resp.Content) == 0 {
		t.Error("expected redisplayed page content")
	}
}

func TestSessionDelete(t *testing.T) {
	handler, mockStorage := newSessionFixture(t)
	created := createSession(t, handler, `{"game":"cellar"}`)

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+created.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	saved, _ := mockStorage.LoadGameState(req.Context(), created.ID)
	if saved != nil {
		t.Error("session still present after delete")
	}
}

func TestSessionNotFound(t *testing.T) {
	handler, _ := newSessionFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestSessionInvalidID(t *testing.T) {
	handler, _ := newSessionFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}
