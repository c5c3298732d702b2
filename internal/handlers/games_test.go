package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/pkg/game"
)

func newGamesFixture(t *testing.T) *GamesHandler {
	t.Helper()
	mockStorage := storage.NewMockStorage()
	g, err := game.Decode([]byte(testGameDef))
	if err != nil {
		t.Fatalf("decode test game: %v", err)
	}
	mockStorage.AddGame("cellar", g)
	return NewGamesHandler(testLogger(), mockStorage)
}

func TestGamesList(t *testing.T) {
	handler := newGamesFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp struct {
		Games map[string]string `json:"games"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Games["cellar"] != "The Cellar" {
		t.Errorf("unexpected listing: %v", resp.Games)
	}
}

func TestGamesGet(t *testing.T) {
	handler := newGamesFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/games/cellar", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var info GameInfo
	if err := json.NewDecoder(rr.Body).Decode(&info); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if info.Title != "The Cellar" || info.Scenes != 3 {
		t.Errorf("unexpected game info: %+v", info)
	}
}

func TestGamesGetNotFound(t *testing.T) {
	handler := newGamesFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/games/missing", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestGamesMethodNotAllowed(t *testing.T) {
	handler := newGamesFixture(t)

	req := httptest.NewRequest(http.MethodDelete, "/v1/games", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rr.Code)
	}
}
