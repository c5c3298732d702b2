package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

func setupRedis(t *testing.T, gamesDir string) *RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisStorage(mr.Addr(), gamesDir, time.Hour, logger)
}

func TestGameStateRoundTrip(t *testing.T) {
	s := setupRedis(t, t.TempDir())
	ctx := context.Background()

	gs := state.New()
	gs.SceneID = "cellar"
	gs.Qualities["lamp"] = float64(1)
	gs.RandomState = []uint32{1, 2, 3, 4, 5}

	if err := s.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	loaded, err := s.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected saved state, got nil")
	}
	if loaded.SceneID != "cellar" {
		t.Errorf("sceneId = %q, want cellar", loaded.SceneID)
	}
	if loaded.Qualities["lamp"] != float64(1) {
		t.Errorf("lamp quality = %v, want 1", loaded.Qualities["lamp"])
	}
	if len(loaded.RandomState) != 5 {
		t.Errorf("random state not round-tripped: %v", loaded.RandomState)
	}
}

func TestLoadGameStateNotFound(t *testing.T) {
	s := setupRedis(t, t.TempDir())

	loaded, err := s.LoadGameState(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("LoadGameState failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil for missing state, got %+v", loaded)
	}
}

func TestDeleteGameState(t *testing.T) {
	s := setupRedis(t, t.TempDir())
	ctx := context.Background()

	gs := state.New()
	if err := s.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}
	if err := s.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("DeleteGameState failed: %v", err)
	}
	loaded, err := s.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState failed: %v", err)
	}
	if loaded != nil {
		t.Error("state still present after delete")
	}
}

func TestListAndGetGames(t *testing.T) {
	dir := t.TempDir()
	def := `{"title": "The Cellar", "firstScene": "start", "scenes": {"start": {"title": "Start"}}}`
	if err := os.WriteFile(filepath.Join(dir, "cellar.json"), []byte(def), 0o644); err != nil {
		t.Fatalf("write game file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	s := setupRedis(t, dir)
	ctx := context.Background()

	games, err := s.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 1 || games["cellar"] != "The Cellar" {
		t.Errorf("unexpected listing: %v", games)
	}

	g, err := s.GetGame(ctx, "cellar")
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if g.Title != "The Cellar" {
		t.Errorf("title = %q, want The Cellar", g.Title)
	}

	if _, err := s.GetGame(ctx, "missing"); err == nil {
		t.Error("expected error for missing game")
	}
	if _, err := s.GetGame(ctx, "../evil"); err == nil {
		t.Error("expected error for path traversal name")
	}
}

func TestPing(t *testing.T) {
	s := setupRedis(t, t.TempDir())
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
