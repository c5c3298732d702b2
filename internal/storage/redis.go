package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/narrative-engine/pkg/game"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// RedisStorage implements the Storage interface using Redis for game states
// and the filesystem for static game definitions.
type RedisStorage struct {
	client   *redis.Client
	logger   *slog.Logger
	gamesDir string
	ttl      time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, gamesDir string, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if gamesDir == "" {
		gamesDir = "./games"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisStorage{
		client:   rdb,
		logger:   logger,
		gamesDir: gamesDir,
		ttl:      ttl,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// Game state operations (Redis-backed)

func (r *RedisStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}

	key := "gamestate:" + id.String()
	if err := r.client.Set(ctx, key, string(data), r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	key := "gamestate:" + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Warn("Gamestate not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load gamestate", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		r.logger.Error("Failed to unmarshal gamestate", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}

	return &gs, nil
}

func (r *RedisStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	key := "gamestate:" + id.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}

// Game definition operations (filesystem-backed)

func (r *RedisStorage) ListGames(ctx context.Context) (map[string]string, error) {
	games := make(map[string]string)

	err := filepath.WalkDir(r.gamesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		g, err := game.LoadFile(path)
		if err != nil {
			r.logger.Warn("Skipping unreadable game file", "path", path, "error", err)
			return nil
		}

		name := filepath.Base(path)
		name = name[:len(name)-len(".json")]
		games[name] = g.Title
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to walk games directory", "error", err)
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

func (r *RedisStorage) GetGame(ctx context.Context, name string) (*game.Game, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid game name: %s", name)
	}
	path := filepath.Join(r.gamesDir, name+".json")

	g, err := game.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load game %q: %w", name, err)
	}
	return g, nil
}
