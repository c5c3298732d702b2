package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/game"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// Storage persists session game states and serves game definitions.
// Definitions are static content; game states are the mutable saves.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// ListGames returns game name -> title for every loadable definition.
	ListGames(ctx context.Context) (map[string]string, error)
	GetGame(ctx context.Context, name string) (*game.Game, error)
}
