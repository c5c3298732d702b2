package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/narrative-engine/internal/storage"
)

// GamesHandler serves the game definition catalog.
//
// Routes:
// GET /v1/games        - List available games (name -> title)
// GET /v1/games/{name} - Game metadata
type GamesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

type GameInfo struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Scenes int    `json:"scenes"`
}

func NewGamesHandler(logger *slog.Logger, storage storage.Storage) *GamesHandler {
	return &GamesHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, ErrorResponse{Error: "Method not allowed. Supported methods: GET"})
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if name == "" {
		h.handleList(w, r)
		return
	}
	h.handleGet(w, r, name)
}

func (h *GamesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	games, err := h.storage.ListGames(r.Context())
	if err != nil {
		h.logger.Error("Failed to list games", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, ErrorResponse{Error: "Failed to list games"})
		return
	}
	h.encode(w, map[string]any{"games": games})
}

func (h *GamesHandler) handleGet(w http.ResponseWriter, r *http.Request, name string) {
	g, err := h.storage.GetGame(r.Context(), name)
	if err != nil {
		h.logger.Warn("Game not found", "game", name, "error", err)
		w.WriteHeader(http.StatusNotFound)
		h.encode(w, ErrorResponse{Error: "Game not found: " + name})
		return
	}
	h.encode(w, GameInfo{
		Name:   name,
		Title:  g.Title,
		Author: g.Author,
		Scenes: len(g.Scenes),
	})
}

func (h *GamesHandler) encode(w http.ResponseWriter, body any) {
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
