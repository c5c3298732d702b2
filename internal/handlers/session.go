package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionRequest defines the request body for starting a new session.
// With a seed the session's random stream is reproducible; without, it is
// drawn fresh.
type CreateSessionRequest struct {
	Game             string `json:"game"`
	Seed             string `json:"seed,omitempty"`
	EnableTranscript bool   `json:"enableTranscript,omitempty"`
}

type ChooseRequest struct {
	Index int `json:"index"`
}

type DrawRequest struct {
	Deck string `json:"deck"`
}

type PlayRequest struct {
	Card   string `json:"card"`
	Pinned bool   `json:"pinned,omitempty"`
}

// SessionResponse is the full view of a session after an operation: the
// persistent identifiers plus everything the engine displayed.
type SessionResponse struct {
	ID       uuid.UUID `json:"id"`
	Game     string    `json:"game"`
	SceneID  string    `json:"sceneId"`
	GameOver bool      `json:"gameOver"`

	Content   []any             `json:"content,omitempty"`
	FaceImage string            `json:"faceImage,omitempty"`
	Choices   []engine.Choice   `json:"choices,omitempty"`
	Decks     []engine.Choice   `json:"decks,omitempty"`
	Hand      []state.Card      `json:"hand,omitempty"`
	MaxCards  int               `json:"maxCards,omitempty"`
	Pinned    []engine.Choice   `json:"pinnedCards,omitempty"`
	Signals   []engine.Signal   `json:"signals,omitempty"`
	Bg        string            `json:"bg,omitempty"`
	Sprites   map[string]string `json:"sprites,omitempty"`

	Achievements map[string]int `json:"achievements,omitempty"`
	DrawResult   string         `json:"drawResult,omitempty"`
	DrawnCard    *state.Card    `json:"drawnCard,omitempty"`
}

// SessionHandler drives game sessions over HTTP. The engine itself is
// stateless between requests: every operation loads the saved state,
// rebuilds an engine around it, applies one command and saves again.
//
// Routes:
// POST /v1/sessions               - Start a new session
// GET /v1/sessions/{id}           - Redisplay the current page
// DELETE /v1/sessions/{id}        - Delete a session
// POST /v1/sessions/{id}/choose   - Commit a choice by index
// POST /v1/sessions/{id}/draw     - Draw a card from a deck
// POST /v1/sessions/{id}/play     - Play a held or pinned card
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(logger *slog.Logger, storage storage.Storage) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}

	if len(parts) == 0 {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. POST starts a session")
			return
		}
		h.handleCreate(w, r)
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case len(parts) == 2 && r.Method == http.MethodPost:
		switch parts[1] {
		case "choose":
			h.handleChoose(w, r, id)
		case "draw":
			h.handleDraw(w, r, id)
		case "play":
			h.handlePlay(w, r, id)
		default:
			h.writeError(w, http.StatusNotFound, "Unknown session operation: "+parts[1])
		}
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Game == "" {
		h.writeError(w, http.StatusBadRequest, "game is required")
		return
	}

	g, err := h.storage.GetGame(r.Context(), req.Game)
	if err != nil {
		h.logger.Warn("Game not found", "game", req.Game, "error", err)
		h.writeError(w, http.StatusNotFound, "Game not found: "+req.Game)
		return
	}

	rec := newRecorder()
	eng := engine.New(rec, g, h.logger)
	if req.Seed != "" {
		err = eng.BeginGame(req.Seed)
	} else {
		err = eng.BeginGame()
	}
	if err != nil {
		h.logger.Error("Failed to begin game", "game", req.Game, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to begin game")
		return
	}

	gs := eng.ExportableState()
	gs.Game = req.Game
	gs.EnableTranscript = req.EnableTranscript
	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.writeJSON(w, http.StatusCreated, h.response(gs, rec))
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	_, rec, gs, ok := h.loadEngine(r.Context(), w, id)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.response(gs, rec))
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteGameState(r.Context(), id); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleChoose(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eng, rec, gs, ok := h.loadEngine(r.Context(), w, id)
	if !ok {
		return
	}
	rec.reset()

	if err := eng.Choose(req.Index); err != nil {
		if isUserInputError(err) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Choose failed", "session", id, "index", req.Index, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to apply choice")
		return
	}

	h.persistAndRespond(r.Context(), w, gs, rec, nil, "")
}

func (h *SessionHandler) handleDraw(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req DrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Deck == "" {
		h.writeError(w, http.StatusBadRequest, "deck is required")
		return
	}

	eng, rec, gs, ok := h.loadEngine(r.Context(), w, id)
	if !ok {
		return
	}
	rec.reset()

	card, result, err := eng.DrawCard(req.Deck)
	if err != nil {
		if errors.Is(err, engine.ErrSceneNotFound) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Draw failed", "session", id, "deck", req.Deck, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to draw card")
		return
	}

	h.persistAndRespond(r.Context(), w, gs, rec, card, result.String())
}

func (h *SessionHandler) handlePlay(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Card == "" {
		h.writeError(w, http.StatusBadRequest, "card is required")
		return
	}

	eng, rec, gs, ok := h.loadEngine(r.Context(), w, id)
	if !ok {
		return
	}
	rec.reset()

	var err error
	if req.Pinned {
		err = eng.PlayPinnedCard(req.Card)
	} else {
		err = eng.PlayCard(req.Card)
	}
	if err != nil {
		if errors.Is(err, engine.ErrSceneNotFound) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Play failed", "session", id, "card", req.Card, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to play card")
		return
	}

	h.persistAndRespond(r.Context(), w, gs, rec, nil, "")
}

// loadEngine rebuilds an engine around a saved session. The SetState
// redisplay fills the recorder with the current page, which read operations
// return directly and mutating operations discard via reset.
func (h *SessionHandler) loadEngine(ctx context.Context, w http.ResponseWriter, id uuid.UUID) (*engine.Engine, *recorder, *state.GameState, bool) {
	gs, err := h.storage.LoadGameState(ctx, id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load session")
		return nil, nil, nil, false
	}
	if gs == nil {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return nil, nil, nil, false
	}

	g, err := h.storage.GetGame(ctx, gs.Game)
	if err != nil {
		h.logger.Error("Game definition missing for session", "session", id, "game", gs.Game, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Game definition unavailable")
		return nil, nil, nil, false
	}

	rec := newRecorder()
	eng := engine.New(rec, g, h.logger)
	if err := eng.SetState(gs); err != nil {
		h.logger.Error("Failed to restore session state", "session", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to restore session")
		return nil, nil, nil, false
	}
	return eng, rec, gs, true
}

func (h *SessionHandler) persistAndRespond(ctx context.Context, w http.ResponseWriter, gs *state.GameState, rec *recorder, drawn *state.Card, drawResult string) {
	if err := h.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}
	resp := h.response(gs, rec)
	resp.DrawnCard = drawn
	resp.DrawResult = drawResult
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) response(gs *state.GameState, rec *recorder) SessionResponse {
	return SessionResponse{
		ID:           gs.ID,
		Game:         gs.Game,
		SceneID:      gs.SceneID,
		GameOver:     gs.GameOver,
		Content:      rec.Content,
		FaceImage:    rec.FaceImage,
		Choices:      rec.Choices,
		Decks:        rec.Decks,
		Hand:         rec.Hand,
		MaxCards:     rec.MaxCards,
		Pinned:       rec.Pinned,
		Signals:      rec.Signals,
		Bg:           gs.Bg,
		Sprites:      gs.Sprites,
		Achievements: gs.Achievements,
	}
}

func isUserInputError(err error) bool {
	return errors.Is(err, engine.ErrInvalidChoice) ||
		errors.Is(err, engine.ErrCannotChoose) ||
		errors.Is(err, engine.ErrNoChoiceCache)
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
