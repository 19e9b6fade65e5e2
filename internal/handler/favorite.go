package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
	"github.com/sakif/marvel-catalog/internal/service"
)

const maxBodyBytes = 1 << 16

// FavoriteService is what the favorites endpoints need.
type FavoriteService interface {
	Add(ctx context.Context, userID string, characterID int, characterName string) (*model.Favorite, error)
	List(ctx context.Context, userID string) ([]model.Favorite, error)
	Remove(ctx context.Context, userID string, characterID int) error
}

var _ FavoriteService = (*service.FavoriteService)(nil)

type FavoriteHandler struct {
	service FavoriteService
	logger  *slog.Logger
}

func NewFavoriteHandler(svc FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: svc,
		logger:  logger,
	}
}

// AddFavoriteRequest is the POST /api/favorites body.
type AddFavoriteRequest struct {
	UserID        string `json:"user_id"`
	CharacterID   int    `json:"character_id"`
	CharacterName string `json:"character_name"`
}

// HandleAdd bookmarks a character.
//
// HTTP: POST /api/favorites
// REQUEST BODY: {"user_id": "u1", "character_id": 1009610, "character_name": "Spider-Man"}
func (h *FavoriteHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddFavoriteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("invalid favorite JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "request body must be a JSON object with user_id, character_id and character_name"))
		return
	}

	fav, err := h.service.Add(r.Context(), req.UserID, req.CharacterID, req.CharacterName)
	if err != nil {
		h.logFailure("failed to add favorite", err, slog.String("user_id", req.UserID), slog.Int("character_id", req.CharacterID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fav)
}

// HandleList returns a user's favorites, [] when there are none.
//
// HTTP: GET /api/favorites/{user_id}
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	favs, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.logFailure("failed to list favorites", err, slog.String("user_id", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, favs)
}

// HandleRemove deletes one favorite.
//
// HTTP: DELETE /api/favorites/{user_id}/{character_id}
func (h *FavoriteHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}
	raw, err := pathParam(r, "character_id")
	if err != nil {
		writeError(w, err)
		return
	}

	characterID, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, apperror.ValidationFailed("character_id", fmt.Sprintf("character_id must be an integer, got %q", raw)))
		return
	}

	if err := h.service.Remove(r.Context(), userID, characterID); err != nil {
		h.logFailure("failed to remove favorite", err, slog.String("user_id", userID), slog.Int("character_id", characterID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Favorite removed successfully"})
}

// pathParam returns a decoded route parameter. chi matches on the escaped
// path when one is present, so "a%2Fb" arrives still escaped.
func pathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperror.ValidationFailed(name, fmt.Sprintf("%s is not a valid path segment: %q", name, raw))
	}
	return v, nil
}

// logFailure logs only server-side failures; 4xx outcomes are expected traffic.
func (h *FavoriteHandler) logFailure(msg string, err error, attrs ...slog.Attr) {
	status, _ := classify(err)
	if status < http.StatusInternalServerError {
		return
	}
	args := make([]any, 0, len(attrs)+1)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.String("error", err.Error()))
	h.logger.Error(msg, args...)
}
