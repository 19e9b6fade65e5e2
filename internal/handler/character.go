package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
	"github.com/sakif/marvel-catalog/internal/service"
)

// Query parameter bounds for GET /characters.
const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
)

// CharacterService is what the character endpoints need.
// *service.CharacterService satisfies it.
type CharacterService interface {
	List(ctx context.Context, search string, limit, offset int) (*model.CharacterPage, error)
	Get(ctx context.Context, id int) (*model.Character, error)
	Stats() service.CacheStats
}

var _ CharacterService = (*service.CharacterService)(nil)

type CharacterHandler struct {
	service CharacterService
	logger  *slog.Logger
}

func NewCharacterHandler(svc CharacterService, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		service: svc,
		logger:  logger,
	}
}

// HandleList pages through the catalog.
//
// HTTP: GET /api/characters?search=spi&limit=20&offset=0
//
// limit must be in [1,100] and offset >= 0; anything else is a 400 here,
// before the upstream client ever sees it. Every failure past validation is
// reported as 500 with its reason string intact.
func (h *CharacterHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")

	limit, err := intParam(q.Get("limit"), DefaultLimit, "limit")
	if err == nil && (limit < MinLimit || limit > MaxLimit) {
		err = apperror.ValidationFailed("limit", fmt.Sprintf("limit must be between %d and %d", MinLimit, MaxLimit))
	}
	if err != nil {
		writeError(w, err)
		return
	}

	offset, err := intParam(q.Get("offset"), 0, "offset")
	if err == nil && offset < 0 {
		err = apperror.ValidationFailed("offset", "offset must be zero or greater")
	}
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), search, limit, offset)
	if err != nil {
		status, reason := classify(err)
		if status != http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		h.logger.Error("failed to list characters",
			slog.String("search", search),
			slog.Int("limit", limit),
			slog.Int("offset", offset),
			slog.String("error", err.Error()),
		)
		writeErrorStatus(w, status, reason, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleGet returns one character.
//
// HTTP: GET /api/characters/{id}
func (h *CharacterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", fmt.Sprintf("character id must be an integer, got %q", raw)))
		return
	}

	character, err := h.service.Get(r.Context(), id)
	if err != nil {
		status, _ := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to get character",
				slog.Int("id", id),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, character)
}

// intParam parses an optional integer query value.
func intParam(raw string, fallback int, field string) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(field, fmt.Sprintf("%s must be an integer, got %q", field, raw))
	}
	return n, nil
}
