package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
	"github.com/sakif/marvel-catalog/internal/repository"
)

// MaxFavoritesPerList caps how many favorites one list call returns.
const MaxFavoritesPerList = 1000

// FavoriteService implements the favorites rules on top of a repository.
type FavoriteService struct {
	repo   repository.FavoriteRepository
	logger *slog.Logger
}

func NewFavoriteService(repo repository.FavoriteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		repo:   repo,
		logger: logger,
	}
}

// Add bookmarks a character for a user.
//
// CHECK-THEN-INSERT:
// The duplicate check and the insert are two separate store calls. Two
// concurrent Adds for the same (user, character) can both pass the check and
// both insert: this is accepted, and the store has no constraint to stop it.
//
// userID is opaque: it is stored and matched byte for byte, whitespace
// included. characterName is stored as given and never refreshed from the
// catalog.
func (s *FavoriteService) Add(ctx context.Context, userID string, characterID int, characterName string) (*model.Favorite, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("user_id", "user_id is required")
	}
	if characterID <= 0 {
		return nil, apperror.ValidationFailed("character_id", "character_id must be a positive integer")
	}
	if characterName == "" {
		return nil, apperror.ValidationFailed("character_name", "character_name is required")
	}

	exists, err := s.repo.Exists(ctx, userID, characterID)
	if err != nil {
		s.logger.Error("failed to check favorite",
			slog.String("user_id", userID),
			slog.Int("character_id", characterID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("checking favorite: %w", err)
	}
	if exists {
		return nil, apperror.Duplicate("favorite", fmt.Sprintf("user %s and character %d", userID, characterID))
	}

	fav := &model.Favorite{
		UserID:        userID,
		CharacterID:   characterID,
		CharacterName: characterName,
	}
	if err := s.repo.Create(ctx, fav); err != nil {
		s.logger.Error("failed to create favorite",
			slog.String("user_id", userID),
			slog.Int("character_id", characterID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating favorite: %w", err)
	}

	s.logger.Info("favorite added",
		slog.String("id", fav.ID),
		slog.String("user_id", fav.UserID),
		slog.Int("character_id", fav.CharacterID),
	)
	return fav, nil
}

// List returns a user's favorites in store order, never nil.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]model.Favorite, error) {
	favs, err := s.repo.ListByUser(ctx, userID, MaxFavoritesPerList)
	if err != nil {
		s.logger.Error("failed to list favorites",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	if favs == nil {
		favs = []model.Favorite{}
	}
	return favs, nil
}

// Remove deletes one favorite. Returns apperror.ErrNotFound if there is none.
func (s *FavoriteService) Remove(ctx context.Context, userID string, characterID int) error {
	if err := s.repo.Delete(ctx, userID, characterID); err != nil {
		return err
	}

	s.logger.Info("favorite removed",
		slog.String("user_id", userID),
		slog.Int("character_id", characterID),
	)
	return nil
}
