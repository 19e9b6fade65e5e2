package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
	"github.com/sakif/marvel-catalog/internal/repository"
)

var _ repository.FavoriteRepository = (*Store)(nil)

// Create appends the favorite to the user's list.
func (s *Store) Create(ctx context.Context, fav *model.Favorite) error {
	fav.ID = xid.New().String()
	fav.AddedAt = time.Now().UTC()

	data, err := json.Marshal(fav)
	if err != nil {
		return fmt.Errorf("redis: marshalling favorite: %w", err)
	}

	if err := s.client.RPush(ctx, s.keys.UserFavorites(fav.UserID), data).Err(); err != nil {
		return fmt.Errorf("redis: creating favorite: %w", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, userID string, characterID int) (bool, error) {
	_, found, err := s.find(ctx, userID, characterID)
	return found, err
}

// ListByUser returns the first limit favorites in insertion order.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]model.Favorite, error) {
	if limit <= 0 {
		return []model.Favorite{}, nil
	}

	raw, err := s.client.LRange(ctx, s.keys.UserFavorites(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: listing favorites: %w", err)
	}

	favs := make([]model.Favorite, 0, len(raw))
	for _, item := range raw {
		var fav model.Favorite
		if err := json.Unmarshal([]byte(item), &fav); err != nil {
			s.logger.Warn("skipping undecodable favorite",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			continue
		}
		favs = append(favs, fav)
	}
	return favs, nil
}

// Delete removes the oldest matching element. LREM matches on the exact
// encoded value, so a concurrent delete of the same element makes this one
// report NotFound rather than removing a second record.
func (s *Store) Delete(ctx context.Context, userID string, characterID int) error {
	raw, found, err := s.find(ctx, userID, characterID)
	if err != nil {
		return err
	}
	if found {
		n, err := s.client.LRem(ctx, s.keys.UserFavorites(userID), 1, raw).Result()
		if err != nil {
			return fmt.Errorf("redis: deleting favorite: %w", err)
		}
		if n > 0 {
			return nil
		}
	}
	return apperror.NotFound("favorite", fmt.Sprintf("%s/%d", userID, characterID))
}

// find scans the user's list for the first element with characterID and
// returns its raw encoding.
func (s *Store) find(ctx context.Context, userID string, characterID int) (string, bool, error) {
	raw, err := s.client.LRange(ctx, s.keys.UserFavorites(userID), 0, -1).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: reading favorites: %w", err)
	}
	for _, item := range raw {
		var fav model.Favorite
		if err := json.Unmarshal([]byte(item), &fav); err != nil {
			continue
		}
		if fav.CharacterID == characterID {
			return item, true, nil
		}
	}
	return "", false, nil
}
