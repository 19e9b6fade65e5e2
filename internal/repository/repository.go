// Package repository declares the persistence contract for favorites.
// Backends live in the sqlite and redis subpackages.
package repository

import (
	"context"

	"github.com/sakif/marvel-catalog/internal/model"
)

// FavoriteRepository stores favorites in a single logical collection.
//
// Nothing here enforces (user_id, character_id) uniqueness: Create always
// inserts. The uniqueness rule is an application-level check made by the
// caller through Exists.
type FavoriteRepository interface {
	// Create assigns ID and AddedAt (UTC) and persists the favorite.
	Create(ctx context.Context, fav *model.Favorite) error
	Exists(ctx context.Context, userID string, characterID int) (bool, error)
	// ListByUser returns at most limit favorites in store order.
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Favorite, error)
	// Delete removes exactly one matching favorite, or returns apperror.NotFound.
	Delete(ctx context.Context, userID string, characterID int) error
	Close() error
}
