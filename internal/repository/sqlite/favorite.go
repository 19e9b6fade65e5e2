package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
	"github.com/sakif/marvel-catalog/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

// added_at is stored as RFC 3339 text so it round-trips with its UTC zone
// intact regardless of driver time handling.
const timeLayout = time.RFC3339Nano

// Create inserts a favorite, filling in ID and AddedAt.
func (db *DB) Create(ctx context.Context, fav *model.Favorite) error {
	fav.ID = xid.New().String()
	fav.AddedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO favorites (id, user_id, character_id, character_name, added_at)
		 VALUES (?, ?, ?, ?, ?)`,
		fav.ID,
		fav.UserID,
		fav.CharacterID,
		fav.CharacterName,
		fav.AddedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating favorite: %w", err)
	}
	return nil
}

func (db *DB) Exists(ctx context.Context, userID string, characterID int) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND character_id = ?)`,
		userID, characterID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking favorite: %w", err)
	}
	return exists, nil
}

// ListByUser returns favorites in insertion (rowid) order.
func (db *DB) ListByUser(ctx context.Context, userID string, limit int) ([]model.Favorite, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, character_id, character_name, added_at
		 FROM favorites
		 WHERE user_id = ?
		 ORDER BY rowid
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites: %w", err)
	}
	defer rows.Close()

	favs := make([]model.Favorite, 0)
	for rows.Next() {
		var (
			fav     model.Favorite
			addedAt string
		)
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.CharacterID, &fav.CharacterName, &addedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite: %w", err)
		}
		fav.AddedAt, err = time.Parse(timeLayout, addedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing added_at for %s: %w", fav.ID, err)
		}
		favs = append(favs, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}
	return favs, nil
}

// Delete removes the oldest matching row only. If a race left duplicates
// behind, each Delete clears one of them.
func (db *DB) Delete(ctx context.Context, userID string, characterID int) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites
		 WHERE rowid = (
			SELECT rowid FROM favorites
			WHERE user_id = ? AND character_id = ?
			ORDER BY rowid
			LIMIT 1
		 )`,
		userID, characterID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting favorite: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("favorite", fmt.Sprintf("%s/%d", userID, characterID))
	}
	return nil
}
