package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
)

// =========================================================================
// FAKE REPOSITORY
// =========================================================================
//
// fakeFavoriteRepo is an in-memory repository.FavoriteRepository. Like the
// real backends it has no uniqueness constraint: Create always appends.

type fakeFavoriteRepo struct {
	mu     sync.Mutex
	favs   []model.Favorite
	nextID int

	// set to a non-nil error to simulate a store failure
	existsErr error
	createErr error

	// if set, Exists signals existsReached after reading and then blocks
	// until existsGate is closed
	existsReached chan struct{}
	existsGate    chan struct{}
}

func newFakeRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{}
}

func (f *fakeFavoriteRepo) Create(_ context.Context, fav *model.Favorite) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	fav.ID = fmt.Sprintf("fav-%d", f.nextID)
	fav.AddedAt = time.Now().UTC()
	f.favs = append(f.favs, *fav)
	return nil
}

func (f *fakeFavoriteRepo) Exists(_ context.Context, userID string, characterID int) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	found := false
	for _, fav := range f.favs {
		if fav.UserID == userID && fav.CharacterID == characterID {
			found = true
			break
		}
	}
	f.mu.Unlock()

	if f.existsGate != nil {
		f.existsReached <- struct{}{}
		<-f.existsGate
	}
	return found, nil
}

func (f *fakeFavoriteRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Favorite
	for _, fav := range f.favs {
		if fav.UserID == userID {
			out = append(out, fav)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeFavoriteRepo) Delete(_ context.Context, userID string, characterID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fav := range f.favs {
		if fav.UserID == userID && fav.CharacterID == characterID {
			f.favs = append(f.favs[:i], f.favs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("favorite", fmt.Sprintf("%s/%d", userID, characterID))
}

func (f *fakeFavoriteRepo) Close() error { return nil }

func (f *fakeFavoriteRepo) count(userID string, characterID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, fav := range f.favs {
		if fav.UserID == userID && fav.CharacterID == characterID {
			n++
		}
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFavoriteService(t *testing.T) (*FavoriteService, *fakeFavoriteRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewFavoriteService(repo, discardLogger()), repo
}

// =========================================================================
// ADD
// =========================================================================

func TestAdd_Success(t *testing.T) {
	svc, _ := newTestFavoriteService(t)

	fav, err := svc.Add(context.Background(), "user-1", 1009610, "Spider-Man")
	require.NoError(t, err)

	assert.NotEmpty(t, fav.ID)
	assert.Equal(t, "user-1", fav.UserID)
	assert.Equal(t, 1009610, fav.CharacterID)
	assert.Equal(t, "Spider-Man", fav.CharacterName)
	assert.False(t, fav.AddedAt.IsZero())
	assert.Equal(t, time.UTC, fav.AddedAt.Location())
}

func TestAdd_UserIDIsOpaque(t *testing.T) {
	svc, _ := newTestFavoriteService(t)
	ctx := context.Background()

	fav, err := svc.Add(ctx, " bob ", 1, " Hulk ")
	require.NoError(t, err)
	assert.Equal(t, " bob ", fav.UserID)
	assert.Equal(t, " Hulk ", fav.CharacterName)

	padded, err := svc.List(ctx, " bob ")
	require.NoError(t, err)
	require.Len(t, padded, 1)
	assert.Equal(t, " bob ", padded[0].UserID)

	bare, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bare)

	// "bob" has nothing to remove; " bob " does.
	assert.ErrorIs(t, svc.Remove(ctx, "bob", 1), apperror.ErrNotFound)
	assert.NoError(t, svc.Remove(ctx, " bob ", 1))
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		characterID int
		charName    string
		wantField   string
	}{
		{name: "empty user", userID: "", characterID: 1, charName: "Hulk", wantField: "user_id"},
		{name: "zero character", userID: "u", characterID: 0, charName: "Hulk", wantField: "character_id"},
		{name: "negative character", userID: "u", characterID: -4, charName: "Hulk", wantField: "character_id"},
		{name: "empty name", userID: "u", characterID: 1, charName: "", wantField: "character_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestFavoriteService(t)

			_, err := svc.Add(context.Background(), tt.userID, tt.characterID, tt.charName)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantField, appErr.Field)
			assert.Empty(t, repo.favs, "no write on validation failure")
		})
	}
}

func TestAdd_Duplicate(t *testing.T) {
	svc, repo := newTestFavoriteService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", 42, "Thor")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "user-1", 42, "Thor")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrDuplicate)
	assert.Equal(t, 1, repo.count("user-1", 42), "store must still hold exactly one record")
}

func TestAdd_SameCharacterDifferentUsers(t *testing.T) {
	svc, repo := newTestFavoriteService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", 42, "Thor")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user-2", 42, "Thor")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.count("user-1", 42))
	assert.Equal(t, 1, repo.count("user-2", 42))
}

func TestAdd_StoreErrors(t *testing.T) {
	t.Run("exists fails", func(t *testing.T) {
		svc, repo := newTestFavoriteService(t)
		repo.existsErr = errors.New("connection reset")

		_, err := svc.Add(context.Background(), "u", 1, "Hulk")
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperror.ErrDuplicate)
	})

	t.Run("create fails", func(t *testing.T) {
		svc, repo := newTestFavoriteService(t)
		repo.createErr = errors.New("disk full")

		_, err := svc.Add(context.Background(), "u", 1, "Hulk")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

// The duplicate check and insert are not atomic. Two concurrent Adds for the
// same pair that both get past Exists will both insert. This test pins that
// behavior so any change to it is deliberate.
func TestAdd_ConcurrentDuplicatesAreNotPrevented(t *testing.T) {
	svc, repo := newTestFavoriteService(t)
	repo.existsReached = make(chan struct{})
	repo.existsGate = make(chan struct{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Add(context.Background(), "racer", 7, "Quicksilver")
		}(i)
	}

	// Wait until both have checked and seen no record, then let them insert.
	<-repo.existsReached
	<-repo.existsReached
	close(repo.existsGate)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 2, repo.count("racer", 7))
}

// =========================================================================
// LIST
// =========================================================================

func TestList_FreshUserIsEmpty(t *testing.T) {
	svc, _ := newTestFavoriteService(t)

	favs, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, favs, "empty list, not nil, so it encodes as []")
	assert.Empty(t, favs)
}

func TestList_AddedAppearsOnce(t *testing.T) {
	svc, _ := newTestFavoriteService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "user-1", 1009368, "Iron Man")
	require.NoError(t, err)

	favs, err := svc.List(ctx, "user-1")
	require.NoError(t, err)

	matches := 0
	for _, f := range favs {
		if f.ID == added.ID {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestList_OnlyReturnsThatUser(t *testing.T) {
	svc, _ := newTestFavoriteService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "a", 1, "One")
	_, _ = svc.Add(ctx, "b", 2, "Two")

	favs, err := svc.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, 1, favs[0].CharacterID)
}

// =========================================================================
// REMOVE
// =========================================================================

func TestRemove_NotFound(t *testing.T) {
	svc, _ := newTestFavoriteService(t)

	err := svc.Remove(context.Background(), "user-1", 424242)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddRemoveList_RoundTrip(t *testing.T) {
	svc, _ := newTestFavoriteService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", 1, "Existing")
	require.NoError(t, err)
	before, err := svc.List(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "user-1", 2, "Temporary")
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "user-1", 2))

	after, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
