package redis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
)

// These tests need a live server: TEST_REDIS_URL=redis://localhost:6379/15
// Each test gets its own namespace and deletes its keys afterwards.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	namespace := "test-" + xid.New().String()

	store, err := Open(context.Background(), url, namespace, logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		iter := store.client.Scan(ctx, 0, store.keys.prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			store.client.Del(ctx, iter.Val())
		}
		store.Close()
	})
	return store
}

func add(t *testing.T, s *Store, userID string, characterID int) *model.Favorite {
	t.Helper()
	fav := &model.Favorite{UserID: userID, CharacterID: characterID, CharacterName: "Name"}
	require.NoError(t, s.Create(context.Background(), fav))
	return fav
}

func TestOpen_BadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Open(context.Background(), "not-a-url", "x", logger)
	assert.Error(t, err)
}

func TestStore_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := add(t, s, "u", 3)
	second := add(t, s, "u", 1)
	add(t, s, "other", 3)

	assert.NotEmpty(t, first.ID)
	assert.WithinDuration(t, time.Now().UTC(), first.AddedAt, 5*time.Second)

	favs, err := s.ListByUser(ctx, "u", 10)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, first.ID, favs[0].ID)
	assert.Equal(t, second.ID, favs[1].ID)
	assert.True(t, first.AddedAt.Equal(favs[0].AddedAt))
}

func TestStore_UserIDIsOpaque(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	add(t, s, " u ", 7)

	exists, err := s.Exists(ctx, "u", 7)
	require.NoError(t, err)
	assert.False(t, exists)

	favs, err := s.ListByUser(ctx, " u ", 10)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, " u ", favs[0].UserID)
}

func TestStore_ListLimitAndEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.ListByUser(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i := 1; i <= 4; i++ {
		add(t, s, "u", i)
	}
	favs, err := s.ListByUser(ctx, "u", 2)
	require.NoError(t, err)
	assert.Len(t, favs, 2)
}

func TestStore_Exists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	add(t, s, "u", 42)

	ok, err := s.Exists(ctx, "u", 42)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "u", 43)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DeleteOneOfDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	add(t, s, "u", 7)
	kept := add(t, s, "u", 7)

	require.NoError(t, s.Delete(ctx, "u", 7))

	favs, err := s.ListByUser(ctx, "u", 10)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, kept.ID, favs[0].ID)
}

func TestStore_DeleteNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Delete(context.Background(), "u", 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
