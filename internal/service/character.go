// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, memoizes, orchestrates
//	Upstream / Repository    → talks to the remote catalog or the favorites store
//
// Services take interfaces (Catalog, repository.FavoriteRepository), never
// concrete clients, so tests can hand them in-memory fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/marvel-catalog/internal/cache"
	"github.com/sakif/marvel-catalog/internal/marvel"
	"github.com/sakif/marvel-catalog/internal/model"
)

// Default memo capacities, one per upstream operation.
const (
	DefaultListCacheSize   = 100
	DefaultLookupCacheSize = 50
)

// Catalog is the upstream surface CharacterService needs.
// *marvel.Client satisfies it.
type Catalog interface {
	ListCharacters(ctx context.Context, p marvel.ListParams) (*model.CharacterPage, error)
	GetCharacter(ctx context.Context, id int) (*model.Character, error)
}

var _ Catalog = (*marvel.Client)(nil)

// CacheConfig sizes the two memo caches.
type CacheConfig struct {
	ListSize   int
	LookupSize int
}

// listKey is the full argument tuple of a listing after clamping, so
// limit=500 and limit=100 share one entry.
type listKey struct {
	search string
	limit  int
	offset int
}

// CharacterService fronts the upstream catalog with two bounded LRU caches.
//
// MEMOIZATION RULES:
//   - keyed by every argument, after defaults and clamping are applied
//   - only successful results are stored; errors always go back upstream next time
//   - no expiry: catalog data is treated as static for the process lifetime
//
// Two concurrent misses on the same key both reach the upstream; the second
// Add simply overwrites the first with an equal value.
type CharacterService struct {
	upstream Catalog
	lists    *cache.LRU[listKey, *model.CharacterPage]
	lookups  *cache.LRU[int, *model.Character]
	logger   *slog.Logger
}

// NewCharacterService wires the upstream behind fresh caches.
// Non-positive sizes fall back to the defaults.
func NewCharacterService(upstream Catalog, cfg CacheConfig, logger *slog.Logger) *CharacterService {
	if cfg.ListSize <= 0 {
		cfg.ListSize = DefaultListCacheSize
	}
	if cfg.LookupSize <= 0 {
		cfg.LookupSize = DefaultLookupCacheSize
	}
	return &CharacterService{
		upstream: upstream,
		lists:    cache.New[listKey, *model.CharacterPage](cfg.ListSize),
		lookups:  cache.New[int, *model.Character](cfg.LookupSize),
		logger:   logger,
	}
}

// List returns one page of characters, optionally filtered by name prefix.
// The returned page is shared with the cache and must not be modified.
func (s *CharacterService) List(ctx context.Context, search string, limit, offset int) (*model.CharacterPage, error) {
	if offset < 0 {
		offset = 0
	}
	key := listKey{search: search, limit: marvel.ClampLimit(limit), offset: offset}

	if page, ok := s.lists.Get(key); ok {
		s.logger.Debug("character list cache hit",
			slog.String("search", key.search),
			slog.Int("limit", key.limit),
			slog.Int("offset", key.offset),
		)
		return page, nil
	}

	page, err := s.upstream.ListCharacters(ctx, marvel.ListParams{
		NameStartsWith: key.search,
		Limit:          key.limit,
		Offset:         key.offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}

	s.lists.Add(key, page)
	return page, nil
}

// Get returns a single character by its upstream id.
// The returned value is shared with the cache and must not be modified.
func (s *CharacterService) Get(ctx context.Context, id int) (*model.Character, error) {
	if character, ok := s.lookups.Get(id); ok {
		s.logger.Debug("character lookup cache hit", slog.Int("id", id))
		return character, nil
	}

	character, err := s.upstream.GetCharacter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting character %d: %w", id, err)
	}

	s.lookups.Add(id, character)
	return character, nil
}

// CacheStats reports how many entries each memo cache currently holds.
type CacheStats struct {
	ListEntries    int `json:"list_entries"`
	ListCapacity   int `json:"list_capacity"`
	LookupEntries  int `json:"lookup_entries"`
	LookupCapacity int `json:"lookup_capacity"`
}

func (s *CharacterService) Stats() CacheStats {
	return CacheStats{
		ListEntries:    s.lists.Len(),
		ListCapacity:   s.lists.Cap(),
		LookupEntries:  s.lookups.Len(),
		LookupCapacity: s.lookups.Cap(),
	}
}
