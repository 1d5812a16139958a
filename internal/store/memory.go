package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aelred/TheGreaterFool/internal/metrics"
)

// MemoryStore implements Store with an in-memory map.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*Game
}

// NewMemoryStore creates an empty registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]*Game),
	}
}

func (s *MemoryStore) CreateGame(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.LoadedAt.IsZero() {
		g.LoadedAt = time.Now().UTC()
	}
	if _, ok := s.games[g.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, g.ID)
	}

	// The model is shared read-only; only the entry is copied.
	entry := *g
	s.games[g.ID] = &entry
	metrics.LoadedGames.Set(float64(len(s.games)))
	return nil
}

func (s *MemoryStore) GetGame(_ context.Context, id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	entry := *g
	return &entry, nil
}

func (s *MemoryStore) ListGames(_ context.Context) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, *g)
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].LoadedAt.Equal(games[j].LoadedAt) {
			return games[i].ID < games[j].ID
		}
		return games[i].LoadedAt.Before(games[j].LoadedAt)
	})
	return games, nil
}

func (s *MemoryStore) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.games, id)
	metrics.LoadedGames.Set(float64(len(s.games)))
	return nil
}
