// Package store defines the registry of interpreted games served over HTTP.
// Games are immutable once registered; the registry only holds them in
// memory for the life of the process.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/aelred/TheGreaterFool/internal/model"
)

var (
	ErrNotFound      = errors.New("store: game not found")
	ErrAlreadyExists = errors.New("store: game already exists")
)

// Game is one interpreted log.
type Game struct {
	ID       string          `json:"id"`
	Source   string          `json:"source"`
	Records  int             `json:"records"`
	LoadedAt time.Time       `json:"loaded_at"`
	Info     *model.GameInfo `json:"-"`
}

// Store is the registry interface.
type Store interface {
	// CreateGame registers a game. An empty ID is assigned.
	CreateGame(ctx context.Context, g *Game) error

	// GetGame retrieves a game by ID.
	GetGame(ctx context.Context, id string) (*Game, error)

	// ListGames returns all games, oldest first.
	ListGames(ctx context.Context) ([]Game, error)

	// DeleteGame drops a game.
	DeleteGame(ctx context.Context, id string) error
}
