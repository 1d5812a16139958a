package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aelred/TheGreaterFool/internal/model"
)

func TestMemoryStore_CreateAssignsID(t *testing.T) {
	ms := NewMemoryStore()
	g := &Game{Source: "a.log", Info: model.NewGameInfo()}
	if err := ms.CreateGame(context.Background(), g); err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}
	if _, err := uuid.Parse(g.ID); err != nil {
		t.Fatalf("expected a uuid, got %q", g.ID)
	}
	if g.LoadedAt.IsZero() {
		t.Error("expected LoadedAt to be set")
	}

	got, err := ms.GetGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("GetGame() error = %v", err)
	}
	if got.Source != "a.log" || got.Info != g.Info {
		t.Errorf("unexpected game: %+v", got)
	}
}

func TestMemoryStore_Duplicate(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()
	if err := ms.CreateGame(ctx, &Game{ID: "g1"}); err != nil {
		t.Fatal(err)
	}
	if err := ms.CreateGame(ctx, &Game{ID: "g1"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ms := NewMemoryStore()
	if _, err := ms.GetGame(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := ms.DeleteGame(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListOldestFirst(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		if err := ms.CreateGame(ctx, &Game{ID: id, LoadedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}
	games, err := ms.ListGames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 3 || games[0].ID != "c" || games[1].ID != "a" || games[2].ID != "b" {
		t.Errorf("expected [c a b], got %+v", games)
	}

	if err := ms.DeleteGame(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	games, _ = ms.ListGames(ctx)
	if len(games) != 2 {
		t.Errorf("expected 2 games after delete, got %d", len(games))
	}
}
