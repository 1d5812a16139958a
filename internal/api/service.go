// Package api serves interpreted games over HTTP.
//
// Every model is built once on upload and only read afterwards; handlers
// never mutate a GameInfo.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aelred/TheGreaterFool/internal/catalog"
	"github.com/aelred/TheGreaterFool/internal/metrics"
	"github.com/aelred/TheGreaterFool/internal/model"
	"github.com/aelred/TheGreaterFool/internal/replay"
	"github.com/aelred/TheGreaterFool/internal/series"
	"github.com/aelred/TheGreaterFool/internal/store"
)

// DefaultMaxLogBytes caps uploaded logs.
const DefaultMaxLogBytes = 64 << 20

// Service handles game uploads and queries.
type Service struct {
	store          store.Store
	ticksPerMinute int64
	maxMinutes     int
	delimiter      rune
	maxLogBytes    int64
}

// NewService creates a service over st. Charts are capped at maxMinutes.
func NewService(st store.Store, ticksPerMinute int64, maxMinutes int, delimiter rune) *Service {
	return &Service{
		store:          st,
		ticksPerMinute: ticksPerMinute,
		maxMinutes:     maxMinutes,
		delimiter:      delimiter,
		maxLogBytes:    DefaultMaxLogBytes,
	}
}

// --- Response types ---

// GameSummary describes a registered game.
type GameSummary struct {
	store.Game
	GameID          string   `json:"game_id,omitempty"`
	Start           int64    `json:"start"`
	End             int64    `json:"end"`
	DurationMinutes int      `json:"duration_minutes"`
	Version         string   `json:"version,omitempty"`
	Server          string   `json:"server,omitempty"`
	Agents          []string `json:"agents"`
	Auctions        []string `json:"auctions"`
}

// AuctionSummary is one row of the auction listing.
type AuctionSummary struct {
	Name         string           `json:"name"`
	ID           string           `json:"id"`
	Resource     catalog.Resource `json:"resource"`
	Day          int              `json:"day"`
	Quotes       int              `json:"quotes"`
	Transactions int              `json:"transactions"`
	Bidders      []string         `json:"bidders"`
	Closed       *int64           `json:"closed,omitempty"`
}

// CatalogResponse lists the fixed code tables.
type CatalogResponse struct {
	Resources []catalog.Entry[catalog.Resource] `json:"resources"`
	BidTypes  []catalog.Entry[catalog.BidType]  `json:"bid_types"`
}

// Summarize builds the summary of a registered game.
func (s *Service) Summarize(g *store.Game) GameSummary {
	info := g.Info
	return GameSummary{
		Game:            *g,
		GameID:          info.GameID,
		Start:           info.Start,
		End:             info.End,
		DurationMinutes: info.DurationMinutes(s.ticksPerMinute),
		Version:         info.Version,
		Server:          info.Server,
		Agents:          info.AgentNames(),
		Auctions:        info.AuctionNames(),
	}
}

// SummarizeAuction builds one row of the auction listing.
func SummarizeAuction(a *model.Auction) AuctionSummary {
	s := AuctionSummary{
		Name:         a.Name,
		ID:           a.ID,
		Resource:     a.Resource,
		Day:          a.Day,
		Quotes:       len(a.Sell),
		Transactions: len(a.Transactions),
		Bidders:      a.Bidders(),
	}
	if a.IsClosed() {
		closed := *a.Closed
		s.Closed = &closed
	}
	return s
}

// --- HTTP Handlers ---

// CreateGame handles POST /api/v1/games
// The body is a raw game log; ?name= labels it.
func (s *Service) CreateGame(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}

	body := http.MaxBytesReader(w, r.Body, s.maxLogBytes)
	res, err := replay.Load(r.Context(), body, replay.Options{Name: name, Delimiter: s.delimiter})
	if err != nil {
		if replay.FailureKind(err) == replay.KindIO {
			writeError(w, "could not read log: "+err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "cannot analyze this log: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	g := &store.Game{Source: name, Records: res.Records, Info: res.Game}
	if err := s.store.CreateGame(r.Context(), g); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	slog.Info("game registered",
		"id", g.ID,
		"source", name,
		"records", res.Records,
	)

	writeJSON(w, http.StatusCreated, s.Summarize(g))
}

// ListGames handles GET /api/v1/games
func (s *Service) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.ListGames(r.Context())
	if err != nil {
		writeError(w, "failed to list games", http.StatusInternalServerError)
		return
	}
	out := make([]GameSummary, 0, len(games))
	for i := range games {
		out = append(out, s.Summarize(&games[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetGame handles GET /api/v1/games/{gameID}
func (s *Service) GetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Summarize(g))
}

// DeleteGame handles DELETE /api/v1/games/{gameID}
func (s *Service) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		writeError(w, "game not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAuctions handles GET /api/v1/games/{gameID}/auctions
func (s *Service) ListAuctions(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	out := make([]AuctionSummary, 0, g.Info.Auctions.Len())
	for pair := g.Info.Auctions.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, SummarizeAuction(pair.Value))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAuction handles GET /api/v1/games/{gameID}/auctions/{name}
func (s *Service) GetAuction(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	a, ok := s.auction(w, r, g)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GetSeries handles GET /api/v1/games/{gameID}/auctions/{name}/series
// Undefined minutes are encoded as null.
func (s *Service) GetSeries(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	a, ok := s.auction(w, r, g)
	if !ok {
		return
	}
	chart, err := series.BuildChart(g.Info, a.Name, s.ticksPerMinute, s.maxMinutes)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	metrics.ChartsBuilt.Inc()
	writeJSON(w, http.StatusOK, chart)
}

// GetAgent handles GET /api/v1/games/{gameID}/agents/{name}
func (s *Service) GetAgent(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	agent, ok := g.Info.Agent(name)
	if !ok {
		writeError(w, "agent not found: "+name, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// GetCatalog handles GET /api/v1/catalog
func (s *Service) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Resources: catalog.Resources,
		BidTypes:  catalog.BidTypes,
	})
}

// Router mounts the API with health and metrics endpoints.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"replay"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", s.GetCatalog)

		r.Get("/games", s.ListGames)
		r.Post("/games", s.CreateGame)
		r.Get("/games/{gameID}", s.GetGame)
		r.Delete("/games/{gameID}", s.DeleteGame)
		r.Get("/games/{gameID}/auctions", s.ListAuctions)
		r.Get("/games/{gameID}/auctions/{name}", s.GetAuction)
		r.Get("/games/{gameID}/auctions/{name}/series", s.GetSeries)
		r.Get("/games/{gameID}/agents/{name}", s.GetAgent)
	})
	return r
}

func (s *Service) game(w http.ResponseWriter, r *http.Request) (*store.Game, bool) {
	g, err := s.store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "game not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		writeError(w, "failed to load game", http.StatusInternalServerError)
		return nil, false
	}
	return g, true
}

func (s *Service) auction(w http.ResponseWriter, r *http.Request, g *store.Game) (*model.Auction, bool) {
	name := chi.URLParam(r, "name")
	if _, _, err := catalog.ParseAuctionName(name); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	a, ok := g.Info.Auction(name)
	if !ok {
		writeError(w, "auction not found: "+name, http.StatusNotFound)
		return nil, false
	}
	return a, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
