package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/aelred/TheGreaterFool/internal/api"
	"github.com/aelred/TheGreaterFool/internal/series"
	"github.com/aelred/TheGreaterFool/internal/store"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

const sampleLog = `1000,g,12,1000,1600
1000,v,1.0,tac.example
1001,a,X,1
1001,a,Y,2
1002,u,9,2,3,10,0,1
1003,c,12,1,1,3,80,10,20,30
1060,q,9,100.0,90.0
1120,b,100,1,9,0,valid,1,85.0
1180,t,1,2,9,1,95.0,tx1
1240,q,9,120.0,95.0
1360,z,9
1600,s,12,1,1000,50,1050
`

// newTestEnv creates a Service with an in-memory store and its router.
func newTestEnv(t *testing.T) (*store.MemoryStore, chi.Router) {
	t.Helper()
	ms := store.NewMemoryStore()
	svc := api.NewService(ms, 60, 0, ',')
	return ms, svc.Router()
}

func do(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, router chi.Router, log string) api.GameSummary {
	t.Helper()
	w := do(t, router, "POST", "/api/v1/games?name=sample", log)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var summary api.GameSummary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return summary
}

func TestCreateGame(t *testing.T) {
	_, router := newTestEnv(t)
	summary := upload(t, router, sampleLog)

	if summary.ID == "" || summary.Source != "sample" || summary.Records != 12 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.DurationMinutes != 10 || summary.GameID != "12" {
		t.Errorf("unexpected game window: %+v", summary)
	}
	if len(summary.Auctions) != 2 || summary.Auctions[0] != "HotelTT3" {
		t.Errorf("unexpected auctions: %v", summary.Auctions)
	}
}

func TestCreateGame_Unanalyzable(t *testing.T) {
	ms, router := newTestEnv(t)
	tests := []string{
		"1000,g,12,1000,1600\n1050,q,9,1,1\n",
		"1000,k,1\n",
		"1000,c,12,1,1,2\n",
	}
	for _, log := range tests {
		w := do(t, router, "POST", "/api/v1/games", log)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d for %q", w.Code, log)
		}
		var body map[string]string
		json.NewDecoder(w.Body).Decode(&body)
		if !strings.Contains(body["error"], "cannot analyze") {
			t.Errorf("unexpected error body: %v", body)
		}
	}
	games, _ := ms.ListGames(context.Background())
	if len(games) != 0 {
		t.Errorf("rejected logs must not be registered, got %d", len(games))
	}
}

func TestListAndGetGame(t *testing.T) {
	_, router := newTestEnv(t)
	summary := upload(t, router, sampleLog)

	w := do(t, router, "GET", "/api/v1/games", "")
	var games []api.GameSummary
	json.NewDecoder(w.Body).Decode(&games)
	if len(games) != 1 || games[0].ID != summary.ID {
		t.Fatalf("unexpected listing: %+v", games)
	}

	if w := do(t, router, "GET", "/api/v1/games/"+summary.ID, ""); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := do(t, router, "GET", "/api/v1/games/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	if w := do(t, router, "DELETE", "/api/v1/games/"+summary.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w := do(t, router, "GET", "/api/v1/games/"+summary.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListAuctions(t *testing.T) {
	_, router := newTestEnv(t)
	summary := upload(t, router, sampleLog)

	w := do(t, router, "GET", "/api/v1/games/"+summary.ID+"/auctions", "")
	var auctions []api.AuctionSummary
	if err := json.NewDecoder(w.Body).Decode(&auctions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(auctions) != 2 {
		t.Fatalf("expected 2 auctions, got %d", len(auctions))
	}
	hotel := auctions[0]
	if hotel.Name != "HotelTT3" || hotel.Quotes != 2 || hotel.Transactions != 1 {
		t.Errorf("unexpected hotel summary: %+v", hotel)
	}
	if hotel.Closed == nil || *hotel.Closed != 360 {
		t.Errorf("expected closed at 360, got %v", hotel.Closed)
	}
	if len(hotel.Bidders) != 1 || hotel.Bidders[0] != "X" {
		t.Errorf("unexpected bidders: %v", hotel.Bidders)
	}
}

func TestGetAuction(t *testing.T) {
	_, router := newTestEnv(t)
	summary := upload(t, router, sampleLog)
	base := "/api/v1/games/" + summary.ID + "/auctions/"

	w := do(t, router, "GET", base+"HotelTT3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	if body["name"] != "HotelTT3" {
		t.Errorf("unexpected auction: %v", body)
	}
	bids, ok := body["bids"].(map[string]any)
	if !ok || bids["X"] == nil {
		t.Errorf("expected bids keyed by agent, got %v", body["bids"])
	}

	if w := do(t, router, "GET", base+"HotelSS3", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for absent auction, got %d", w.Code)
	}
	if w := do(t, router, "GET", base+"Boat1", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid name, got %d", w.Code)
	}
}

func TestGetSeries(t *testing.T) {
	_, router := newTestEnv(t)
	summary := upload(t, router, sampleLog)

	w := do(t, router, "GET", "/api/v1/games/"+summary.ID+"/auctions/HotelTT3/series", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"sell":[null,`) {
		t.Errorf("expected undefined minutes as null: %s", w.Body.String())
	}

	var chart series.Chart
	if err := json.NewDecoder(strings.NewReader(w.Body.String())).Decode(&chart); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if chart.Minutes != 10 || chart.Stop != 6 {
		t.Fatalf("unexpected chart bounds: %d / %v", chart.Minutes, chart.Stop)
	}
	if !chart.Sell[1].Valid || !chart.Sell[1].Decimal.Equal(d(100)) {
		t.Errorf("minute 1 sell: %+v", chart.Sell[1])
	}
	if !chart.Sell[4].Valid || !chart.Sell[4].Decimal.Equal(d(120)) {
		t.Errorf("minute 4 sell: %+v", chart.Sell[4])
	}
	if chart.Sell[7].Valid {
		t.Errorf("minute 7 is after close, got %+v", chart.Sell[7])
	}
	if len(chart.Bids) != 1 || chart.Bids[0].Agent != "X" || !chart.Bids[0].Prices[2].Decimal.Equal(d(85)) {
		t.Errorf("unexpected bid lines: %+v", chart.Bids)
	}
}

func TestGetSeries_Capped(t *testing.T) {
	svc := api.NewService(store.NewMemoryStore(), 60, 5, ',')
	router := svc.Router()
	summary := upload(t, router, sampleLog)

	w := do(t, router, "GET", "/api/v1/games/"+summary.ID+"/auctions/HotelTT3/series", "")
	var chart series.Chart
	if err := json.NewDecoder(w.Body).Decode(&chart); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if chart.Minutes != 5 || len(chart.Sell) != 5 || !chart.Truncated {
		t.Errorf("expected 5 truncated minutes, got %d (%v)", chart.Minutes, chart.Truncated)
	}
	if summary.DurationMinutes != 10 {
		t.Errorf("game duration should not be capped, got %d", summary.DurationMinutes)
	}
}

func TestGetAgent(t *testing.T) {
	_, router := newTestEnv(t)
	summary := upload(t, router, sampleLog)
	base := "/api/v1/games/" + summary.ID + "/agents/"

	w := do(t, router, "GET", base+"X", "")
	var agent struct {
		Name    string           `json:"name"`
		Clients []map[string]int `json:"clients"`
		Results *struct {
			Score decimal.Decimal `json:"score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(w.Body).Decode(&agent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if agent.Name != "X" || len(agent.Clients) != 1 || agent.Results == nil || !agent.Results.Score.Equal(d(1000)) {
		t.Errorf("unexpected agent: %+v", agent)
	}

	if w := do(t, router, "GET", base+"Z", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetCatalog(t *testing.T) {
	_, router := newTestEnv(t)
	w := do(t, router, "GET", "/api/v1/catalog", "")
	var cat api.CatalogResponse
	if err := json.NewDecoder(w.Body).Decode(&cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cat.Resources) != 7 || len(cat.BidTypes) != 5 {
		t.Errorf("unexpected catalog sizes %d / %d", len(cat.Resources), len(cat.BidTypes))
	}
	if cat.Resources[2].Name != "HotelTT" {
		t.Errorf("expected code 2 to be HotelTT, got %+v", cat.Resources[2])
	}
}

func TestHealth(t *testing.T) {
	_, router := newTestEnv(t)
	w := do(t, router, "GET", "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response: %d %s", w.Code, w.Body.String())
	}
}
