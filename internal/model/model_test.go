package model

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/aelred/TheGreaterFool/internal/catalog"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		start, end int64
		tpm        int64
		want       int
	}{
		{1000, 1600, 60, 10},
		{1000, 1601, 60, 11},
		{0, 540000, 60000, 9},
		{0, 0, 60, 0},
		{500, 100, 60, 0},
		{0, 600, 0, 0},
		{-9e18, 9e18, 60, 3e17},
		{math.MinInt64, math.MaxInt64, 1, math.MaxInt},
	}
	for _, tt := range tests {
		g := NewGameInfo()
		g.Start, g.End = tt.start, tt.end
		if got := g.DurationMinutes(tt.tpm); got != tt.want {
			t.Errorf("DurationMinutes(%d..%d, %d) = %d, want %d", tt.start, tt.end, tt.tpm, got, tt.want)
		}
	}
}

func TestNewAuction_Name(t *testing.T) {
	a := NewAuction("9", catalog.HotelTT, 3)
	if a.Name != "HotelTT3" {
		t.Errorf("expected HotelTT3, got %s", a.Name)
	}
	if a.IsClosed() {
		t.Error("new auction should not be closed")
	}
}

func TestAuction_AddBidKeepsAgentOrder(t *testing.T) {
	a := NewAuction("1", catalog.FlightA, 1)
	a.AddBid("zed", BidEvent{ID: "1"})
	a.AddBid("amy", BidEvent{ID: "2"})
	a.AddBid("zed", BidEvent{ID: "3"})

	bidders := a.Bidders()
	if len(bidders) != 2 || bidders[0] != "zed" || bidders[1] != "amy" {
		t.Fatalf("expected [zed amy], got %v", bidders)
	}
	events, _ := a.Bids.Get("zed")
	if len(events) != 2 || events[0].ID != "1" || events[1].ID != "3" {
		t.Errorf("unexpected zed history: %+v", events)
	}
}

func TestBidEvent_MaxPrice(t *testing.T) {
	ev := BidEvent{Bids: []BidPair{
		{Quantity: 1, Price: d(5)},
		{Quantity: 2, Price: d(7)},
		{Quantity: 1, Price: d(6.5)},
	}}
	p, ok := ev.MaxPrice()
	if !ok || !p.Equal(d(7)) {
		t.Errorf("expected 7, got %s (ok=%v)", p, ok)
	}

	if _, ok := (BidEvent{}).MaxPrice(); ok {
		t.Error("empty bid should have no max price")
	}
}

func TestGameInfo_NamesInRegistrationOrder(t *testing.T) {
	g := NewGameInfo()
	for _, name := range []string{"HotelTT3", "FlightA1", "Ent24"} {
		g.Auctions.Set(name, &Auction{Name: name})
	}
	names := g.AuctionNames()
	want := []string{"HotelTT3", "FlightA1", "Ent24"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if _, ok := g.Auction("FlightA1"); !ok {
		t.Error("expected lookup of FlightA1 to succeed")
	}
	if _, ok := g.Auction("FlightD1"); ok {
		t.Error("expected lookup of FlightD1 to fail")
	}
}
