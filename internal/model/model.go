// Package model defines the market model rebuilt from a game log.
// All prices use shopspring/decimal, never float64.
//
// Every time stored here is relative to the game start, in raw log ticks.
// Lists are append-only and kept in log order.
package model

import (
	"math"

	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/aelred/TheGreaterFool/internal/catalog"
)

// GameInfo is the root of the model. It is built once by the interpreter and
// only read afterwards.
type GameInfo struct {
	GameID  string `json:"game_id,omitempty" yaml:"game_id,omitempty"`
	Start   int64  `json:"start" yaml:"start"`
	End     int64  `json:"end" yaml:"end"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Server  string `json:"server,omitempty" yaml:"server,omitempty"`

	// Agents and Auctions are keyed by display name in registration order.
	Agents   *orderedmap.OrderedMap[string, *Agent]   `json:"agents" yaml:"agents"`
	Auctions *orderedmap.OrderedMap[string, *Auction] `json:"auctions" yaml:"auctions"`
}

// NewGameInfo returns an empty model with start 0.
func NewGameInfo() *GameInfo {
	return &GameInfo{
		Agents:   orderedmap.New[string, *Agent](),
		Auctions: orderedmap.New[string, *Auction](),
	}
}

// Agent looks up an agent by display name.
func (g *GameInfo) Agent(name string) (*Agent, bool) {
	return g.Agents.Get(name)
}

// Auction looks up an auction by display name.
func (g *GameInfo) Auction(name string) (*Auction, bool) {
	return g.Auctions.Get(name)
}

// AgentNames returns agent names in registration order.
func (g *GameInfo) AgentNames() []string {
	names := make([]string, 0, g.Agents.Len())
	for pair := g.Agents.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// AuctionNames returns auction names in registration order.
func (g *GameInfo) AuctionNames() []string {
	names := make([]string, 0, g.Auctions.Len())
	for pair := g.Auctions.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// DurationMinutes is the game length in whole minutes, rounded up and
// clamped to math.MaxInt.
func (g *GameInfo) DurationMinutes(ticksPerMinute int64) int {
	if g.End <= g.Start || ticksPerMinute <= 0 {
		return 0
	}
	// End-Start can overflow int64; the unsigned difference cannot.
	span := uint64(g.End) - uint64(g.Start)
	tpm := uint64(ticksPerMinute)
	minutes := span / tpm
	if span%tpm != 0 {
		minutes++
	}
	if minutes > math.MaxInt {
		return math.MaxInt
	}
	return int(minutes)
}

// Client is one client's travel preferences.
type Client struct {
	Arrival   int `json:"arrival" yaml:"arrival"`
	Departure int `json:"departure" yaml:"departure"`
	HotelPref int `json:"hotel_pref" yaml:"hotel_pref"`
	Ent1Pref  int `json:"ent1_pref" yaml:"ent1_pref"`
	Ent2Pref  int `json:"ent2_pref" yaml:"ent2_pref"`
	Ent3Pref  int `json:"ent3_pref" yaml:"ent3_pref"`
}

// Allocation is the final allocation of goods to one client.
type Allocation struct {
	InFlight  int `json:"in_flight" yaml:"in_flight"`
	OutFlight int `json:"out_flight" yaml:"out_flight"`
	Hotel     int `json:"hotel" yaml:"hotel"`
	Ent1      int `json:"ent1" yaml:"ent1"`
	Ent2      int `json:"ent2" yaml:"ent2"`
	Ent3      int `json:"ent3" yaml:"ent3"`
}

// Results is an agent's end-of-game score.
type Results struct {
	Score    decimal.Decimal `json:"score" yaml:"score"`
	Penalty  decimal.Decimal `json:"penalty" yaml:"penalty"`
	Utility  decimal.Decimal `json:"utility" yaml:"utility"`
	CalcTime string          `json:"calc_time,omitempty" yaml:"calc_time,omitempty"`
}

// Agent is a trading agent taking part in the game.
type Agent struct {
	Name    string       `json:"name" yaml:"name"`
	ID      string       `json:"id" yaml:"id"`
	Clients []Client     `json:"clients" yaml:"clients"`
	Alloc   []Allocation `json:"alloc" yaml:"alloc"`
	Results *Results     `json:"results,omitempty" yaml:"results,omitempty"` // nil until final score
}

// PricePoint is one quoted price.
type PricePoint struct {
	Time  int64           `json:"time" yaml:"time"`
	Price decimal.Decimal `json:"price" yaml:"price"`
}

// Transaction is an executed trade. Buyer and Seller are agent names.
type Transaction struct {
	ID       string          `json:"id,omitempty" yaml:"id,omitempty"`
	Time     int64           `json:"time" yaml:"time"`
	Buyer    string          `json:"buyer" yaml:"buyer"`
	Seller   string          `json:"seller" yaml:"seller"`
	Quantity int             `json:"quantity" yaml:"quantity"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
}

// BidPair is one (quantity, price) point of a bid.
type BidPair struct {
	Quantity int             `json:"quantity" yaml:"quantity"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
}

// BidEvent is one change to an agent's bid in an auction.
type BidEvent struct {
	ID     string          `json:"id" yaml:"id"`
	Time   int64           `json:"time" yaml:"time"`
	Type   catalog.BidType `json:"type" yaml:"type"`
	Status string          `json:"status" yaml:"status"`
	Bids   []BidPair       `json:"bids" yaml:"bids"`
}

// MaxPrice returns the highest price among the pairs, or false when the
// event carries none.
func (e BidEvent) MaxPrice() (decimal.Decimal, bool) {
	if len(e.Bids) == 0 {
		return decimal.Zero, false
	}
	best := e.Bids[0].Price
	for _, p := range e.Bids[1:] {
		if p.Price.GreaterThan(best) {
			best = p.Price
		}
	}
	return best, true
}

// Auction is one market for one resource on one day.
type Auction struct {
	Name         string           `json:"name" yaml:"name"`
	ID           string           `json:"id" yaml:"id"`
	Resource     catalog.Resource `json:"resource" yaml:"resource"`
	Day          int              `json:"day" yaml:"day"`
	Sell         []PricePoint     `json:"sell" yaml:"sell"` // ask quotes
	Buy          []PricePoint     `json:"buy" yaml:"buy"`   // bid quotes
	Transactions []Transaction    `json:"transactions" yaml:"transactions"`
	// Bids is keyed by agent name in order of each agent's first bid.
	Bids   *orderedmap.OrderedMap[string, []BidEvent] `json:"bids" yaml:"bids"`
	Closed *int64                                     `json:"closed,omitempty" yaml:"closed,omitempty"` // set once
}

// NewAuction creates an auction with no history.
func NewAuction(id string, res catalog.Resource, day int) *Auction {
	return &Auction{
		Name:     catalog.AuctionName(res, day),
		ID:       id,
		Resource: res,
		Day:      day,
		Bids:     orderedmap.New[string, []BidEvent](),
	}
}

// AddBid appends a bid event to the agent's history.
func (a *Auction) AddBid(agent string, ev BidEvent) {
	events, _ := a.Bids.Get(agent)
	a.Bids.Set(agent, append(events, ev))
}

// Bidders returns the names of agents that bid, in first-bid order.
func (a *Auction) Bidders() []string {
	names := make([]string, 0, a.Bids.Len())
	for pair := a.Bids.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// IsClosed reports whether a close-auction record was seen.
func (a *Auction) IsClosed() bool {
	return a.Closed != nil
}
