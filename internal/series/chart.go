package series

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aelred/TheGreaterFool/internal/model"
)

var (
	// ErrAuctionNotFound is returned for a name the game never defined.
	ErrAuctionNotFound = errors.New("series: auction not found")
)

// DefaultMaxMinutes bounds a chart when the caller sets no limit.
const DefaultMaxMinutes = 24 * 60

// Line is one agent's reconstructed bid price.
type Line struct {
	Agent  string                `json:"agent"`
	Prices []decimal.NullDecimal `json:"prices"`
}

// Chart bundles everything needed to draw one auction.
type Chart struct {
	Auction      string                `json:"auction"`
	Minutes      int                   `json:"minutes"`
	Stop         float64               `json:"stop"`
	Truncated    bool                  `json:"truncated,omitempty"` // game longer than the limit
	Sell         []decimal.NullDecimal `json:"sell"`
	Buy          []decimal.NullDecimal `json:"buy"`
	Bids         []Line                `json:"bids"` // in first-bid order
	Transactions []model.Transaction   `json:"transactions"`
}

// BuildChart reconstructs the quote and bid series of the named auction.
// Series end at the auction's close, or at the end of the game when it never
// closed. At most maxMinutes are produced; a non-positive limit means
// DefaultMaxMinutes.
func BuildChart(game *model.GameInfo, name string, ticksPerMinute int64, maxMinutes int) (*Chart, error) {
	a, ok := game.Auction(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAuctionNotFound, name)
	}
	if maxMinutes <= 0 {
		maxMinutes = DefaultMaxMinutes
	}

	minutes := game.DurationMinutes(ticksPerMinute)
	stop := float64(minutes)
	if a.IsClosed() {
		stop = Minutes(*a.Closed, ticksPerMinute)
	}
	truncated := minutes > maxMinutes
	if truncated {
		minutes = maxMinutes
	}
	r := Reconstructor{Minutes: minutes}

	c := &Chart{
		Auction:      a.Name,
		Minutes:      minutes,
		Stop:         stop,
		Truncated:    truncated,
		Sell:         r.Reconstruct(QuoteObservations(a.Sell, ticksPerMinute), stop),
		Buy:          r.Reconstruct(QuoteObservations(a.Buy, ticksPerMinute), stop),
		Transactions: a.Transactions,
	}
	for pair := a.Bids.Oldest(); pair != nil; pair = pair.Next() {
		c.Bids = append(c.Bids, Line{
			Agent:  pair.Key,
			Prices: r.Reconstruct(ReduceBids(pair.Value, ticksPerMinute), stop),
		})
	}
	return c, nil
}
