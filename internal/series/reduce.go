package series

import (
	"github.com/aelred/TheGreaterFool/internal/catalog"
	"github.com/aelred/TheGreaterFool/internal/model"
)

// ReduceBids turns one agent's bid history into price observations.
// Only submit events count; each is priced at its highest pair, or undefined
// when it carries no pairs.
func ReduceBids(events []model.BidEvent, ticksPerMinute int64) []Observation {
	var obs []Observation
	for _, ev := range events {
		if ev.Type != catalog.BidSubmit {
			continue
		}
		o := Observation{Time: Minutes(ev.Time, ticksPerMinute)}
		if p, ok := ev.MaxPrice(); ok {
			o.Price = Defined(p)
		}
		obs = append(obs, o)
	}
	return obs
}

// QuoteObservations converts quote history to observations.
func QuoteObservations(points []model.PricePoint, ticksPerMinute int64) []Observation {
	obs := make([]Observation, 0, len(points))
	for _, p := range points {
		obs = append(obs, Observation{
			Time:  Minutes(p.Time, ticksPerMinute),
			Price: Defined(p.Price),
		})
	}
	return obs
}
