// Package series turns sparse price observations into dense per-minute series.
//
// Quotes are step functions, so reconstruction uses nearest-neighbor lookup
// rather than linear interpolation. Missing data is an invalid
// decimal.NullDecimal, never a NaN.
package series

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Epsilon is the offset, in minutes, applied to an observation whose time does
// not exceed its predecessor's.
const Epsilon = 1e-6

// Observation is one price seen at a time in minutes since game start.
type Observation struct {
	Time  float64             `json:"time"`
	Price decimal.NullDecimal `json:"price"`
}

// Undefined is the missing-value sentinel.
var Undefined = decimal.NullDecimal{}

// Defined wraps a price as a present value.
func Defined(p decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: p, Valid: true}
}

// Reconstructor produces series of a fixed length.
type Reconstructor struct {
	Minutes int
}

// Reconstruct returns one value per whole minute in [0, Minutes).
//
// A minute is undefined when it lies after stop, when there are no
// observations, or when it precedes the first observation. From the last
// observation on the last value is held. In between, the nearest observation
// wins and the earlier one wins an exact tie. A single observation behaves
// the same way: undefined before it, constant from it up to stop.
func (r Reconstructor) Reconstruct(obs []Observation, stop float64) []decimal.NullDecimal {
	n := r.Minutes
	if n < 0 {
		n = 0
	}
	out := make([]decimal.NullDecimal, n)
	if len(obs) == 0 {
		return out
	}
	times := StrictTimes(obs)
	last := len(times) - 1

	for m := 0; m < n; m++ {
		t := float64(m)
		switch {
		case t > stop, t < times[0]:
			continue
		case t >= times[last]:
			out[m] = obs[last].Price
		default:
			// first index with times[i] >= t; i >= 1 unless t == times[0]
			i := sort.SearchFloat64s(times, t)
			if i < len(times) && times[i] == t {
				out[m] = obs[i].Price
				continue
			}
			lo, hi := i-1, i
			if t-times[lo] <= times[hi]-t {
				out[m] = obs[lo].Price
			} else {
				out[m] = obs[hi].Price
			}
		}
	}
	return out
}

// StrictTimes returns the observation times as a strictly increasing axis.
// A time equal to or before its predecessor's is moved Epsilon past it.
func StrictTimes(obs []Observation) []float64 {
	times := make([]float64, len(obs))
	for i, o := range obs {
		times[i] = o.Time
		if i > 0 && times[i] <= times[i-1] {
			times[i] = times[i-1] + Epsilon
		}
	}
	return times
}

// Minutes converts log ticks to fractional minutes. A non-positive rate is
// treated as one tick per minute.
func Minutes(ticks, ticksPerMinute int64) float64 {
	if ticksPerMinute <= 0 {
		return float64(ticks)
	}
	return float64(ticks) / float64(ticksPerMinute)
}
