// Package catalog holds the fixed code tables of the trading game: the seven
// auctioned resources and the five bid event types. The log refers to both by
// short codes; everything downstream uses the names defined here.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Resource is the display name of an auctioned good.
type Resource string

// Supported resources.
const (
	FlightA Resource = "FlightA" // inbound flight
	FlightD Resource = "FlightD" // outbound flight
	HotelTT Resource = "HotelTT" // Tampa Towers
	HotelSS Resource = "HotelSS" // Shoreline Shanties
	Ent1    Resource = "Ent1"
	Ent2    Resource = "Ent2"
	Ent3    Resource = "Ent3"
)

// BidType classifies a bid event.
type BidType string

// Supported bid event types.
const (
	BidSubmit   BidType = "submit"
	BidReplace  BidType = "replace"
	BidTransact BidType = "transact"
	BidWithdraw BidType = "withdraw"
	BidReject   BidType = "reject"
)

// Entry maps a log code to its name.
type Entry[T ~string] struct {
	Code string `json:"code" yaml:"code"`
	Name T      `json:"name" yaml:"name"`
}

// Resources lists resource codes in code order.
var Resources = []Entry[Resource]{
	{Code: "0", Name: FlightA},
	{Code: "1", Name: FlightD},
	{Code: "2", Name: HotelTT},
	{Code: "3", Name: HotelSS},
	{Code: "4", Name: Ent1},
	{Code: "5", Name: Ent2},
	{Code: "6", Name: Ent3},
}

// BidTypes lists bid-type codes in code order.
var BidTypes = []Entry[BidType]{
	{Code: "0", Name: BidSubmit},
	{Code: "1", Name: BidReplace},
	{Code: "2", Name: BidTransact},
	{Code: "3", Name: BidWithdraw},
	{Code: "4", Name: BidReject},
}

// FirstDay and LastDay bound the day of an auction.
const (
	FirstDay = 1
	LastDay  = 5
)

var (
	ErrUnknownResource    = errors.New("catalog: unknown resource code")
	ErrUnknownBidType     = errors.New("catalog: unknown bid type code")
	ErrInvalidAuctionName = errors.New("catalog: invalid auction name")
)

// nameRegex matches: {resource}{day}
// Example: HotelTT3
var nameRegex = regexp.MustCompile(`^(FlightA|FlightD|HotelTT|HotelSS|Ent1|Ent2|Ent3)([0-9]+)$`)

// ResourceByCode resolves a log resource code.
func ResourceByCode(code string) (Resource, error) {
	for _, e := range Resources {
		if e.Code == code {
			return e.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, code)
}

// BidTypeByCode resolves a log bid-type code.
func BidTypeByCode(code string) (BidType, error) {
	for _, e := range BidTypes {
		if e.Code == code {
			return e.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBidType, code)
}

// AuctionName builds the display name of an auction, e.g. HotelTT3.
func AuctionName(r Resource, day int) string {
	return string(r) + strconv.Itoa(day)
}

// ParseAuctionName splits a display name back into resource and day.
// Format: {resource}{day}, day in [FirstDay, LastDay].
func ParseAuctionName(name string) (Resource, int, error) {
	matches := nameRegex.FindStringSubmatch(name)
	if matches == nil {
		return "", 0, fmt.Errorf("%w: %s (expected {resource}{day}, e.g. HotelTT3)",
			ErrInvalidAuctionName, name)
	}

	day, err := strconv.Atoi(matches[2])
	if err != nil || day < FirstDay || day > LastDay {
		return "", 0, fmt.Errorf("%w: day %s out of range", ErrInvalidAuctionName, matches[2])
	}
	return Resource(matches[1]), day, nil
}
