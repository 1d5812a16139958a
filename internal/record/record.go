// Package record decodes game log rows into typed records.
//
// Each log row is "time,tag,payload...". Split separates the row; Parse
// types the payload according to the tag and returns one Record variant per
// tag. Parsing never looks at previously seen records.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aelred/TheGreaterFool/internal/catalog"
)

// Tag selects the shape of a record.
type Tag string

// Record tags as written by the game server.
const (
	TagStartGame    Tag = "g"
	TagVersion      Tag = "v"
	TagAddAgent     Tag = "a"
	TagClientPrefs  Tag = "c"
	TagStartAuction Tag = "u"
	TagTransaction  Tag = "t"
	TagQuote        Tag = "q"
	TagBid          Tag = "b"
	TagCloseAuction Tag = "z"
	TagEndGame      Tag = "x"
	TagFinalAlloc   Tag = "l"
	TagFinalScore   Tag = "s"
)

// Tags lists every known tag.
var Tags = []Tag{
	TagStartGame, TagVersion, TagAddAgent, TagClientPrefs, TagStartAuction,
	TagTransaction, TagQuote, TagBid, TagCloseAuction, TagEndGame,
	TagFinalAlloc, TagFinalScore,
}

// Group sizes of the batch records.
const (
	ClientGroupSize  = 6
	AuctionGroupSize = 3
	AllocGroupSize   = 6
	BidPairSize      = 2
)

// Record is implemented by every typed record.
type Record interface {
	Tag() Tag
}

type StartGame struct {
	GameID     string
	Start, End int64
	UGameID    string
	GameType   string
	NumAgents  string
}

type Version struct {
	ServerVersion string
	ServerName    string
}

type AddAgent struct {
	Name string
	ID   string
}

type ClientPref struct {
	Arrival, Departure, HotelPref int
	Ent1, Ent2, Ent3              int
}

type ClientPrefs struct {
	GameID  string
	AgentID string
	Clients []ClientPref
}

type AuctionDef struct {
	ID       string
	Resource catalog.Resource
	Day      int
}

type StartAuction struct {
	Auctions []AuctionDef
}

type Transaction struct {
	BuyerID, SellerID string
	AuctionID         string
	Quantity          int
	Price             decimal.Decimal
	TransactionID     string
}

type Quote struct {
	AuctionID string
	Sell, Buy decimal.Decimal
	Extra     []string // hotel quantity-won fields, not interpreted
}

type BidPair struct {
	Quantity int
	Price    decimal.Decimal
}

type Bid struct {
	BidID     string
	AgentID   string
	AuctionID string
	Type      catalog.BidType
	Status    string
	Pairs     []BidPair
}

type CloseAuction struct {
	AuctionID string
}

type EndGame struct {
	GameID  string
	UGameID string
}

type Alloc struct {
	InFlight, OutFlight, Hotel int
	Ent1, Ent2, Ent3           int
}

type FinalAlloc struct {
	GameID  string
	AgentID string
	Allocs  []Alloc
}

type FinalScore struct {
	GameID                  string
	AgentID                 string
	Score, Penalty, Utility decimal.Decimal
	CalcTime                string
}

func (StartGame) Tag() Tag    { return TagStartGame }
func (Version) Tag() Tag      { return TagVersion }
func (AddAgent) Tag() Tag     { return TagAddAgent }
func (ClientPrefs) Tag() Tag  { return TagClientPrefs }
func (StartAuction) Tag() Tag { return TagStartAuction }
func (Transaction) Tag() Tag  { return TagTransaction }
func (Quote) Tag() Tag        { return TagQuote }
func (Bid) Tag() Tag          { return TagBid }
func (CloseAuction) Tag() Tag { return TagCloseAuction }
func (EndGame) Tag() Tag      { return TagEndGame }
func (FinalAlloc) Tag() Tag   { return TagFinalAlloc }
func (FinalScore) Tag() Tag   { return TagFinalScore }

// Parse types the payload of a raw row.
func Parse(raw Raw) (Record, error) {
	p := &parser{raw: raw}
	var rec Record

	switch raw.Tag {
	case TagStartGame:
		p.arity(3, 6)
		rec = StartGame{
			GameID:    p.str(0),
			Start:     p.atoi64(1),
			End:       p.atoi64(2),
			UGameID:   p.str(3),
			GameType:  p.str(4),
			NumAgents: p.str(5),
		}
	case TagVersion:
		p.arity(2, 2)
		rec = Version{ServerVersion: p.str(0), ServerName: p.str(1)}
	case TagAddAgent:
		p.arity(2, 2)
		rec = AddAgent{Name: p.str(0), ID: p.str(1)}
	case TagClientPrefs:
		p.atLeast(2)
		r := ClientPrefs{GameID: p.str(0), AgentID: p.str(1)}
		for _, g := range p.groups(2, ClientGroupSize) {
			r.Clients = append(r.Clients, ClientPref{
				Arrival: p.atoi(g[0]), Departure: p.atoi(g[1]), HotelPref: p.atoi(g[2]),
				Ent1: p.atoi(g[3]), Ent2: p.atoi(g[4]), Ent3: p.atoi(g[5]),
			})
		}
		rec = r
	case TagStartAuction:
		var r StartAuction
		for _, g := range p.groups(0, AuctionGroupSize) {
			res, err := catalog.ResourceByCode(strings.TrimSpace(g[1]))
			if err != nil {
				p.fail("%v", err)
			}
			day := p.atoi(g[2])
			if day < catalog.FirstDay || day > catalog.LastDay {
				p.fail("day %d outside %d..%d", day, catalog.FirstDay, catalog.LastDay)
			}
			r.Auctions = append(r.Auctions, AuctionDef{ID: strings.TrimSpace(g[0]), Resource: res, Day: day})
		}
		rec = r
	case TagTransaction:
		p.arity(5, 6)
		rec = Transaction{
			BuyerID:       p.str(0),
			SellerID:      p.str(1),
			AuctionID:     p.str(2),
			Quantity:      p.atoi(p.str(3)),
			Price:         p.dec(p.str(4)),
			TransactionID: p.str(5),
		}
	case TagQuote:
		p.atLeast(3)
		rec = Quote{
			AuctionID: p.str(0),
			Sell:      p.dec(p.str(1)),
			Buy:       p.dec(p.str(2)),
			Extra:     p.rest(3),
		}
	case TagBid:
		p.atLeast(5)
		bt, err := catalog.BidTypeByCode(strings.TrimSpace(p.str(3)))
		if err != nil {
			p.fail("%v", err)
		}
		r := Bid{
			BidID:     p.str(0),
			AgentID:   p.str(1),
			AuctionID: p.str(2),
			Type:      bt,
			Status:    p.str(4),
		}
		for _, g := range p.groups(5, BidPairSize) {
			r.Pairs = append(r.Pairs, BidPair{Quantity: p.atoi(g[0]), Price: p.dec(g[1])})
		}
		rec = r
	case TagCloseAuction:
		p.arity(1, 1)
		rec = CloseAuction{AuctionID: p.str(0)}
	case TagEndGame:
		p.arity(1, 2)
		rec = EndGame{GameID: p.str(0), UGameID: p.str(1)}
	case TagFinalAlloc:
		p.atLeast(2)
		r := FinalAlloc{GameID: p.str(0), AgentID: p.str(1)}
		for _, g := range p.groups(2, AllocGroupSize) {
			r.Allocs = append(r.Allocs, Alloc{
				InFlight: p.atoi(g[0]), OutFlight: p.atoi(g[1]), Hotel: p.atoi(g[2]),
				Ent1: p.atoi(g[3]), Ent2: p.atoi(g[4]), Ent3: p.atoi(g[5]),
			})
		}
		rec = r
	case TagFinalScore:
		p.arity(5, 6)
		rec = FinalScore{
			GameID:   p.str(0),
			AgentID:  p.str(1),
			Score:    p.dec(p.str(2)),
			Penalty:  p.dec(p.str(3)),
			Utility:  p.dec(p.str(4)),
			CalcTime: p.str(5),
		}
	default:
		return nil, &UnknownRecordTypeError{Row: raw.Row, Tag: raw.Tag}
	}

	if p.err != nil {
		return nil, p.err
	}
	return rec, nil
}

// Chunk splits fields into consecutive groups of n. A length that is not a
// multiple of n wraps ErrMalformedRecord.
func Chunk(fields []string, n int) ([][]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("record: invalid group size %d", n)
	}
	if len(fields)%n != 0 {
		return nil, fmt.Errorf("%w: %d fields do not form groups of %d", ErrMalformedRecord, len(fields), n)
	}
	groups := make([][]string, 0, len(fields)/n)
	for i := 0; i < len(fields); i += n {
		groups = append(groups, fields[i:i+n])
	}
	return groups, nil
}

// parser keeps the first error so field accessors can be chained; accessors
// return zero values once an error is recorded.
type parser struct {
	raw Raw
	err error
}

func (p *parser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = malformed(p.raw, format, args...)
	}
}

func (p *parser) arity(lo, hi int) {
	if n := len(p.raw.Fields); n < lo || n > hi {
		if lo == hi {
			p.fail("expected %d fields, got %d", lo, n)
		} else {
			p.fail("expected %d to %d fields, got %d", lo, hi, n)
		}
	}
}

func (p *parser) atLeast(lo int) {
	if n := len(p.raw.Fields); n < lo {
		p.fail("expected at least %d fields, got %d", lo, n)
	}
}

func (p *parser) str(i int) string {
	if p.err != nil || i >= len(p.raw.Fields) {
		return ""
	}
	return strings.TrimSpace(p.raw.Fields[i])
}

func (p *parser) rest(from int) []string {
	if p.err != nil || from >= len(p.raw.Fields) {
		return nil
	}
	return p.raw.Fields[from:]
}

func (p *parser) groups(from, n int) [][]string {
	if p.err != nil {
		return nil
	}
	rest := p.rest(from)
	groups, err := Chunk(rest, n)
	if err != nil {
		p.fail("%d fields do not form groups of %d", len(rest), n)
		return nil
	}
	return groups
}

func (p *parser) atoi(s string) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		p.fail("invalid integer %q", s)
	}
	return v
}

func (p *parser) atoi64(i int) int64 {
	s := p.str(i)
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.fail("invalid integer %q", s)
	}
	return v
}

func (p *parser) dec(s string) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		p.fail("invalid number %q", s)
	}
	return v
}
