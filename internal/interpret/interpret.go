// Package interpret folds decoded log records into a market model.
//
// An Interpreter owns the model under construction and the id tables that map
// the log's runtime agent and auction ids to display names. Records must be
// applied in log order; any error leaves the interpreter unusable.
package interpret

import (
	"errors"
	"fmt"
	"io"

	"github.com/aelred/TheGreaterFool/internal/model"
	"github.com/aelred/TheGreaterFool/internal/record"
)

var (
	// ErrUnknownReference is wrapped by every UnknownReferenceError.
	ErrUnknownReference = errors.New("interpret: unknown reference")
)

// Reference kinds reported by UnknownReferenceError.
const (
	KindAgent   = "agent"
	KindAuction = "auction"
)

// UnknownReferenceError reports an id used before its defining record.
type UnknownReferenceError struct {
	Row  int
	Kind string
	ID   string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("row %d: %v: %s id %q", e.Row, ErrUnknownReference, e.Kind, e.ID)
}

func (e *UnknownReferenceError) Unwrap() error { return ErrUnknownReference }

// Source yields raw rows in log order and io.EOF at the end.
type Source interface {
	Next() (record.Raw, error)
}

// Interpreter builds one GameInfo from one log.
type Interpreter struct {
	game         *model.GameInfo
	agentNames   map[string]string // agent id -> display name
	auctionNames map[string]string // auction id -> display name
	err          error
}

// New returns an interpreter with an empty model.
func New() *Interpreter {
	return &Interpreter{
		game:         model.NewGameInfo(),
		agentNames:   make(map[string]string),
		auctionNames: make(map[string]string),
	}
}

// Game returns the model built so far.
func (in *Interpreter) Game() *model.GameInfo {
	return in.game
}

// Interpret consumes src to the end and returns the finished model. On error
// no model is returned.
func Interpret(src Source) (*model.GameInfo, error) {
	in := New()
	for {
		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			return in.Game(), nil
		}
		if err != nil {
			return nil, err
		}
		if err := in.Apply(raw); err != nil {
			return nil, err
		}
	}
}

// InterpretRaw is Interpret over rows already in memory.
func InterpretRaw(rows []record.Raw) (*model.GameInfo, error) {
	return Interpret(&sliceSource{rows: rows})
}

type sliceSource struct {
	rows []record.Raw
	pos  int
}

func (s *sliceSource) Next() (record.Raw, error) {
	if s.pos >= len(s.rows) {
		return record.Raw{}, io.EOF
	}
	raw := s.rows[s.pos]
	s.pos++
	return raw, nil
}

// Apply parses one raw row and folds it into the model.
func (in *Interpreter) Apply(raw record.Raw) error {
	if in.err != nil {
		return fmt.Errorf("interpret: interpreter already failed: %w", in.err)
	}
	rec, err := record.Parse(raw)
	if err != nil {
		in.err = err
		return err
	}
	if err := in.apply(raw.Row, raw.Time-in.game.Start, rec); err != nil {
		in.err = err
		return err
	}
	return nil
}

func (in *Interpreter) apply(row int, t int64, rec record.Record) error {
	g := in.game

	switch r := rec.(type) {
	case record.StartGame:
		g.GameID = r.GameID
		g.Start = r.Start
		g.End = r.End

	case record.Version:
		g.Version = r.ServerVersion
		g.Server = r.ServerName

	case record.AddAgent:
		if _, ok := g.Agents.Get(r.Name); ok {
			return duplicate(row, r.Tag(), "agent name %q", r.Name)
		}
		if _, ok := in.agentNames[r.ID]; ok {
			return duplicate(row, r.Tag(), "agent id %q", r.ID)
		}
		g.Agents.Set(r.Name, &model.Agent{Name: r.Name, ID: r.ID})
		in.agentNames[r.ID] = r.Name

	case record.ClientPrefs:
		agent, err := in.agent(row, r.AgentID)
		if err != nil {
			return err
		}
		for _, c := range r.Clients {
			agent.Clients = append(agent.Clients, model.Client{
				Arrival:   c.Arrival,
				Departure: c.Departure,
				HotelPref: c.HotelPref,
				Ent1Pref:  c.Ent1,
				Ent2Pref:  c.Ent2,
				Ent3Pref:  c.Ent3,
			})
		}

	case record.StartAuction:
		for _, def := range r.Auctions {
			a := model.NewAuction(def.ID, def.Resource, def.Day)
			if _, ok := g.Auctions.Get(a.Name); ok {
				return duplicate(row, r.Tag(), "auction %s", a.Name)
			}
			if _, ok := in.auctionNames[def.ID]; ok {
				return duplicate(row, r.Tag(), "auction id %q", def.ID)
			}
			g.Auctions.Set(a.Name, a)
			in.auctionNames[def.ID] = a.Name
		}

	case record.Transaction:
		auction, err := in.auction(row, r.AuctionID)
		if err != nil {
			return err
		}
		buyer, err := in.agentName(row, r.BuyerID)
		if err != nil {
			return err
		}
		seller, err := in.agentName(row, r.SellerID)
		if err != nil {
			return err
		}
		auction.Transactions = append(auction.Transactions, model.Transaction{
			ID:       r.TransactionID,
			Time:     t,
			Buyer:    buyer,
			Seller:   seller,
			Quantity: r.Quantity,
			Price:    r.Price,
		})

	case record.Quote:
		auction, err := in.auction(row, r.AuctionID)
		if err != nil {
			return err
		}
		auction.Sell = append(auction.Sell, model.PricePoint{Time: t, Price: r.Sell})
		auction.Buy = append(auction.Buy, model.PricePoint{Time: t, Price: r.Buy})

	case record.Bid:
		auction, err := in.auction(row, r.AuctionID)
		if err != nil {
			return err
		}
		name, err := in.agentName(row, r.AgentID)
		if err != nil {
			return err
		}
		pairs := make([]model.BidPair, 0, len(r.Pairs))
		for _, p := range r.Pairs {
			pairs = append(pairs, model.BidPair{Quantity: p.Quantity, Price: p.Price})
		}
		auction.AddBid(name, model.BidEvent{
			ID:     r.BidID,
			Time:   t,
			Type:   r.Type,
			Status: r.Status,
			Bids:   pairs,
		})

	case record.CloseAuction:
		auction, err := in.auction(row, r.AuctionID)
		if err != nil {
			return err
		}
		if auction.Closed == nil {
			closed := t
			auction.Closed = &closed
		}

	case record.EndGame:
		// nothing to record

	case record.FinalAlloc:
		agent, err := in.agent(row, r.AgentID)
		if err != nil {
			return err
		}
		for _, a := range r.Allocs {
			agent.Alloc = append(agent.Alloc, model.Allocation{
				InFlight:  a.InFlight,
				OutFlight: a.OutFlight,
				Hotel:     a.Hotel,
				Ent1:      a.Ent1,
				Ent2:      a.Ent2,
				Ent3:      a.Ent3,
			})
		}

	case record.FinalScore:
		agent, err := in.agent(row, r.AgentID)
		if err != nil {
			return err
		}
		agent.Results = &model.Results{
			Score:    r.Score,
			Penalty:  r.Penalty,
			Utility:  r.Utility,
			CalcTime: r.CalcTime,
		}

	default:
		return &record.UnknownRecordTypeError{Row: row, Tag: rec.Tag()}
	}
	return nil
}

func (in *Interpreter) agentName(row int, id string) (string, error) {
	name, ok := in.agentNames[id]
	if !ok {
		return "", &UnknownReferenceError{Row: row, Kind: KindAgent, ID: id}
	}
	return name, nil
}

func (in *Interpreter) agent(row int, id string) (*model.Agent, error) {
	name, err := in.agentName(row, id)
	if err != nil {
		return nil, err
	}
	agent, _ := in.game.Agent(name)
	return agent, nil
}

func (in *Interpreter) auction(row int, id string) (*model.Auction, error) {
	name, ok := in.auctionNames[id]
	if !ok {
		return nil, &UnknownReferenceError{Row: row, Kind: KindAuction, ID: id}
	}
	auction, _ := in.game.Auction(name)
	return auction, nil
}

// duplicate rejects a second definition of an agent or auction. Entries are
// never replaced, so earlier history always stays reachable.
func duplicate(row int, tag record.Tag, format string, args ...any) error {
	return &record.MalformedRecordError{Row: row, Tag: tag, Reason: fmt.Sprintf(format, args...) + " already defined"}
}
