// Package engine implements the stateful interpreter that drives a
// book.OrderBook from a market-by-order event stream, including the
// T→F→C trade-completion protocol described in spec.md §4.2.
package engine

import (
	"log/slog"
	"os"

	"github.com/0x5487/mbp-reconstructor/book"
	"github.com/0x5487/mbp-reconstructor/mbo"
	"github.com/0x5487/mbp-reconstructor/price"
)

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// SetLogger overrides the package-level diagnostic logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// tradeState is the engine's three-state trade-completion machine.
type tradeState int

const (
	idle tradeState = iota
	tradeReceived
	fillReceived
)

// pendingTrade buffers the T event's fields until the matching C arrives.
type pendingTrade struct {
	timestampNS uint64
	tradeID     uint64
	priceRaw    price.Raw
	size        uint32
	side        mbo.Side
}

// Stats exposes read-only counters for the events the engine has seen.
type Stats struct {
	EventsProcessed   uint64
	TradesAggregated  uint64
	ErrorsEncountered uint64
}

// ActionEngine interprets an Event stream against a book.OrderBook. It
// holds a non-owning reference to the book: it mutates it but never
// outlives it, per spec.md §5.
type ActionEngine struct {
	b *book.OrderBook

	state   tradeState
	pending *pendingTrade

	firstClearSeen bool

	stats Stats
}

// New creates an ActionEngine driving b.
func New(b *book.OrderBook) *ActionEngine {
	return &ActionEngine{b: b}
}

// ProcessEvent dispatches one Event and returns whether the caller
// should ask the snapshot emitter to check for a top-of-book change.
// See spec.md §4.2's dispatch table for the exact per-action semantics.
func (e *ActionEngine) ProcessEvent(ev mbo.Event) bool {
	e.stats.EventsProcessed++

	switch ev.Action {
	case mbo.Add:
		return e.handleAdd(ev)
	case mbo.Modify:
		return e.handleModify(ev)
	case mbo.Cancel:
		return e.handleCancel(ev)
	case mbo.Trade:
		return e.handleTrade(ev)
	case mbo.Fill:
		return e.handleFill(ev)
	case mbo.Clear:
		return e.handleClear(ev)
	case mbo.NoOp:
		return true
	default:
		e.stats.ErrorsEncountered++
		return false
	}
}

// Stats returns a snapshot of the engine's running counters.
func (e *ActionEngine) Stats() Stats {
	return e.stats
}

func (e *ActionEngine) handleAdd(ev mbo.Event) bool {
	if ev.Side != mbo.Bid && ev.Side != mbo.Ask {
		e.stats.ErrorsEncountered++
		return false
	}
	ok := e.b.AddOrder(ev.OrderID, ev.PriceRaw, ev.Size, ev.Side, ev.TimestampNS)
	if !ok {
		e.stats.ErrorsEncountered++
	}
	return ok
}

func (e *ActionEngine) handleModify(ev mbo.Event) bool {
	if ev.Side != mbo.Bid && ev.Side != mbo.Ask {
		e.stats.ErrorsEncountered++
		return false
	}
	ok := e.b.ModifyOrder(ev.OrderID, ev.PriceRaw, ev.Size)
	if !ok {
		e.stats.ErrorsEncountered++
	}
	return ok
}

func (e *ActionEngine) handleCancel(ev mbo.Event) bool {
	if e.state == fillReceived {
		return e.completeTradeSequence()
	}

	ok := e.b.CancelOrder(ev.OrderID)
	if !ok {
		e.stats.ErrorsEncountered++
	}
	return ok
}

func (e *ActionEngine) handleTrade(ev mbo.Event) bool {
	e.state = tradeReceived
	e.pending = &pendingTrade{
		timestampNS: ev.TimestampNS,
		tradeID:     ev.OrderID,
		priceRaw:    ev.PriceRaw,
		size:        ev.Size,
		side:        ev.Side,
	}
	return false
}

func (e *ActionEngine) handleFill(ev mbo.Event) bool {
	if e.state != tradeReceived || e.pending == nil || ev.OrderID != e.pending.tradeID {
		logger.Warn("protocol desync: F without matching T", "order_id", ev.OrderID)
		e.state = idle
		e.pending = nil
		e.stats.ErrorsEncountered++
		return false
	}

	e.state = fillReceived
	return false
}

func (e *ActionEngine) handleClear(ev mbo.Event) bool {
	if !e.firstClearSeen {
		e.firstClearSeen = true
		return false
	}

	e.b.Clear()
	e.state = idle
	e.pending = nil
	return true
}

// completeTradeSequence replays the buffered T as an execute_trade call
// on the aggressor side the original T carried. The completing C's own
// id/price/size are never consulted — only its arrival matters.
func (e *ActionEngine) completeTradeSequence() bool {
	pending := e.pending
	e.state = idle
	e.pending = nil

	if pending == nil {
		logger.Warn("protocol desync: C completed a trade with no pending record")
		e.stats.ErrorsEncountered++
		return false
	}

	ok := e.b.ExecuteTrade(pending.priceRaw, pending.size, pending.side)
	if !ok {
		e.stats.ErrorsEncountered++
		return false
	}

	e.stats.TradesAggregated++
	return true
}
