// Package book implements the authoritative order-book state for a
// single instrument: per-order state, price-aggregated levels on each
// side, and a bounded top-of-book cache. It owns every resting Order and
// Level; callers mutate it synchronously and never retain references
// into it — see spec.md §5 for the full resource-ownership contract.
package book

import (
	"time"

	"github.com/0x5487/mbp-reconstructor/feed"
	"github.com/0x5487/mbp-reconstructor/mbo"
	"github.com/0x5487/mbp-reconstructor/price"
)

// Option configures an OrderBook at construction time.
type Option func(*OrderBook)

// WithOrderPoolSize overrides the default preallocated order-slab size.
func WithOrderPoolSize(n int) Option {
	return func(b *OrderBook) {
		b.pool = newOrderPool(n)
	}
}

// WithPublisher attaches a feed.Publisher that receives a feed.BookLog
// for every mutating operation (open/amend/cancel/match/clear). The
// default is feed.DiscardPublisher, so publishing costs nothing unless a
// caller opts in — per spec.md §4.4 this is a downstream observer hook,
// never consulted by the book itself.
func WithPublisher(pub feed.Publisher) Option {
	return func(b *OrderBook) {
		b.publisher = pub
	}
}

// OrderBook holds every resting order for one instrument.
type OrderBook struct {
	bids *sideBook
	asks *sideBook
	pool *orderPool

	orders map[uint64]*Order

	top10      Top10
	top10Valid bool

	errorCount uint64

	publisher feed.Publisher
	logSeq    uint64
}

// NewOrderBook creates an empty order book.
func NewOrderBook(opts ...Option) *OrderBook {
	b := &OrderBook{
		bids:      newBidSideBook(),
		asks:      newAskSideBook(),
		pool:      newOrderPool(defaultPoolSize),
		orders:    make(map[uint64]*Order),
		publisher: feed.DiscardPublisher{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// publish stamps a sequence id onto log, hands it to the configured
// Publisher, and returns it to the pool. Callers build log via
// feed.AcquireBookLog and must not touch it again afterward.
func (b *OrderBook) publish(log *feed.BookLog) {
	b.logSeq++
	log.SequenceID = b.logSeq
	log.CreatedAt = time.Now()
	b.publisher.Publish(log)
	feed.ReleaseBookLog(log)
}

func (b *OrderBook) sideBookFor(side mbo.Side) *sideBook {
	if side == mbo.Bid {
		return b.bids
	}
	return b.asks
}

// AddOrder inserts a brand-new resting order. Returns false (and bumps
// the error count) if id is already resting or side isn't B/A.
func (b *OrderBook) AddOrder(id uint64, p price.Raw, size uint32, side mbo.Side, ts uint64) bool {
	if side != mbo.Bid && side != mbo.Ask {
		b.errorCount++
		return false
	}
	if _, exists := b.orders[id]; exists {
		b.errorCount++
		return false
	}

	o := b.pool.allocate()
	o.OrderID = id
	o.PriceRaw = p
	o.Size = size
	o.OriginalSize = size
	o.TimestampNS = ts
	o.Side = side

	sb := b.sideBookFor(side)
	lvl := sb.levelOrCreate(p)
	lvl.appendOrder(o)
	sb.numOrders++

	b.orders[id] = o
	b.top10Valid = false

	log := feed.AcquireBookLog()
	log.Type = feed.LogOpen
	log.Side = side
	log.PriceRaw = p
	log.Size = size
	log.OrderID = id
	b.publish(log)

	return true
}

// ModifyOrder changes an existing order's price and/or size. A price
// change loses time priority: the order is unlinked from its current
// level and re-appended to the tail of the destination level on the
// same side (spec.md §4.1, §9). A pure size change adjusts the owning
// level's total in place, preserving priority.
func (b *OrderBook) ModifyOrder(id uint64, newPrice price.Raw, newSize uint32) bool {
	o, ok := b.orders[id]
	if !ok {
		b.errorCount++
		return false
	}

	sb := b.sideBookFor(o.Side)
	oldPrice, oldSize := o.PriceRaw, o.Size

	if newPrice == o.PriceRaw {
		lvl := sb.levelAt(o.PriceRaw)
		lvl.adjustSize(o.Size, newSize)
		o.Size = newSize
		b.top10Valid = false

		log := feed.AcquireBookLog()
		log.Type = feed.LogAmend
		log.Side = o.Side
		log.PriceRaw = o.PriceRaw
		log.Size = newSize
		log.OldPriceRaw = oldPrice
		log.OldSize = oldSize
		log.OrderID = id
		b.publish(log)

		return true
	}

	oldLvl := sb.levelAt(o.PriceRaw)
	oldLvl.removeOrder(o)
	sb.dropIfEmpty(oldLvl)

	o.PriceRaw = newPrice
	o.Size = newSize

	newLvl := sb.levelOrCreate(newPrice)
	newLvl.appendOrder(o)

	b.top10Valid = false

	log := feed.AcquireBookLog()
	log.Type = feed.LogAmend
	log.Side = o.Side
	log.PriceRaw = newPrice
	log.Size = newSize
	log.OldPriceRaw = oldPrice
	log.OldSize = oldSize
	log.OrderID = id
	b.publish(log)

	return true
}

// CancelOrder removes a resting order entirely.
func (b *OrderBook) CancelOrder(id uint64) bool {
	o, ok := b.orders[id]
	if !ok {
		b.errorCount++
		return false
	}

	sb := b.sideBookFor(o.Side)
	lvl := sb.levelAt(o.PriceRaw)
	lvl.removeOrder(o)
	sb.dropIfEmpty(lvl)
	sb.numOrders--

	side, p, size := o.Side, o.PriceRaw, o.Size

	delete(b.orders, id)
	b.pool.release(o)

	b.top10Valid = false

	log := feed.AcquireBookLog()
	log.Type = feed.LogCancel
	log.Side = side
	log.PriceRaw = p
	log.Size = size
	log.OrderID = id
	b.publish(log)

	return true
}

// ExecuteTrade consumes up to size liquidity from the passive side (the
// side opposite the aggressor) at exactly price, walking the level's
// FIFO head-first. It returns false only if no level exists at price on
// the passive side; trading through the full depth of the level and
// accepting a partially-filled tail as the final state is not an error —
// the event stream is authoritative, per spec.md §4.1.
func (b *OrderBook) ExecuteTrade(p price.Raw, size uint32, aggressorSide mbo.Side) bool {
	passiveSide := mbo.Ask
	if aggressorSide == mbo.Ask {
		passiveSide = mbo.Bid
	}

	sb := b.sideBookFor(passiveSide)
	lvl := sb.levelAt(p)
	if lvl == nil {
		b.errorCount++
		return false
	}

	remaining := size
	for remaining > 0 && lvl.head != nil {
		head := lvl.head
		var filled uint32
		if head.Size <= remaining {
			filled = head.Size
			remaining -= head.Size
			lvl.removeOrder(head)
			sb.numOrders--
			delete(b.orders, head.OrderID)
			b.pool.release(head)
		} else {
			filled = remaining
			oldSize := head.Size
			head.Size -= remaining
			lvl.adjustSize(oldSize, head.Size)
			remaining = 0
		}

		log := feed.AcquireBookLog()
		log.Type = feed.LogMatch
		log.Side = aggressorSide
		log.PriceRaw = p
		log.Size = filled
		b.publish(log)
	}

	sb.dropIfEmpty(lvl)
	b.top10Valid = false
	return true
}

// Clear destroys every resting order and level on both sides.
func (b *OrderBook) Clear() {
	b.bids.clear()
	b.asks.clear()
	b.orders = make(map[uint64]*Order)
	b.pool = newOrderPool(len(b.pool.slab))
	b.top10Valid = false

	log := feed.AcquireBookLog()
	log.Type = feed.LogClear
	b.publish(log)
}

// GetTop10Snapshot returns the current top-10 view of both sides,
// rebuilding the cache first if it was invalidated by a mutation since
// the last read.
func (b *OrderBook) GetTop10Snapshot() Top10 {
	if !b.top10Valid {
		b.rebuildTop10()
	}
	return b.top10
}

func (b *OrderBook) rebuildTop10() {
	var t Top10
	i := 0
	b.bids.topN(10, func(lvl *Level) {
		t.BidPrice[i] = lvl.PriceRaw
		t.BidSize[i] = lvl.TotalSize
		i++
	})
	i = 0
	b.asks.topN(10, func(lvl *Level) {
		t.AskPrice[i] = lvl.PriceRaw
		t.AskSize[i] = lvl.TotalSize
		i++
	})

	b.top10 = t
	b.top10Valid = true
}

// BestBid returns the best bid price and aggregated size, or (0,0) if
// the bid side is empty.
func (b *OrderBook) BestBid() (price.Raw, uint64) {
	lvl := b.bids.best()
	if lvl == nil {
		return 0, 0
	}
	return lvl.PriceRaw, lvl.TotalSize
}

// BestAsk returns the best ask price and aggregated size, or (0,0) if
// the ask side is empty.
func (b *OrderBook) BestAsk() (price.Raw, uint64) {
	lvl := b.asks.best()
	if lvl == nil {
		return 0, 0
	}
	return lvl.PriceRaw, lvl.TotalSize
}

// ActiveOrders returns the number of currently resting orders.
func (b *OrderBook) ActiveOrders() int {
	return len(b.orders)
}

// PriceLevels returns the number of distinct price levels across both
// sides.
func (b *OrderBook) PriceLevels() int {
	return b.bids.levelCount() + b.asks.levelCount()
}

// ErrorCount returns the number of failed mutation attempts seen so far.
func (b *OrderBook) ErrorCount() uint64 {
	return b.errorCount
}
