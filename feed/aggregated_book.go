package feed

import (
	"sync/atomic"

	"github.com/igrmk/treemap/v2"

	"github.com/0x5487/mbp-reconstructor/mbo"
	"github.com/0x5487/mbp-reconstructor/price"
)

// DepthChange describes how one BookLog affects one side's aggregated
// depth at one price.
type DepthChange struct {
	Side     mbo.Side
	PriceRaw price.Raw
	SizeDiff int64
}

// CalculateDepthChange derives the depth delta a BookLog implies. Match
// events reduce the maker (passive) side, which is the side opposite the
// log's own Side field.
func CalculateDepthChange(log *BookLog) DepthChange {
	switch log.Type {
	case LogOpen:
		return DepthChange{Side: log.Side, PriceRaw: log.PriceRaw, SizeDiff: int64(log.Size)}
	case LogCancel:
		return DepthChange{Side: log.Side, PriceRaw: log.PriceRaw, SizeDiff: -int64(log.Size)}
	case LogMatch:
		makerSide := mbo.Bid
		if log.Side == mbo.Bid {
			makerSide = mbo.Ask
		}
		return DepthChange{Side: makerSide, PriceRaw: log.PriceRaw, SizeDiff: -int64(log.Size)}
	case LogAmend:
		if log.OldPriceRaw != log.PriceRaw {
			// Price changed: this is the removal of the old resting size at
			// the old price. AggregatedBook.Replay adds the new size at the
			// new price as a second change.
			return DepthChange{Side: log.Side, PriceRaw: log.OldPriceRaw, SizeDiff: -int64(log.OldSize)}
		}
		return DepthChange{Side: log.Side, PriceRaw: log.PriceRaw, SizeDiff: int64(log.Size) - int64(log.OldSize)}
	default:
		return DepthChange{}
	}
}

// AggregatedBook rebuilds a price→size depth view for each side purely
// by replaying a BookLog stream. It is an observer: nothing in the
// engine or book package ever reads from it, and it never mutates the
// book it shadows. A downstream consumer of a published log feed is the
// intended use, per SPEC_FULL.md §4.4.
type AggregatedBook struct {
	seqID atomic.Uint64

	bid *treemap.TreeMap[price.Raw, uint64]
	ask *treemap.TreeMap[price.Raw, uint64]
}

// NewAggregatedBook creates an empty AggregatedBook.
func NewAggregatedBook() *AggregatedBook {
	less := func(a, b price.Raw) bool { return a < b }
	return &AggregatedBook{
		bid: treemap.NewWithKeyCompare[price.Raw, uint64](less),
		ask: treemap.NewWithKeyCompare[price.Raw, uint64](less),
	}
}

// SequenceID returns the last applied BookLog sequence id.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID.Load()
}

// Replay applies one BookLog's depth change. LogClear empties both
// sides; a price-changing LogAmend removes the old size at the old price
// and adds the new size at the new price; everything else adjusts a
// single (side, price) cell. A cell is dropped once it reaches zero.
func (ab *AggregatedBook) Replay(log *BookLog) {
	defer ab.seqID.Store(log.SequenceID)

	if log.Type == LogClear {
		ab.bid = treemap.NewWithKeyCompare[price.Raw, uint64](func(a, b price.Raw) bool { return a < b })
		ab.ask = treemap.NewWithKeyCompare[price.Raw, uint64](func(a, b price.Raw) bool { return a < b })
		return
	}

	ab.apply(CalculateDepthChange(log))
	if log.Type == LogAmend && log.OldPriceRaw != log.PriceRaw {
		ab.apply(DepthChange{Side: log.Side, PriceRaw: log.PriceRaw, SizeDiff: int64(log.Size)})
	}
}

func (ab *AggregatedBook) apply(change DepthChange) {
	side := ab.sideFor(change.Side)

	cur, _ := side.Get(change.PriceRaw)
	next := int64(cur) + change.SizeDiff
	if next <= 0 {
		side.Del(change.PriceRaw)
		return
	}
	side.Set(change.PriceRaw, uint64(next))
}

func (ab *AggregatedBook) sideFor(side mbo.Side) *treemap.TreeMap[price.Raw, uint64] {
	if side == mbo.Bid {
		return ab.bid
	}
	return ab.ask
}

// Depth returns the aggregated size resting at price on side, or 0 if
// there is none.
func (ab *AggregatedBook) Depth(side mbo.Side, p price.Raw) uint64 {
	v, _ := ab.sideFor(side).Get(p)
	return v
}

// Levels returns the number of distinct resting price levels on side.
func (ab *AggregatedBook) Levels(side mbo.Side) int {
	return ab.sideFor(side).Len()
}
