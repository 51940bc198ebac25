package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x5487/mbp-reconstructor/book"
	"github.com/0x5487/mbp-reconstructor/mbo"
	"github.com/0x5487/mbp-reconstructor/price"
	"github.com/0x5487/mbp-reconstructor/snapshot"
)

func mustParse(t *testing.T, s string) price.Raw {
	p, err := price.Parse(s)
	require.NoError(t, err)
	return p
}

func TestScenarioAddBothSides(t *testing.T) {
	b := book.NewOrderBook()
	e := New(b)
	emitter := snapshot.NewEmitter()

	shouldSnapshot := e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Bid, PriceRaw: mustParse(t, "100.50"), Size: 100, OrderID: 1001, TimestampNS: 1000})
	assert.True(t, shouldSnapshot)
	_, emitted := emitter.Observe(b, 1000)
	assert.True(t, emitted)

	shouldSnapshot = e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Ask, PriceRaw: mustParse(t, "101"), Size: 200, OrderID: 1002, TimestampNS: 2000})
	assert.True(t, shouldSnapshot)
	snap, emitted := emitter.Observe(b, 2000)
	assert.True(t, emitted)
	assert.Equal(t, mustParse(t, "100.50"), snap.Top10.BidPrice[0])
	assert.Equal(t, mustParse(t, "101"), snap.Top10.AskPrice[0])

	bidPrice, bidSize := b.BestBid()
	askPrice, askSize := b.BestAsk()
	assert.Equal(t, mustParse(t, "100.50"), bidPrice)
	assert.EqualValues(t, 100, bidSize)
	assert.Equal(t, mustParse(t, "101"), askPrice)
	assert.EqualValues(t, 200, askSize)
}

func TestScenarioPriceTimePriority(t *testing.T) {
	b := book.NewOrderBook()
	e := New(b)

	e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Bid, PriceRaw: mustParse(t, "100.50"), Size: 100, OrderID: 1001, TimestampNS: 1000})
	e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Bid, PriceRaw: mustParse(t, "100.50"), Size: 150, OrderID: 1002, TimestampNS: 2000})

	bidPrice, bidSize := b.BestBid()
	assert.Equal(t, mustParse(t, "100.50"), bidPrice)
	assert.EqualValues(t, 250, bidSize)
}

func TestScenarioPartialFillViaTradeFillClear(t *testing.T) {
	b := book.NewOrderBook()
	e := New(b)

	require.True(t, e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Ask, PriceRaw: mustParse(t, "101"), Size: 200, OrderID: 1, TimestampNS: 1000}))

	snapshotWorthy := e.ProcessEvent(mbo.Event{Action: mbo.Trade, Side: mbo.Bid, PriceRaw: mustParse(t, "101"), Size: 100, OrderID: 2001, TimestampNS: 2000})
	assert.False(t, snapshotWorthy)

	snapshotWorthy = e.ProcessEvent(mbo.Event{Action: mbo.Fill, Side: mbo.Bid, PriceRaw: mustParse(t, "101"), Size: 100, OrderID: 2001, TimestampNS: 3000})
	assert.False(t, snapshotWorthy)

	snapshotWorthy = e.ProcessEvent(mbo.Event{Action: mbo.Cancel, Side: mbo.Bid, PriceRaw: mustParse(t, "101"), Size: 0, OrderID: 2001, TimestampNS: 4000})
	assert.True(t, snapshotWorthy)

	askPrice, askSize := b.BestAsk()
	assert.Equal(t, mustParse(t, "101"), askPrice)
	assert.EqualValues(t, 100, askSize)
	assert.EqualValues(t, 1, e.Stats().TradesAggregated)
}

func TestScenarioMultiOrderFillAtOnePrice(t *testing.T) {
	b := book.NewOrderBook()
	e := New(b)

	e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Ask, PriceRaw: mustParse(t, "101"), Size: 100, OrderID: 1, TimestampNS: 1})
	e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Ask, PriceRaw: mustParse(t, "101"), Size: 150, OrderID: 2, TimestampNS: 2})

	e.ProcessEvent(mbo.Event{Action: mbo.Trade, Side: mbo.Bid, PriceRaw: mustParse(t, "101"), Size: 200, OrderID: 3001, TimestampNS: 3})
	e.ProcessEvent(mbo.Event{Action: mbo.Fill, Side: mbo.Bid, PriceRaw: mustParse(t, "101"), Size: 200, OrderID: 3001, TimestampNS: 4})
	ok := e.ProcessEvent(mbo.Event{Action: mbo.Cancel, Side: mbo.Bid, PriceRaw: mustParse(t, "101"), Size: 0, OrderID: 3001, TimestampNS: 5})
	require.True(t, ok)

	askPrice, askSize := b.BestAsk()
	assert.Equal(t, mustParse(t, "101"), askPrice)
	assert.EqualValues(t, 50, askSize)
}

func TestScenarioCrossedTopOrdering(t *testing.T) {
	b := book.NewOrderBook()
	e := New(b)

	for i, p := range []string{"100.25", "100.50", "100.75"} {
		e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Bid, PriceRaw: mustParse(t, p), Size: 10, OrderID: uint64(i + 1), TimestampNS: uint64(i)})
	}
	for i, p := range []string{"100.90", "101.00", "101.25"} {
		e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Ask, PriceRaw: mustParse(t, p), Size: 10, OrderID: uint64(i + 10), TimestampNS: uint64(i)})
	}

	top := b.GetTop10Snapshot()
	assert.Equal(t, mustParse(t, "100.75"), top.BidPrice[0])
	assert.Equal(t, mustParse(t, "100.50"), top.BidPrice[1])
	assert.Equal(t, mustParse(t, "100.25"), top.BidPrice[2])
	assert.EqualValues(t, 0, top.BidPrice[3])

	assert.Equal(t, mustParse(t, "100.90"), top.AskPrice[0])
	assert.Equal(t, mustParse(t, "101"), top.AskPrice[1])
	assert.Equal(t, mustParse(t, "101.25"), top.AskPrice[2])
	assert.EqualValues(t, 0, top.AskPrice[3])
}

func TestScenarioClearPreambleThenSecondClear(t *testing.T) {
	b := book.NewOrderBook()
	e := New(b)

	assert.False(t, e.ProcessEvent(mbo.Event{Action: mbo.Clear}))

	assert.True(t, e.ProcessEvent(mbo.Event{Action: mbo.Add, Side: mbo.Bid, PriceRaw: mustParse(t, "100"), Size: 100, OrderID: 1}))

	bidPrice, bidSize := b.BestBid()
	assert.Equal(t, mustParse(t, "100"), bidPrice)
	assert.EqualValues(t, 100, bidSize)

	assert.True(t, e.ProcessEvent(mbo.Event{Action: mbo.Clear}))

	top := b.GetTop10Snapshot()
	assert.EqualValues(t, 0, top.BidPrice[0])
	assert.EqualValues(t, 0, top.BidSize[0])
	assert.Equal(t, 0, b.ActiveOrders())
}
