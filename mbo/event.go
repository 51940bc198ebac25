// Package mbo defines the market-by-order input record the engine
// consumes: a single, immutable per-order event in a chronologically
// ordered feed for one instrument.
package mbo

import "github.com/0x5487/mbp-reconstructor/price"

// Action identifies what an Event does to the book.
type Action byte

const (
	Add     Action = 'A'
	Modify  Action = 'M'
	Cancel  Action = 'C'
	Trade   Action = 'T'
	Fill    Action = 'F'
	Clear   Action = 'R'
	NoOp    Action = 'N'
)

// Side identifies which side of the book an Event (or resting order)
// belongs to. Some event types (T, F, R, N) carry Side 'N' ("none").
type Side byte

const (
	Bid  Side = 'B'
	Ask  Side = 'A'
	None Side = 'N'
)

// Event is one record from the MBO feed. It is treated as immutable once
// parsed — nothing in the engine or book mutates an Event in place.
type Event struct {
	TimestampNS uint64
	OrderID     uint64
	PriceRaw    price.Raw
	Size        uint32
	Action      Action
	Side        Side
}
