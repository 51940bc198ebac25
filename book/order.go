package book

import (
	"github.com/0x5487/mbp-reconstructor/mbo"
	"github.com/0x5487/mbp-reconstructor/price"
)

// Order is a single resting order. Orders are either carved out of the
// book's preallocated slab or, once the slab is exhausted, heap
// allocated; callers never need to know which.
type Order struct {
	OrderID      uint64
	PriceRaw     price.Raw
	Size         uint32
	OriginalSize uint32
	TimestampNS  uint64
	Side         mbo.Side

	// Intrusive FIFO chain within the owning Level.
	next *Order
	prev *Order

	// pooled is true when this Order lives in the slab and must be
	// returned to the free list instead of left for the GC.
	pooled bool
}

// Level is the price-aggregated view of every resting Order at one price
// on one side: total visible size, order count, and the FIFO chain that
// gives time priority within the level.
type Level struct {
	PriceRaw price.Raw

	TotalSize  uint64
	OrderCount uint32

	head *Order
	tail *Order
}

func (l *Level) empty() bool {
	return l.OrderCount == 0
}

// appendOrder adds order to the tail of the level's FIFO chain.
func (l *Level) appendOrder(o *Order) {
	o.next = nil
	o.prev = l.tail
	if l.tail != nil {
		l.tail.next = o
	} else {
		l.head = o
	}
	l.tail = o

	l.TotalSize += uint64(o.Size)
	l.OrderCount++
}

// removeOrder unlinks order from the level's FIFO chain.
func (l *Level) removeOrder(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next, o.prev = nil, nil

	l.TotalSize -= uint64(o.Size)
	l.OrderCount--
}

// adjustSize updates total size for an in-place size change on one of the
// level's orders, from oldSize to newSize. It does not read or write the
// order itself; the caller updates the order's Size field.
func (l *Level) adjustSize(oldSize, newSize uint32) {
	l.TotalSize = l.TotalSize - uint64(oldSize) + uint64(newSize)
}
