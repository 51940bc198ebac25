package book

import "github.com/0x5487/mbp-reconstructor/price"

// Top10 is the fixed 40-word top-of-book cache: the ten best price
// levels on each side, price-priority ordered, zero-filled past the end
// of resting liquidity. It is a plain value type — copying one copies a
// point-in-time view with no live references back into the book.
type Top10 struct {
	BidPrice [10]price.Raw
	BidSize  [10]uint64
	AskPrice [10]price.Raw
	AskSize  [10]uint64
}

// Equal reports whether two Top10 views carry the same visible depth.
// Timestamps are deliberately not part of Top10, so this is exactly the
// comparison spec.md's change-detection needs.
func (t Top10) Equal(o Top10) bool {
	return t.BidPrice == o.BidPrice && t.BidSize == o.BidSize &&
		t.AskPrice == o.AskPrice && t.AskSize == o.AskSize
}
