package book

import (
	"github.com/huandu/skiplist"

	"github.com/0x5487/mbp-reconstructor/price"
)

// sideBook holds every resting Level for one side of the book, ordered
// by price priority: bids descending, asks ascending. It is the
// generalization of the teacher's skiplist-backed queue type from a
// decimal-keyed crypto book down to the int64 fixed-point price.Raw key
// spec.md mandates.
type sideBook struct {
	newList func() *skiplist.SkipList

	levels    *skiplist.SkipList
	byPrice   map[price.Raw]*skiplist.Element
	numOrders int
}

// bidComparator orders prices highest-first (best bid is the front).
func bidComparator(lhs, rhs any) int {
	a, b := lhs.(price.Raw), rhs.(price.Raw)
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// askComparator orders prices lowest-first (best ask is the front).
func askComparator(lhs, rhs any) int {
	a, b := lhs.(price.Raw), rhs.(price.Raw)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func newBidSideBook() *sideBook {
	newList := func() *skiplist.SkipList { return skiplist.New(skiplist.GreaterThanFunc(bidComparator)) }
	return &sideBook{
		newList: newList,
		levels:  newList(),
		byPrice: make(map[price.Raw]*skiplist.Element),
	}
}

func newAskSideBook() *sideBook {
	newList := func() *skiplist.SkipList { return skiplist.New(skiplist.GreaterThanFunc(askComparator)) }
	return &sideBook{
		newList: newList,
		levels:  newList(),
		byPrice: make(map[price.Raw]*skiplist.Element),
	}
}

// levelAt returns the Level at the given price, or nil if the side has
// no resting liquidity there.
func (s *sideBook) levelAt(p price.Raw) *Level {
	el, ok := s.byPrice[p]
	if !ok {
		return nil
	}
	return el.Value.(*Level)
}

// levelOrCreate returns the Level at p, creating an empty one (and
// wiring it into the skiplist) if none exists yet.
func (s *sideBook) levelOrCreate(p price.Raw) *Level {
	if lvl := s.levelAt(p); lvl != nil {
		return lvl
	}

	lvl := &Level{PriceRaw: p}
	el := s.levels.Set(p, lvl)
	s.byPrice[p] = el
	return lvl
}

// dropIfEmpty removes the level at p from the skiplist once it no
// longer carries any orders — invariant 3 from spec.md §3.
func (s *sideBook) dropIfEmpty(lvl *Level) {
	if !lvl.empty() {
		return
	}
	if el, ok := s.byPrice[lvl.PriceRaw]; ok {
		s.levels.RemoveElement(el)
		delete(s.byPrice, lvl.PriceRaw)
	}
}

// best returns the best (front) level for this side, or nil if empty.
func (s *sideBook) best() *Level {
	el := s.levels.Front()
	if el == nil {
		return nil
	}
	return el.Value.(*Level)
}

// topN walks up to n levels in priority order, calling fn for each.
func (s *sideBook) topN(n int, fn func(lvl *Level)) {
	el := s.levels.Front()
	for i := 0; i < n && el != nil; i++ {
		fn(el.Value.(*Level))
		el = el.Next()
	}
}

func (s *sideBook) levelCount() int {
	return len(s.byPrice)
}

func (s *sideBook) clear() {
	s.levels = s.newList()
	s.byPrice = make(map[price.Raw]*skiplist.Element)
	s.numOrders = 0
}
