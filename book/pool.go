package book

// orderPool is a preallocated slab of Order records with a LIFO free
// list, mirroring the arena design the corpus uses for hot-path
// allocation (structure.PooledSkiplist's node arena). Allocation and
// release are O(1) and allocation-free once the slab is warm; once the
// slab is exhausted, allocate falls back to a heap-allocated *Order and
// release simply drops it for the GC to reclaim.
type orderPool struct {
	slab     []Order
	freeList []*Order
}

// defaultPoolSize matches the ~50,000 resting-order slab spec.md calls
// for: deep enough for a typical top-of-book replay without spilling to
// the heap on the hot path.
const defaultPoolSize = 50_000

func newOrderPool(size int) *orderPool {
	if size <= 0 {
		size = defaultPoolSize
	}

	p := &orderPool{
		slab:     make([]Order, size),
		freeList: make([]*Order, size),
	}
	for i := range p.slab {
		p.slab[i].pooled = true
		p.freeList[i] = &p.slab[i]
	}
	return p
}

func (p *orderPool) allocate() *Order {
	n := len(p.freeList)
	if n == 0 {
		return &Order{pooled: false}
	}

	o := p.freeList[n-1]
	p.freeList = p.freeList[:n-1]
	return o
}

func (p *orderPool) release(o *Order) {
	if !o.pooled {
		// Heap-allocated overflow order; nothing to return.
		return
	}

	*o = Order{pooled: true}
	p.freeList = append(p.freeList, o)
}
