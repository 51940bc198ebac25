// Package feed implements a downstream, log-replay view of the book:
// every core mutation can optionally be published as a BookLog event,
// and AggregatedBook rebuilds a price→size view purely from that event
// stream. This is additive to spec.md — a generalization of the
// teacher's publish_log.go/aggregated_book.go for downstream consumers
// that want depth without touching the core engine — and is never read
// by the top-10 reconstruction path itself.
package feed

import (
	"sync"
	"time"

	"github.com/0x5487/mbp-reconstructor/mbo"
	"github.com/0x5487/mbp-reconstructor/price"
)

// LogType identifies what kind of book mutation a BookLog describes.
type LogType string

const (
	LogOpen   LogType = "open"
	LogMatch  LogType = "match"
	LogCancel LogType = "cancel"
	LogAmend  LogType = "amend"
	LogClear  LogType = "clear"
)

// BookLog is one published book-mutation event, suitable for streaming
// to an out-of-process consumer that wants to rebuild depth without
// holding a reference to the live book.
type BookLog struct {
	SequenceID  uint64
	RunID       string
	Type        LogType
	Side        mbo.Side
	PriceRaw    price.Raw
	Size        uint32
	OldPriceRaw price.Raw
	OldSize     uint32
	OrderID     uint64
	CreatedAt   time.Time
}

var bookLogPool = sync.Pool{
	New: func() any { return new(BookLog) },
}

// AcquireBookLog returns a BookLog from the pool, zeroed.
func AcquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

// ReleaseBookLog returns log to the pool. Callers must not retain log
// (or copies that alias its fields — BookLog has none) after release.
func ReleaseBookLog(log *BookLog) {
	*log = BookLog{}
	bookLogPool.Put(log)
}

// Publisher receives BookLog events as they are produced. Implementations
// must either process logs synchronously before returning or copy the
// data they need — the caller recycles BookLog values to a sync.Pool
// immediately after Publish returns.
type Publisher interface {
	Publish(logs ...*BookLog)
}

// DiscardPublisher drops every log; used when no downstream consumer is
// attached.
type DiscardPublisher struct{}

func (DiscardPublisher) Publish(logs ...*BookLog) {}

// MemoryPublisher collects logs in memory, for tests and for feeding an
// AggregatedBook in-process.
type MemoryPublisher struct {
	mu   sync.Mutex
	logs []*BookLog
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish stores a defensive copy of each log.
func (m *MemoryPublisher) Publish(logs ...*BookLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, log := range logs {
		cpy := *log
		m.logs = append(m.logs, &cpy)
	}
}

// Logs returns a copy of everything published so far.
func (m *MemoryPublisher) Logs() []*BookLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*BookLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// Count returns the number of logs stored.
func (m *MemoryPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}
