package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireReleaseBookLogIsZeroed(t *testing.T) {
	log := AcquireBookLog()
	log.SequenceID = 7
	log.Type = LogOpen
	ReleaseBookLog(log)

	log2 := AcquireBookLog()
	assert.Zero(t, log2.SequenceID)
	assert.Empty(t, log2.Type)
}

func TestDiscardPublisherDropsLogs(t *testing.T) {
	var p DiscardPublisher
	p.Publish(&BookLog{SequenceID: 1})
}

func TestMemoryPublisherCollectsCopies(t *testing.T) {
	p := NewMemoryPublisher()
	log := &BookLog{SequenceID: 1, Type: LogOpen}
	p.Publish(log)

	log.SequenceID = 99 // mutate after publish; stored copy must be unaffected
	logs := p.Logs()
	require := assert.New(t)
	require.Equal(1, p.Count())
	require.EqualValues(1, logs[0].SequenceID)
}
