package csvfeed

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x5487/mbp-reconstructor/mbo"
)

func TestReaderDecodesAddEvent(t *testing.T) {
	input := "ts_event,action,side,price,size,order_id\n" +
		"1000,A,B,100.50,10,1\n"

	r := NewReader(strings.NewReader(input))
	ev, err := r.Read()
	require.NoError(t, err)

	assert.EqualValues(t, 1000, ev.TimestampNS)
	assert.Equal(t, mbo.Add, ev.Action)
	assert.Equal(t, mbo.Bid, ev.Side)
	assert.EqualValues(t, 10050, ev.PriceRaw)
	assert.EqualValues(t, 10, ev.Size)
	assert.EqualValues(t, 1, ev.OrderID)
}

func TestReaderDecodesMultipleRowsAndEOF(t *testing.T) {
	input := "ts_event,action,side,price,size,order_id\n" +
		"1000,A,B,100.50,10,1\n" +
		"1001,C,B,100.50,10,1\n"

	r := NewReader(strings.NewReader(input))

	_, err := r.Read()
	require.NoError(t, err)

	ev2, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, mbo.Cancel, ev2.Action)

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderIgnoresTrailingColumns(t *testing.T) {
	input := "ts_event,action,side,price,size,order_id,flags,ts_recv,ts_in_delta,sequence\n" +
		"1000,T,N,100.50,10,1,0,1000,5,42\n"

	r := NewReader(strings.NewReader(input))
	ev, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, mbo.Trade, ev.Action)
	assert.Equal(t, mbo.None, ev.Side)
}

func TestReaderRejectsMalformedAction(t *testing.T) {
	input := "ts_event,action,side,price,size,order_id\n" +
		"1000,Z,B,100.50,10,1\n"

	r := NewReader(strings.NewReader(input))
	_, err := r.Read()
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestReaderRejectsTooFewColumns(t *testing.T) {
	input := "ts_event,action,side,price,size,order_id\n" +
		"1000,A,B\n"

	r := NewReader(strings.NewReader(input))
	_, err := r.Read()
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestReaderEmptyStreamReturnsEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.Read()
	assert.ErrorIs(t, err, io.EOF)
}
