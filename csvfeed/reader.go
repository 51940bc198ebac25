// Package csvfeed reads a market-by-order CSV stream and decodes it into
// mbo.Event records. It is an external collaborator to the engine: the
// core reconstruction packages never import it, and cmd/mbpreplay is the
// only caller.
package csvfeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/0x5487/mbp-reconstructor/mbo"
	"github.com/0x5487/mbp-reconstructor/price"
)

// Column layout, per original_source/src/csv_parser.hpp. Trailing
// columns (flags, ts_recv, ts_in_delta, sequence) are accepted but
// ignored.
const (
	colTimestamp = 0
	colAction    = 1
	colSide      = 2
	colPrice     = 3
	colSize      = 4
	colOrderID   = 5

	minColumns = 6
)

// ErrMalformedRow is wrapped with row context and returned by Read when a
// record cannot be decoded into an mbo.Event.
var ErrMalformedRow = errors.New("csvfeed: malformed row")

// Reader decodes mbo.Event records from an underlying CSV stream. The
// first row is always treated as a header and discarded.
type Reader struct {
	csv     *csv.Reader
	row     uint64
	skipped bool
}

// NewReader wraps r as a Reader. The stream is expected to have a
// trailing-column-tolerant header row as its first line.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr}
}

// Read decodes the next event. It returns io.EOF once the stream is
// exhausted, matching bufio.Scanner-style loop conventions.
func (r *Reader) Read() (mbo.Event, error) {
	if !r.skipped {
		r.skipped = true
		if _, err := r.csv.Read(); err != nil {
			return mbo.Event{}, err
		}
	}

	record, err := r.csv.Read()
	if err != nil {
		return mbo.Event{}, err
	}
	r.row++

	return decodeRecord(record, r.row)
}

func decodeRecord(record []string, row uint64) (mbo.Event, error) {
	if len(record) < minColumns {
		return mbo.Event{}, fmt.Errorf("%w: row %d: expected at least %d columns, got %d", ErrMalformedRow, row, minColumns, len(record))
	}

	ts, err := strconv.ParseUint(record[colTimestamp], 10, 64)
	if err != nil {
		return mbo.Event{}, fmt.Errorf("%w: row %d: ts_event: %v", ErrMalformedRow, row, err)
	}

	action, err := parseAction(record[colAction])
	if err != nil {
		return mbo.Event{}, fmt.Errorf("%w: row %d: %v", ErrMalformedRow, row, err)
	}

	side, err := parseSide(record[colSide])
	if err != nil {
		return mbo.Event{}, fmt.Errorf("%w: row %d: %v", ErrMalformedRow, row, err)
	}

	priceRaw, err := price.Parse(record[colPrice])
	if err != nil {
		return mbo.Event{}, fmt.Errorf("%w: row %d: price: %v", ErrMalformedRow, row, err)
	}

	size, err := strconv.ParseUint(record[colSize], 10, 32)
	if err != nil {
		return mbo.Event{}, fmt.Errorf("%w: row %d: size: %v", ErrMalformedRow, row, err)
	}

	orderID, err := strconv.ParseUint(record[colOrderID], 10, 64)
	if err != nil {
		return mbo.Event{}, fmt.Errorf("%w: row %d: order_id: %v", ErrMalformedRow, row, err)
	}

	return mbo.Event{
		TimestampNS: ts,
		OrderID:     orderID,
		PriceRaw:    priceRaw,
		Size:        uint32(size),
		Action:      action,
		Side:        side,
	}, nil
}

func parseAction(s string) (mbo.Action, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("action: expected a single character, got %q", s)
	}
	switch mbo.Action(s[0]) {
	case mbo.Add, mbo.Modify, mbo.Cancel, mbo.Trade, mbo.Fill, mbo.Clear, mbo.NoOp:
		return mbo.Action(s[0]), nil
	default:
		return 0, fmt.Errorf("action: unrecognized value %q", s)
	}
}

func parseSide(s string) (mbo.Side, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("side: expected a single character, got %q", s)
	}
	switch mbo.Side(s[0]) {
	case mbo.Bid, mbo.Ask, mbo.None:
		return mbo.Side(s[0]), nil
	default:
		return 0, fmt.Errorf("side: unrecognized value %q", s)
	}
}
