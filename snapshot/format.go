package snapshot

import (
	"strconv"
	"strings"

	"github.com/0x5487/mbp-reconstructor/price"
)

// Header returns the MBP-10 CSV header line, newline-terminated.
func Header() string {
	var sb strings.Builder
	sb.WriteString("ts_event")
	for i := 0; i < 10; i++ {
		idx := indexSuffix(i)
		sb.WriteString(",bid_px_")
		sb.WriteString(idx)
		sb.WriteString(",bid_sz_")
		sb.WriteString(idx)
	}
	for i := 0; i < 10; i++ {
		idx := indexSuffix(i)
		sb.WriteString(",ask_px_")
		sb.WriteString(idx)
		sb.WriteString(",ask_sz_")
		sb.WriteString(idx)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func indexSuffix(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}

// Format renders one Snapshot as a single CSV line, newline-terminated.
// Empty slots (price == 0) render as two consecutive empty fields.
func Format(s Snapshot) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(s.TimestampNS, 10))

	writeSide(&sb, s.Top10.BidPrice, s.Top10.BidSize)
	writeSide(&sb, s.Top10.AskPrice, s.Top10.AskSize)

	sb.WriteByte('\n')
	return sb.String()
}

func writeSide(sb *strings.Builder, prices [10]price.Raw, sizes [10]uint64) {
	for i := 0; i < 10; i++ {
		sb.WriteByte(',')
		if prices[i] != 0 {
			sb.WriteString(prices[i].String())
		}
		sb.WriteByte(',')
		if sizes[i] != 0 {
			sb.WriteString(strconv.FormatUint(sizes[i], 10))
		}
	}
}
