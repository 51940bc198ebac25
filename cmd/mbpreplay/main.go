// Command mbpreplay replays an MBO CSV file through the reconstruction
// engine and writes an MBP-10 CSV stream to stdout.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/0x5487/mbp-reconstructor/book"
	"github.com/0x5487/mbp-reconstructor/csvfeed"
	"github.com/0x5487/mbp-reconstructor/engine"
	"github.com/0x5487/mbp-reconstructor/snapshot"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mbpreplay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	debug := fs.Bool("debug", false, "enable verbose per-event logging instead of reconstruction")
	maxEvents := fs.Uint64("max-events", 0, "in --debug mode, decode only the first N events (0 = unlimited)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] <input_mbo_file.csv>\n\n", fs.Name())
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: no input file specified")
		fs.Usage()
		return 1
	}
	inputPath := fs.Arg(0)

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))
	engine.SetLogger(logger)

	runID := xid.New().String()
	logger = logger.With("run_id", runID)

	f, err := os.Open(inputPath)
	if err != nil {
		logger.Error("failed to open input file", "path", inputPath, "error", err)
		return 1
	}
	defer f.Close()

	if *debug {
		return runDebug(f, *maxEvents, logger, stderr)
	}
	return runReplay(f, logger, stdout, stderr)
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unrecognized log level %q", s)
	}
}

func runDebug(f io.Reader, maxEvents uint64, logger *slog.Logger, stderr io.Writer) int {
	reader := csvfeed.NewReader(f)

	var count uint64
	for {
		if maxEvents > 0 && count >= maxEvents {
			break
		}
		ev, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("failed to decode event", "error", err)
			return 1
		}
		count++
		fmt.Fprintf(stderr, "event %d: %c %c @%s size=%d oid=%d\n",
			count, ev.Action, ev.Side, ev.PriceRaw, ev.Size, ev.OrderID)
	}

	fmt.Fprintf(stderr, "decoded %d events\n", count)
	return 0
}

func runReplay(f io.Reader, logger *slog.Logger, stdout, stderr io.Writer) int {
	b := book.NewOrderBook()
	eng := engine.New(b)
	emitter := snapshot.NewEmitter()
	reader := csvfeed.NewReader(f)

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	out.WriteString(snapshot.Header())

	var snapshotsEmitted uint64

	for {
		ev, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("failed to decode event", "error", err)
			return 1
		}

		shouldSnapshot := eng.ProcessEvent(ev)
		if !shouldSnapshot {
			continue
		}

		snap, emitted := emitter.Observe(b, ev.TimestampNS)
		if !emitted {
			continue
		}
		out.WriteString(snapshot.Format(snap))
		snapshotsEmitted++
	}

	out.Flush()
	printStatistics(stderr, eng.Stats(), b, snapshotsEmitted)
	return 0
}

func printStatistics(w io.Writer, stats engine.Stats, b *book.OrderBook, snapshotsEmitted uint64) {
	fmt.Fprintln(w, "=== Statistics ===")
	fmt.Fprintf(w, "events processed:    %d\n", stats.EventsProcessed)
	fmt.Fprintf(w, "trades aggregated:   %d\n", stats.TradesAggregated)
	fmt.Fprintf(w, "errors encountered:  %d\n", stats.ErrorsEncountered)
	fmt.Fprintf(w, "active orders:       %d\n", b.ActiveOrders())
	fmt.Fprintf(w, "price levels:        %d\n", b.PriceLevels())
	fmt.Fprintf(w, "snapshots emitted:   %d\n", snapshotsEmitted)

	if stats.EventsProcessed == 0 {
		return
	}

	events := decimal.NewFromInt(int64(stats.EventsProcessed))
	snapshots := decimal.NewFromInt(int64(snapshotsEmitted))

	if snapshotsEmitted > 0 {
		perSnapshot := events.DivRound(snapshots, 4)
		fmt.Fprintf(w, "events per snapshot: %s\n", perSnapshot.String())
	}

	hundred := decimal.NewFromInt(100)
	ratio := decimal.NewFromInt(1).Sub(snapshots.Div(events)).Mul(hundred)
	fmt.Fprintf(w, "compression ratio:   %s%%\n", ratio.Round(2).String())
}
