// Package replay loads a game log into a market model, with the file handling,
// logging, tracing and metrics around the interpreter.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aelred/TheGreaterFool/internal/interpret"
	"github.com/aelred/TheGreaterFool/internal/metrics"
	"github.com/aelred/TheGreaterFool/internal/model"
	"github.com/aelred/TheGreaterFool/internal/record"
	"github.com/aelred/TheGreaterFool/internal/telemetry"
)

// Options controls how a log is read.
type Options struct {
	Name      string // shown in logs and spans
	Delimiter rune   // defaults to ','
}

// Result is a fully interpreted log.
type Result struct {
	Name    string
	Game    *model.GameInfo
	Records int
}

// Failure kinds reported in metrics.
const (
	KindMalformed        = "malformed"
	KindUnknownType      = "unknown_type"
	KindUnknownReference = "unknown_reference"
	KindIO               = "io"
)

// Load reads and interprets a whole log.
func Load(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	ctx, span := telemetry.StartSpan(ctx, "replay.Load")
	defer span.End()
	span.SetAttributes(attribute.String("replay.log", opts.Name))

	logger := slog.Default()
	if traceID, spanID, ok := telemetry.TraceFields(ctx); ok {
		logger = logger.With("trace_id", traceID, "span_id", spanID)
	}

	start := time.Now()
	src := &countingSource{dec: record.NewDecoder(r, opts.Delimiter)}
	game, err := interpret.Interpret(src)
	metrics.LoadLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		kind := FailureKind(err)
		metrics.LoadFailures.WithLabelValues(kind).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		logger.Error("log rejected", "log", opts.Name, "kind", kind, "records", src.n, "err", err)
		return nil, fmt.Errorf("load %s: %w", opts.Name, err)
	}

	span.SetAttributes(
		attribute.Int("replay.records", src.n),
		attribute.Int("replay.agents", game.Agents.Len()),
		attribute.Int("replay.auctions", game.Auctions.Len()),
	)
	logger.Info("log loaded",
		"log", opts.Name,
		"game_id", game.GameID,
		"records", src.n,
		"agents", game.Agents.Len(),
		"auctions", game.Auctions.Len(),
		"duration", time.Since(start).String(),
	)
	return &Result{Name: opts.Name, Game: game, Records: src.n}, nil
}

// LoadFile opens path and loads it. The file is closed on every path.
func LoadFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		metrics.LoadFailures.WithLabelValues(KindIO).Inc()
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = path
	}
	return Load(ctx, f, opts)
}

// FailureKind classifies a load error for metrics and logs.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, record.ErrMalformedRecord):
		return KindMalformed
	case errors.Is(err, record.ErrUnknownRecordType):
		return KindUnknownType
	case errors.Is(err, interpret.ErrUnknownReference):
		return KindUnknownReference
	default:
		return KindIO
	}
}

// Every tag is reported from the first scrape on, even at zero.
func init() {
	for _, tag := range record.Tags {
		metrics.RecordsTotal.WithLabelValues(string(tag))
	}
}

// countingSource counts rows by tag as they are handed to the interpreter.
type countingSource struct {
	dec *record.Decoder
	n   int
}

func (s *countingSource) Next() (record.Raw, error) {
	raw, err := s.dec.Next()
	if err != nil {
		return raw, err
	}
	s.n++
	metrics.RecordsTotal.WithLabelValues(string(raw.Tag)).Inc()
	return raw, nil
}
