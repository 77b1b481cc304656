// Package ingest implements the vessel position ingestion pipeline: fetch
// CSV text from a source, parse and normalize every row, filter out records
// without a usable identity or fix, and replace the position store wholesale.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
	"github.com/couchcryptid/vessel-tracking-service/internal/observability"
)

// Store is the position store the pipeline writes into. Replace swaps the
// full record set atomically; readers never see a partial batch.
type Store interface {
	Replace(positions []domain.VesselPosition)
}

// Loader runs the fetch-parse-normalize-store cycle.
type Loader struct {
	source    Source // primary source; nil means synthetic-only
	synthetic Source
	store     Store
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewLoader creates a Loader. Pass a nil source to run purely on the
// synthetic trajectory.
func NewLoader(source Source, synthetic Source, store Store, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		source:    source,
		synthetic: synthetic,
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// Load runs one ingestion cycle and returns the records now in the store.
// A primary-source failure falls back to the synthetic trajectory with a
// warning; only a CSV-structure failure propagates as an error. Malformed
// rows are logged and skipped without aborting the batch.
func (l *Loader) Load(ctx context.Context) ([]domain.VesselPosition, error) {
	start := time.Now()

	text, err := l.fetch(ctx)
	if err != nil {
		l.metrics.IngestErrors.Inc()
		return nil, err
	}

	rows, parseErrs := parseCSV(text)
	l.metrics.RowsParsed.Add(float64(len(rows)))
	for _, perr := range parseErrs {
		l.logger.Warn("skipping malformed row", "error", perr)
		l.metrics.RowsDropped.WithLabelValues("parse_error").Inc()
	}
	if len(rows) == 0 && len(parseErrs) > 0 {
		l.metrics.IngestErrors.Inc()
		return nil, fmt.Errorf("parse positions: no usable rows (%d errors)", len(parseErrs))
	}

	positions := make([]domain.VesselPosition, 0, len(rows))
	for i, row := range rows {
		pos := domain.Normalize(row, i)
		if pos.VesselID == "" {
			l.metrics.RowsDropped.WithLabelValues("missing_id").Inc()
			continue
		}
		if !pos.HasValidCoordinates() {
			l.metrics.RowsDropped.WithLabelValues("invalid_coordinates").Inc()
			continue
		}
		positions = append(positions, pos)
	}

	l.store.Replace(positions)
	l.metrics.IngestDuration.Observe(time.Since(start).Seconds())

	l.logger.Info("positions loaded",
		"rows", len(rows),
		"stored", len(positions),
		"dropped", len(rows)-len(positions),
	)
	return positions, nil
}

// fetch obtains CSV text from the primary source, falling back to the
// synthetic generator on any failure.
func (l *Loader) fetch(ctx context.Context) (string, error) {
	if l.source == nil {
		return l.synthetic.Fetch(ctx)
	}

	text, err := l.source.Fetch(ctx)
	if err != nil {
		l.logger.Warn("position source unavailable, using synthetic trajectory", "error", err)
		l.metrics.SourceFallback.Inc()
		return l.synthetic.Fetch(ctx)
	}
	return text, nil
}

// parseCSV reads a header-prefixed CSV document into raw rows keyed by
// whitespace-normalized header names. Row-level errors are collected, not
// fatal; a missing or empty header is.
func parseCSV(text string) ([]domain.RawRow, []error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // rows may be ragged; missing cells read as empty
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("read header: %w", err)}
	}
	for i, h := range header {
		header[i] = normalizeHeader(h)
	}

	var (
		rows    []domain.RawRow
		rowErrs []error
		lineNum = 1
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNum++
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		row := make(domain.RawRow, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, rowErrs
}

// normalizeHeader trims and collapses interior whitespace so "  UTC   Time "
// matches the canonical "UTC Time".
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(h), " ")
}
