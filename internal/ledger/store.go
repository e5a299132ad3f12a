package ledger

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultMaxRows bounds the cached window to the most recent rows of
// the sheet. Rows older than the window are invisible to search and
// silently yield zero matches; this is an accepted staleness boundary
// for a ledger reconciled daily, not a bug.
const DefaultMaxRows = 2000

// headerRows is the number of fixed header rows at the top of the sheet.
const headerRows = 1

// Store is a windowed, schema-aware row store over a remote tabular
// backend. It caches the most recent maxRows rows, matches rows by
// composite business key value (never by row index, since key cells
// are mutated in place), and buffers all writes until Save.
//
// A Store is not safe for concurrent use; the design assumes one
// serialized reconciliation run at a time.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	rows     [][]string
	pending  Mutations
	startRow int64
	maxRows  int64
	loaded   bool
}

// NewStore creates a ledger store over backend with the given window
// size. maxRows <= 0 falls back to DefaultMaxRows.
func NewStore(backend Backend, maxRows int64, logger *slog.Logger) *Store {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Store{
		backend: backend,
		maxRows: maxRows,
		logger:  logger,
	}
}

// Load fetches and caches the window of the most recent maxRows rows.
// It must be re-invoked after any row-adding operation, since the
// addressable window shifts; AddRows invalidates the cache to force
// that.
func (s *Store) Load(ctx context.Context) error {
	last, err := s.backend.RowCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to size ledger sheet: %w", err)
	}

	start := last - s.maxRows + 1
	if start < headerRows+1 {
		start = headerRows + 1
	}

	s.startRow = start
	s.rows = nil
	s.loaded = true

	if last < start {
		// Sheet holds nothing but headers.
		return nil
	}

	rows, err := s.backend.ReadRows(ctx, start, last)
	if err != nil {
		s.loaded = false
		return fmt.Errorf("failed to read ledger window: %w", err)
	}

	// Normalize to the schema width; trailing empty cells are omitted
	// by the backend.
	for i, row := range rows {
		if len(row) < int(columnCount) {
			padded := make([]string, columnCount)
			copy(padded, row)
			rows[i] = padded
		}
	}
	s.rows = rows

	s.logger.Debug("ledger window loaded",
		"start_row", start,
		"rows", len(rows))

	return nil
}

// FindAndUpdate scans the cached window for rows matching search and
// applies patch to each. Matching is by cell value: a row matches when
// any supplied key set contains the row's corresponding key cell, and
// survives GoodSkus narrowing when that set is supplied. Only fields
// set in patch overwrite cells; writing a value a cell already holds
// changes nothing. All changes are buffered until Save unless
// opts.Save is set.
//
// A search with no key sets returns zero stats without scanning; a
// blind unbounded update is never performed.
func (s *Store) FindAndUpdate(ctx context.Context, search Search, patch Patch, opts UpdateOptions) (UpdateStats, error) {
	var stats UpdateStats
	if !search.hasKeys() {
		return stats, nil
	}

	if !s.loaded {
		if err := s.Load(ctx); err != nil {
			return stats, err
		}
	}

	cells := patch.cells()
	for i, row := range s.rows {
		if !search.matchesKeys(row) {
			continue
		}
		if !search.passesNarrowing(row) {
			continue
		}
		stats.Found++

		sheetRow := s.startRow + int64(i)
		changed := false
		for _, c := range cells {
			if row[c.col] == c.value {
				continue
			}
			row[c.col] = c.value
			s.pending.Cells = append(s.pending.Cells, CellUpdate{
				Row:   sheetRow,
				Col:   c.col,
				Value: c.value,
			})
			changed = true
		}
		if patch.Color != nil {
			s.pending.Paints = append(s.pending.Paints, RowPaint{
				Row:   sheetRow,
				Color: patch.Color,
			})
			changed = true
		}
		if changed {
			stats.Updated++
		}
	}

	if opts.Save {
		if err := s.Save(ctx); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// Save commits all buffered mutations in one remote round. Callers
// should batch a whole run's updates and save once at the end, never
// per row. Saving with nothing buffered is a no-op.
func (s *Store) Save(ctx context.Context) error {
	if len(s.pending.Cells) == 0 && len(s.pending.Paints) == 0 {
		return nil
	}

	if err := s.backend.Apply(ctx, s.pending); err != nil {
		return fmt.Errorf("failed to commit ledger updates: %w", err)
	}

	s.logger.Info("ledger updates committed",
		"cells", len(s.pending.Cells),
		"painted_rows", len(s.pending.Paints))

	s.pending = Mutations{}
	return nil
}

// AddRows appends new rows to the sheet, clears their inherited
// formatting and paints them with color when set. The cached window is
// invalidated: appends shift the addressable window, so the next
// search reloads.
func (s *Store) AddRows(ctx context.Context, entries []Entry, color *Color) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = e.row()
	}

	firstRow, err := s.backend.AppendRows(ctx, rows, color)
	if err != nil {
		return fmt.Errorf("failed to append ledger rows: %w", err)
	}

	s.rows = nil
	s.loaded = false

	s.logger.Info("ledger rows appended",
		"first_row", firstRow,
		"rows", len(entries))

	return nil
}
