package ledger

import "context"

// CellUpdate is one buffered cell write. Row is the 1-based sheet row.
type CellUpdate struct {
	Value string
	Row   int64
	Col   Column
}

// RowPaint is one buffered full-row background change.
type RowPaint struct {
	Color *Color
	Row   int64
}

// Mutations is the set of buffered changes committed in one save.
type Mutations struct {
	Cells  []CellUpdate
	Paints []RowPaint
}

// Backend abstracts the remote tabular store behind the ledger. Rows
// are 1-based and ranges inclusive, matching spreadsheet addressing.
type Backend interface {
	// RowCount returns the last non-empty row of the sheet.
	RowCount(ctx context.Context) (int64, error)
	// ReadRows fetches the cell values for rows [startRow, endRow].
	ReadRows(ctx context.Context, startRow, endRow int64) ([][]string, error)
	// Apply commits all buffered mutations in a bounded number of
	// remote calls.
	Apply(ctx context.Context, muts Mutations) error
	// AppendRows appends new rows after the last non-empty row,
	// clears their formatting and paints them with color when set.
	// It returns the sheet row of the first appended row.
	AppendRows(ctx context.Context, rows [][]any, color *Color) (int64, error)
}
