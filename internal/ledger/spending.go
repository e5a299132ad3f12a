package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkuleshov/cod-settle/internal/model"
)

// SpendingStore appends courier-pickup charges to the spending sheet.
// Spending entries are always new rows; nothing is ever matched or
// updated there.
type SpendingStore struct {
	backend Backend
	logger  *slog.Logger
}

// NewSpendingStore creates a spending store over backend.
func NewSpendingStore(backend Backend, logger *slog.Logger) *SpendingStore {
	return &SpendingStore{backend: backend, logger: logger}
}

// Add bulk-appends entries in a single remote call.
func (s *SpendingStore) Add(ctx context.Context, entries []model.SpendingEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{
			e.Date.Format("02.01.2006"),
			e.Description,
			e.Amount.StringFixed(2),
		}
	}

	if _, err := s.backend.AppendRows(ctx, rows, nil); err != nil {
		return fmt.Errorf("failed to append spending entries: %w", err)
	}

	s.logger.Info("spending entries added", "count", len(entries))
	return nil
}
