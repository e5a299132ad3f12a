package engine

import (
	"context"

	"github.com/mkuleshov/cod-settle/internal/model"
)

// Enricher defines the contract for turning registry line items into
// detailed order records.
type Enricher interface {
	Enrich(ctx context.Context, lines []model.RegistryLineItem) (*model.EnrichmentResult, error)
}
