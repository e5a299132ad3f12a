// Package enrich turns flat registry line items into fully detailed
// order records via bounded-concurrency batched lookups.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkuleshov/cod-settle/internal/model"
	"github.com/mkuleshov/cod-settle/internal/service"
)

// DefaultBatchSize is the number of concurrent order lookups per batch.
const DefaultBatchSize = 5

// DefaultBatchDelay is the pause between batches.
const DefaultBatchDelay = 500 * time.Millisecond

// Enricher fetches order detail for registry line items in fixed-size
// concurrent batches with inter-batch pacing. Individual lookup
// failures are collected, never fatal: a run with every lookup failed
// still returns cleanly with an empty order map and a full failure
// list.
type Enricher struct {
	gateway   service.CarrierGateway
	pacer     service.Pacer
	logger    *slog.Logger
	progress  func(done, total int)
	batchSize int
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithBatchSize overrides the lookup batch size.
func WithBatchSize(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithProgress installs a callback invoked after every completed
// lookup, successful or not.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Enricher) {
		e.progress = fn
	}
}

// New creates an enricher over gateway, pacing batches with pacer.
func New(gateway service.CarrierGateway, pacer service.Pacer, logger *slog.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		gateway:   gateway,
		pacer:     pacer,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type lookupResult struct {
	err    error
	detail model.OrderDetail
}

// Enrich fetches detail for every line item. Lookups inside a batch
// run concurrently and are awaited jointly: one failing lookup never
// cancels its siblings. The only error returned is ctx cancellation
// between batches.
func (e *Enricher) Enrich(ctx context.Context, lines []model.RegistryLineItem) (*model.EnrichmentResult, error) {
	result := &model.EnrichmentResult{
		Orders: make(map[string]model.OrderRecord, len(lines)),
	}

	total := len(lines)
	done := 0

	for start := 0; start < total; start += e.batchSize {
		end := start + e.batchSize
		if end > total {
			end = total
		}
		batch := lines[start:end]

		outcomes := make([]lookupResult, len(batch))
		var g errgroup.Group
		for i, line := range batch {
			g.Go(func() error {
				detail, err := e.gateway.FetchOrderDetail(ctx, line.CdekNumber)
				outcomes[i] = lookupResult{detail: detail, err: err}
				// Failures are collected, not propagated; returning an
				// error here would cancel sibling lookups.
				return nil
			})
		}
		_ = g.Wait()

		for i, out := range outcomes {
			line := batch[i]
			done++
			if e.progress != nil {
				e.progress(done, total)
			}

			if out.err != nil {
				e.logger.Warn("order lookup failed",
					"cdek_number", line.CdekNumber,
					"registry", line.RegistryNumber,
					"error", out.err)
				result.Failures = append(result.Failures, model.EnrichmentFailure{
					CdekNumber:     line.CdekNumber,
					RegistryNumber: line.RegistryNumber,
				})
				continue
			}

			// Last write wins on duplicate cdek numbers across
			// registries; duplicates are unexpected but harmless.
			result.Orders[line.CdekNumber] = model.OrderRecord{
				CdekNumber:     line.CdekNumber,
				RegistryNumber: line.RegistryNumber,
				OrderDetail:    out.detail,
			}
		}

		if end < total {
			if err := e.pacer.Wait(ctx); err != nil {
				return result, err
			}
		}
	}

	e.logger.Info("enrichment finished",
		"orders", len(result.Orders),
		"failures", len(result.Failures))

	return result, nil
}
