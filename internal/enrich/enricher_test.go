package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuleshov/cod-settle/internal/model"
)

// stubGateway implements the carrier gateway with a configurable
// order-detail lookup.
type stubGateway struct {
	detailFunc func(ctx context.Context, cdekNumber string) (model.OrderDetail, error)

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func (s *stubGateway) FetchRegistry(_ context.Context, _ time.Time) (model.Registry, error) {
	return model.Registry{}, nil
}

func (s *stubGateway) ScheduleCourierPickup(_ context.Context, _ model.PickupRequest) (*model.PickupConfirmation, error) {
	return nil, nil
}

func (s *stubGateway) FetchOrderDetail(ctx context.Context, cdekNumber string) (model.OrderDetail, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxInFlight.Load()
		if current <= max || s.maxInFlight.CompareAndSwap(max, current) {
			break
		}
	}
	s.calls.Add(1)

	// Let sibling lookups in the batch start so the concurrency high
	// water mark is observable.
	time.Sleep(time.Millisecond)

	return s.detailFunc(ctx, cdekNumber)
}

func lineItems(n int) []model.RegistryLineItem {
	lines := make([]model.RegistryLineItem, n)
	for i := range lines {
		lines[i] = model.RegistryLineItem{
			CdekNumber:     fmt.Sprintf("order-%d", i),
			RegistryNumber: 100 + i/5,
		}
	}
	return lines
}

func TestEnrichAllSucceed(t *testing.T) {
	gateway := &stubGateway{
		detailFunc: func(_ context.Context, cdekNumber string) (model.OrderDetail, error) {
			return model.OrderDetail{
				OrderNumber:             "42",
				TotalSumWithoutAgentFee: decimal.NewFromInt(1000),
			}, nil
		},
	}
	enricher := New(gateway, NoDelayPacer{}, slog.Default())

	result, err := enricher.Enrich(context.Background(), lineItems(12))
	require.NoError(t, err)

	assert.Len(t, result.Orders, 12)
	assert.Empty(t, result.Failures)
	assert.Equal(t, int32(12), gateway.calls.Load())

	order, ok := result.Orders["order-7"]
	require.True(t, ok)
	assert.Equal(t, "order-7", order.CdekNumber)
	assert.Equal(t, 101, order.RegistryNumber, "line item keeps its originating registry")
	assert.Equal(t, "42", order.OrderNumber)
}

func TestEnrichPartialFailure(t *testing.T) {
	gateway := &stubGateway{
		detailFunc: func(_ context.Context, cdekNumber string) (model.OrderDetail, error) {
			if cdekNumber == "order-7" {
				return model.OrderDetail{}, fmt.Errorf("boom")
			}
			return model.OrderDetail{}, nil
		},
	}
	enricher := New(gateway, NoDelayPacer{}, slog.Default())

	result, err := enricher.Enrich(context.Background(), lineItems(12))
	require.NoError(t, err, "an isolated lookup failure must not fail the run")

	assert.Len(t, result.Orders, 11)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "order-7", result.Failures[0].CdekNumber)
	assert.Equal(t, 101, result.Failures[0].RegistryNumber)
}

func TestEnrichAllFail(t *testing.T) {
	gateway := &stubGateway{
		detailFunc: func(_ context.Context, _ string) (model.OrderDetail, error) {
			return model.OrderDetail{}, fmt.Errorf("carrier down")
		},
	}
	enricher := New(gateway, NoDelayPacer{}, slog.Default())

	result, err := enricher.Enrich(context.Background(), lineItems(7))
	require.NoError(t, err, "total failure is zero work done, not a program error")

	assert.Empty(t, result.Orders)
	assert.Len(t, result.Failures, 7)
}

func TestEnrichConcurrencyBounded(t *testing.T) {
	gateway := &stubGateway{
		detailFunc: func(_ context.Context, _ string) (model.OrderDetail, error) {
			return model.OrderDetail{}, nil
		},
	}
	enricher := New(gateway, NoDelayPacer{}, slog.Default(), WithBatchSize(5))

	result, err := enricher.Enrich(context.Background(), lineItems(23))
	require.NoError(t, err)

	assert.Len(t, result.Orders, 23)
	assert.LessOrEqual(t, gateway.maxInFlight.Load(), int32(5),
		"in-flight lookups must never exceed the batch size")
}

func TestEnrichEmptyInput(t *testing.T) {
	gateway := &stubGateway{
		detailFunc: func(_ context.Context, _ string) (model.OrderDetail, error) {
			return model.OrderDetail{}, nil
		},
	}
	enricher := New(gateway, NoDelayPacer{}, slog.Default())

	result, err := enricher.Enrich(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Orders)
	assert.Empty(t, result.Failures)
	assert.Zero(t, gateway.calls.Load())
}

func TestEnrichProgressCallback(t *testing.T) {
	gateway := &stubGateway{
		detailFunc: func(_ context.Context, _ string) (model.OrderDetail, error) {
			return model.OrderDetail{}, nil
		},
	}

	var mu sync.Mutex
	var seen []int
	enricher := New(gateway, NoDelayPacer{}, slog.Default(),
		WithProgress(func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 8, total)
			seen = append(seen, done)
		}))

	_, err := enricher.Enrich(context.Background(), lineItems(8))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 8)
	assert.Equal(t, 8, seen[len(seen)-1])
}

func TestEnrichRespectsCancellation(t *testing.T) {
	gateway := &stubGateway{
		detailFunc: func(_ context.Context, _ string) (model.OrderDetail, error) {
			return model.OrderDetail{}, nil
		},
	}
	enricher := New(gateway, FixedDelayPacer{Delay: time.Hour}, slog.Default(), WithBatchSize(2))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := enricher.Enrich(ctx, lineItems(6))
	require.ErrorIs(t, err, context.Canceled)
}

func TestFixedDelayPacer(t *testing.T) {
	start := time.Now()
	err := FixedDelayPacer{Delay: 10 * time.Millisecond}.Wait(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = FixedDelayPacer{Delay: time.Hour}.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
