package ledger

import (
	"context"
	"sync"

	"github.com/mkuleshov/cod-settle/internal/model"
)

// MockLedger is a mock settlement ledger for testing.
type MockLedger struct {
	FindAndUpdateFunc func(ctx context.Context, search Search, patch Patch, opts UpdateOptions) (UpdateStats, error)
	SaveFunc          func(ctx context.Context) error
	Updates           []FindAndUpdateCall
	AddRowsCalls      []AddRowsCall
	LoadCalls         int
	SaveCalls         int
	mu                sync.Mutex
}

// FindAndUpdateCall records one FindAndUpdate invocation.
type FindAndUpdateCall struct {
	Search Search
	Patch  Patch
	Opts   UpdateOptions
}

// AddRowsCall records one AddRows invocation.
type AddRowsCall struct {
	Color   *Color
	Entries []Entry
}

// NewMockLedger creates a new mock ledger.
func NewMockLedger() *MockLedger {
	return &MockLedger{}
}

// Load implements the settlement ledger contract.
func (m *MockLedger) Load(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	return nil
}

// FindAndUpdate implements the settlement ledger contract.
func (m *MockLedger) FindAndUpdate(ctx context.Context, search Search, patch Patch, opts UpdateOptions) (UpdateStats, error) {
	m.mu.Lock()
	m.Updates = append(m.Updates, FindAndUpdateCall{Search: search, Patch: patch, Opts: opts})
	m.mu.Unlock()

	if m.FindAndUpdateFunc != nil {
		return m.FindAndUpdateFunc(ctx, search, patch, opts)
	}
	return UpdateStats{Found: 1, Updated: 1}, nil
}

// Save implements the settlement ledger contract.
func (m *MockLedger) Save(ctx context.Context) error {
	m.mu.Lock()
	m.SaveCalls++
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx)
	}
	return nil
}

// AddRows implements the settlement ledger contract.
func (m *MockLedger) AddRows(_ context.Context, entries []Entry, color *Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddRowsCalls = append(m.AddRowsCalls, AddRowsCall{Entries: entries, Color: color})
	return nil
}

// MockSpending is a mock spending ledger for testing.
type MockSpending struct {
	AddFunc func(ctx context.Context, entries []model.SpendingEntry) error
	Added   [][]model.SpendingEntry
	mu      sync.Mutex
}

// NewMockSpending creates a new mock spending ledger.
func NewMockSpending() *MockSpending {
	return &MockSpending{}
}

// Add implements the spending ledger contract.
func (m *MockSpending) Add(ctx context.Context, entries []model.SpendingEntry) error {
	m.mu.Lock()
	m.Added = append(m.Added, entries)
	m.mu.Unlock()

	if m.AddFunc != nil {
		return m.AddFunc(ctx, entries)
	}
	return nil
}
