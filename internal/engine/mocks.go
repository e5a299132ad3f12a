package engine

import (
	"context"
	"sync"
	"time"

	"github.com/mkuleshov/cod-settle/internal/model"
)

// MockGateway is a mock carrier gateway for testing.
type MockGateway struct {
	FetchRegistryFunc    func(ctx context.Context, date time.Time) (model.Registry, error)
	FetchOrderDetailFunc func(ctx context.Context, cdekNumber string) (model.OrderDetail, error)
	SchedulePickupFunc   func(ctx context.Context, req model.PickupRequest) (*model.PickupConfirmation, error)

	RegistryCalls int
	DetailCalls   []string
	PickupCalls   []model.PickupRequest
	mu            sync.Mutex
}

// FetchRegistry implements the carrier gateway contract.
func (m *MockGateway) FetchRegistry(ctx context.Context, date time.Time) (model.Registry, error) {
	m.mu.Lock()
	m.RegistryCalls++
	m.mu.Unlock()

	if m.FetchRegistryFunc != nil {
		return m.FetchRegistryFunc(ctx, date)
	}
	return model.Registry{}, nil
}

// FetchOrderDetail implements the carrier gateway contract.
func (m *MockGateway) FetchOrderDetail(ctx context.Context, cdekNumber string) (model.OrderDetail, error) {
	m.mu.Lock()
	m.DetailCalls = append(m.DetailCalls, cdekNumber)
	m.mu.Unlock()

	if m.FetchOrderDetailFunc != nil {
		return m.FetchOrderDetailFunc(ctx, cdekNumber)
	}
	return model.OrderDetail{}, nil
}

// ScheduleCourierPickup implements the carrier gateway contract.
func (m *MockGateway) ScheduleCourierPickup(ctx context.Context, req model.PickupRequest) (*model.PickupConfirmation, error) {
	m.mu.Lock()
	m.PickupCalls = append(m.PickupCalls, req)
	m.mu.Unlock()

	if m.SchedulePickupFunc != nil {
		return m.SchedulePickupFunc(ctx, req)
	}
	return &model.PickupConfirmation{UUID: "mock-intake"}, nil
}

// MockCRM is a mock CRM client for testing.
type MockCRM struct {
	UpdateLeadsFunc func(ctx context.Context, updates []model.LeadFieldUpdate) error
	AddNotesFunc    func(ctx context.Context, notes []model.LeadNote) error

	Updates [][]model.LeadFieldUpdate
	Notes   [][]model.LeadNote
	mu      sync.Mutex
}

// UpdateLeads implements the CRM client contract.
func (m *MockCRM) UpdateLeads(ctx context.Context, updates []model.LeadFieldUpdate) error {
	m.mu.Lock()
	m.Updates = append(m.Updates, updates)
	m.mu.Unlock()

	if m.UpdateLeadsFunc != nil {
		return m.UpdateLeadsFunc(ctx, updates)
	}
	return nil
}

// AddNotes implements the CRM client contract.
func (m *MockCRM) AddNotes(ctx context.Context, notes []model.LeadNote) error {
	m.mu.Lock()
	m.Notes = append(m.Notes, notes)
	m.mu.Unlock()

	if m.AddNotesFunc != nil {
		return m.AddNotesFunc(ctx, notes)
	}
	return nil
}
