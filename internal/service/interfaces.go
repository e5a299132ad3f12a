// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mkuleshov/cod-settle/internal/ledger"
	"github.com/mkuleshov/cod-settle/internal/model"
)

// CarrierGateway is the typed client for the carrier's API.
type CarrierGateway interface {
	// FetchRegistry returns the daily cash-on-delivery registry for a
	// date. Carrier-side errors come back inside the Registry value;
	// the error return is transport failure only.
	FetchRegistry(ctx context.Context, date time.Time) (model.Registry, error)
	// FetchOrderDetail looks up a single order by cdek number.
	FetchOrderDetail(ctx context.Context, cdekNumber string) (model.OrderDetail, error)
	// ScheduleCourierPickup asks the carrier to collect goods. A nil
	// confirmation with nil error means the carrier rejected the
	// pickup as a business decision, not a fault.
	ScheduleCourierPickup(ctx context.Context, req model.PickupRequest) (*model.PickupConfirmation, error)
}

// SettlementLedger is the windowed row store holding order/shipment
// financial state.
type SettlementLedger interface {
	Load(ctx context.Context) error
	FindAndUpdate(ctx context.Context, search ledger.Search, patch ledger.Patch, opts ledger.UpdateOptions) (ledger.UpdateStats, error)
	Save(ctx context.Context) error
	AddRows(ctx context.Context, entries []ledger.Entry, color *ledger.Color) error
}

// SpendingLedger receives courier-pickup charges as new rows.
type SpendingLedger interface {
	Add(ctx context.Context, entries []model.SpendingEntry) error
}

// CRMClient pushes batched lead updates and notes to the CRM. Both
// calls are fire-and-forget from the orchestrator's point of view.
type CRMClient interface {
	UpdateLeads(ctx context.Context, updates []model.LeadFieldUpdate) error
	AddNotes(ctx context.Context, notes []model.LeadNote) error
}

// Pacer spaces out successive batches of outbound calls. It exists so
// the courtesy rate limit against the carrier is an injectable policy
// rather than an inline sleep.
type Pacer interface {
	Wait(ctx context.Context) error
}
