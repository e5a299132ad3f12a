package model

import "time"

// ReconciliationResult aggregates what one reconciliation run did.
// It is built incrementally by the orchestrator and discarded after
// logging.
type ReconciliationResult struct {
	Date              time.Time
	Errors            []RegistryError
	Failures          []EnrichmentFailure
	Registries        int
	DirectOrders      int
	ReturnOrders      int
	CourierPickups    int
	LedgerUpdates     int
	LedgerSpendingAdds int
	CRMUpdates        int
	CRMNotes          int
}
