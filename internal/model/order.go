package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is the carrier's payment method code for a
// cash-on-delivery order.
type PaymentType string

// Payment method codes as the carrier reports them.
const (
	PaymentTypeCard PaymentType = "CARD"
	PaymentTypeCash PaymentType = "CASH"
)

// OrderDetail is the full order information fetched from the carrier
// for a single cdek number.
type OrderDetail struct {
	OrderNumber             string // merchant order number; ties to the ledger lead id, may be empty
	SenderName              string
	SenderCompany           string
	RecipientName           string
	RecipientCompany        string
	LastStatusCode          string
	LastStatusAt            time.Time // zero when the carrier sent no statuses
	PaymentType             PaymentType
	TotalSumWithoutAgentFee decimal.Decimal
	AgentCommissionSum      decimal.Decimal
}

// OrderRecord is a registry line item merged with its fetched detail.
// It lives only for the duration of one reconciliation run.
type OrderRecord struct {
	CdekNumber     string
	RegistryNumber int
	OrderDetail
}

// EnrichmentFailure records a single lookup that failed during
// enrichment without aborting the run.
type EnrichmentFailure struct {
	CdekNumber     string
	RegistryNumber int
}

// EnrichmentResult is the outcome of enriching one run's line items:
// successfully fetched orders keyed by cdek number plus the lookups
// that failed.
type EnrichmentResult struct {
	Orders   map[string]OrderRecord
	Failures []EnrichmentFailure
}
