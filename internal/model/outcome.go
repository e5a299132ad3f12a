package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the settlement classification of one enriched order.
// Exactly one of CourierPickup, ReturnOrder or DirectSale is produced
// for every order; there is no unclassifiable state.
type Outcome interface {
	outcome()
}

// CourierPickup means the carrier collected goods from the merchant's
// office; it becomes a spending entry, never a ledger row update.
type CourierPickup struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// ReturnOrder means the parcel came back to the merchant; the ledger
// update step derives the charge from the order itself.
type ReturnOrder struct {
	CdekNumber     string
	RegistryNumber int
}

// DirectSale means the parcel was delivered and paid for by the
// customer. PaymentLabel is empty when the carrier reported an unknown
// payment method.
type DirectSale struct {
	CdekNumber     string
	RegistryNumber int
	PaymentLabel   string
	Amount         decimal.Decimal
}

func (CourierPickup) outcome() {}
func (ReturnOrder) outcome()   {}
func (DirectSale) outcome()    {}
