package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpendingEntry is one courier-pickup charge destined for the spending
// sheet. Spending entries are always appended, never matched against
// existing rows.
type SpendingEntry struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}
