// Package classify maps enriched orders to their settlement outcome.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkuleshov/cod-settle/internal/model"
)

// brandMarkers are the accepted spellings of the carrier's brand. An
// order whose counterparty carries one of these is a carrier-side
// operation, not a customer sale.
var brandMarkers = []string{"сдэк", "сдек", "cdek"}

// Payment labels written into the ledger's payment type cell.
const (
	PaymentLabelCard = "Карта"
	PaymentLabelCash = "Наличные"
)

// Classify maps an order to exactly one settlement outcome. Priority
// is fixed: courier pickup beats return beats direct sale, so an order
// carrying brand markers on both sides still classifies once.
//
// now supplies the pickup date fallback when the carrier sent no
// status timestamp; passing it keeps the function deterministic.
func Classify(order model.OrderRecord, now time.Time) model.Outcome {
	if containsBrand(order.RecipientName) || containsBrand(order.RecipientCompany) {
		date := order.LastStatusAt
		if date.IsZero() {
			date = now
		}
		return model.CourierPickup{
			Date:   date,
			Amount: order.TotalSumWithoutAgentFee,
			Description: fmt.Sprintf("CDEK pickup %s (registry %d)",
				order.CdekNumber, order.RegistryNumber),
		}
	}

	if containsBrand(order.SenderCompany) {
		return model.ReturnOrder{
			CdekNumber:     order.CdekNumber,
			RegistryNumber: order.RegistryNumber,
		}
	}

	return model.DirectSale{
		CdekNumber:     order.CdekNumber,
		RegistryNumber: order.RegistryNumber,
		PaymentLabel:   paymentLabel(order.PaymentType),
		Amount:         order.TotalSumWithoutAgentFee.Add(order.AgentCommissionSum),
	}
}

func containsBrand(s string) bool {
	lowered := strings.ToLower(s)
	for _, marker := range brandMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func paymentLabel(t model.PaymentType) string {
	switch t {
	case model.PaymentTypeCard:
		return PaymentLabelCard
	case model.PaymentTypeCash:
		return PaymentLabelCash
	default:
		return ""
	}
}
