// Package ledger implements a narrow row store over a spreadsheet-shaped
// backend, emulating an indexed table with a fixed column schema.
package ledger

// Column is a 0-indexed position in the ledger's fixed schema. The
// schema is shared by every row; cell addressing never varies per row.
type Column int

// The settlement ledger schema, in sheet order.
const (
	ColShippingDate Column = iota
	ColStatus
	ColGoodCategory
	ColGoodSku
	ColGoodName
	ColGoodSize
	ColPrice
	ColDiscount
	ColCustomerDeliveryPrice
	ColOwnerDeliveryPrice
	ColOwnerReturnDeliveryPrice
	ColDeliveryType
	ColPaymentType
	ColLeadID
	ColCdekNumber
	ColReturnLeadID
	ColReturnCdekNumber
	ColClosedByRegister
	ColReturnClosedByRegister
	ColCheckout
	ColAds
	ColSite

	columnCount
)

// columnLetter returns the A1-notation letter for a column. The schema
// fits within a single letter range (A..V).
func columnLetter(c Column) string {
	return string(rune('A' + int(c)))
}
