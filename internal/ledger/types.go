package ledger

import "slices"

// Search selects ledger rows by their composite business keys. A row
// matches when any supplied key set contains the row's corresponding
// cell value (OR across key types). GoodSkus, when supplied, narrows
// the matched set: a key-matched row whose good-sku cell is not in the
// set is skipped entirely.
type Search struct {
	LeadIDs           []string
	ReturnLeadIDs     []string
	CdekNumbers       []string
	ReturnCdekNumbers []string
	GoodSkus          []string
}

// hasKeys reports whether at least one key set was supplied. A search
// without keys must not scan anything.
func (s Search) hasKeys() bool {
	return len(s.LeadIDs) > 0 ||
		len(s.ReturnLeadIDs) > 0 ||
		len(s.CdekNumbers) > 0 ||
		len(s.ReturnCdekNumbers) > 0
}

func (s Search) matchesKeys(row []string) bool {
	return slices.Contains(s.LeadIDs, row[ColLeadID]) ||
		slices.Contains(s.ReturnLeadIDs, row[ColReturnLeadID]) ||
		slices.Contains(s.CdekNumbers, row[ColCdekNumber]) ||
		slices.Contains(s.ReturnCdekNumbers, row[ColReturnCdekNumber])
}

func (s Search) passesNarrowing(row []string) bool {
	return len(s.GoodSkus) == 0 || slices.Contains(s.GoodSkus, row[ColGoodSku])
}

// Patch is a sparse row update: nil fields leave the corresponding
// cell untouched. Color, when set, paints the whole matched row's
// column range regardless of which fields changed.
type Patch struct {
	ShippingDate            *string
	Status                  *string
	GoodCategory            *string
	GoodSku                 *string
	GoodName                *string
	GoodSize                *string
	Price                   *string
	Discount                *string
	CustomerDeliveryPrice   *string
	OwnerDeliveryPrice      *string
	OwnerReturnDeliveryPrice *string
	DeliveryType            *string
	PaymentType             *string
	LeadID                  *string
	CdekNumber              *string
	ReturnLeadID            *string
	ReturnCdekNumber        *string
	ClosedByRegister        *string
	ReturnClosedByRegister  *string
	Checkout                *string
	Ads                     *string
	Site                    *string
	Color                   *Color
}

type cellValue struct {
	value string
	col   Column
}

// cells returns the set fields in schema order.
func (p Patch) cells() []cellValue {
	out := make([]cellValue, 0, columnCount)
	add := func(col Column, v *string) {
		if v != nil {
			out = append(out, cellValue{col: col, value: *v})
		}
	}
	add(ColShippingDate, p.ShippingDate)
	add(ColStatus, p.Status)
	add(ColGoodCategory, p.GoodCategory)
	add(ColGoodSku, p.GoodSku)
	add(ColGoodName, p.GoodName)
	add(ColGoodSize, p.GoodSize)
	add(ColPrice, p.Price)
	add(ColDiscount, p.Discount)
	add(ColCustomerDeliveryPrice, p.CustomerDeliveryPrice)
	add(ColOwnerDeliveryPrice, p.OwnerDeliveryPrice)
	add(ColOwnerReturnDeliveryPrice, p.OwnerReturnDeliveryPrice)
	add(ColDeliveryType, p.DeliveryType)
	add(ColPaymentType, p.PaymentType)
	add(ColLeadID, p.LeadID)
	add(ColCdekNumber, p.CdekNumber)
	add(ColReturnLeadID, p.ReturnLeadID)
	add(ColReturnCdekNumber, p.ReturnCdekNumber)
	add(ColClosedByRegister, p.ClosedByRegister)
	add(ColReturnClosedByRegister, p.ReturnClosedByRegister)
	add(ColCheckout, p.Checkout)
	add(ColAds, p.Ads)
	add(ColSite, p.Site)
	return out
}

// Str is a convenience for building sparse patches.
func Str(v string) *string {
	return &v
}

// Entry is a full new ledger row for appending. Zero-value fields
// become empty cells.
type Entry struct {
	ShippingDate            string
	Status                  string
	GoodCategory            string
	GoodSku                 string
	GoodName                string
	GoodSize                string
	Price                   string
	Discount                string
	CustomerDeliveryPrice   string
	OwnerDeliveryPrice      string
	OwnerReturnDeliveryPrice string
	DeliveryType            string
	PaymentType             string
	LeadID                  string
	CdekNumber              string
	ReturnLeadID            string
	ReturnCdekNumber        string
	ClosedByRegister        string
	ReturnClosedByRegister  string
	Checkout                string
	Ads                     string
	Site                    string
}

func (e Entry) row() []any {
	return []any{
		e.ShippingDate,
		e.Status,
		e.GoodCategory,
		e.GoodSku,
		e.GoodName,
		e.GoodSize,
		e.Price,
		e.Discount,
		e.CustomerDeliveryPrice,
		e.OwnerDeliveryPrice,
		e.OwnerReturnDeliveryPrice,
		e.DeliveryType,
		e.PaymentType,
		e.LeadID,
		e.CdekNumber,
		e.ReturnLeadID,
		e.ReturnCdekNumber,
		e.ClosedByRegister,
		e.ReturnClosedByRegister,
		e.Checkout,
		e.Ads,
		e.Site,
	}
}

// Color is a row background marker.
type Color struct {
	Red   float64
	Green float64
	Blue  float64
}

// Row status colors used by the reconciliation and ingestion paths.
var (
	// ColorClosed marks rows closed by a direct-sale registry entry.
	ColorClosed = &Color{Red: 0.85, Green: 0.93, Blue: 0.83}
	// ColorReturn marks rows whose return was closed by a registry entry.
	ColorReturn = &Color{Red: 0.99, Green: 0.9, Blue: 0.8}
	// ColorNew marks freshly ingested rows.
	ColorNew = &Color{Red: 0.95, Green: 0.95, Blue: 0.95}
)

// UpdateOptions controls FindAndUpdate side effects.
type UpdateOptions struct {
	// Save commits buffered mutations immediately instead of waiting
	// for an explicit Save call.
	Save bool
}

// UpdateStats reports what a FindAndUpdate pass did. Found counts rows
// that matched keys and passed narrowing; Updated counts rows where at
// least one cell or the row color actually changed.
type UpdateStats struct {
	Found   int
	Updated int
}
