package model

import "time"

// PickupRequest asks the carrier to collect goods from the merchant's
// office on a given day.
type PickupRequest struct {
	IntakeDate    time.Time
	TimeFrom      string // "10:00"
	TimeTo        string // "17:00"
	SenderName    string
	SenderCompany string
	Phone         string
	Address       string
	WeightGrams   int
	Comment       string
	LeadID        int64 // CRM lead to note on rejection; 0 when unknown
}

// PickupConfirmation is the carrier's acknowledgement of a scheduled
// pickup. A nil confirmation from the gateway means the carrier
// rejected the request as a business decision, not a fault.
type PickupConfirmation struct {
	UUID         string
	IntakeNumber string
}
