package model

// LeadFieldUpdate sets arbitrary field/value pairs on a CRM lead.
type LeadFieldUpdate struct {
	Fields map[string]string
	LeadID int64
}

// LeadNote appends a free-text note to a CRM lead.
type LeadNote struct {
	Text   string
	LeadID int64
}
