// Package model holds the plain domain types shared across the application.
package model

// RegistryError is a carrier-side error reported inside an otherwise
// successful registry response.
type RegistryError struct {
	Code    string
	Message string
}

// RegistryGroup is one registry document: a numbered batch of
// cash-on-delivery orders settled on the same day.
type RegistryGroup struct {
	RegistryNumber int
	CdekNumbers    []string
}

// Registry is the carrier's answer to a daily registry request.
// Errors and Groups are mutually exclusive in practice, but the carrier
// does not guarantee it; callers must check Errors first.
type Registry struct {
	Errors []RegistryError
	Groups []RegistryGroup
}

// RegistryLineItem is a single order reference from a registry, tagged
// with the registry it came from.
type RegistryLineItem struct {
	CdekNumber     string
	RegistryNumber int
}

// Flatten collapses all registry groups into one ordered list of line
// items ready for enrichment.
func (r Registry) Flatten() []RegistryLineItem {
	var lines []RegistryLineItem
	for _, group := range r.Groups {
		for _, number := range group.CdekNumbers {
			lines = append(lines, RegistryLineItem{
				CdekNumber:     number,
				RegistryNumber: group.RegistryNumber,
			})
		}
	}
	return lines
}
