package ledger

import "fmt"

// Config holds the configuration for the Google Sheets ledger backend.
type Config struct {
	ClientID              string
	ClientSecret          string
	RefreshToken          string
	ServiceAccountPath    string
	SpreadsheetID         string
	SheetName             string
	SpendingSpreadsheetID string
	SpendingSheetName     string
	MaxRows               int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SheetName:         "Orders",
		SpendingSheetName: "Spending",
		MaxRows:           DefaultMaxRows,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet id is required")
	}
	if c.SheetName == "" {
		return fmt.Errorf("sheet name is required")
	}

	if c.MaxRows <= 0 {
		return fmt.Errorf("max rows must be positive")
	}

	return nil
}
