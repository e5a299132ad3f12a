// Package config loads carrier, ledger and CRM settings from the viper
// config file with environment variable fallbacks.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/mkuleshov/cod-settle/internal/cdek"
	"github.com/mkuleshov/cod-settle/internal/crm"
	"github.com/mkuleshov/cod-settle/internal/enrich"
	"github.com/mkuleshov/cod-settle/internal/ledger"
)

// LoadCarrierConfig loads carrier API configuration from Viper and
// environment variables. Precedence: Viper (config file or SETTLE_ env
// vars), then direct CDEK_* environment variables, then defaults.
func LoadCarrierConfig() (*cdek.Config, error) {
	config := cdek.DefaultConfig()

	if v := viper.GetString("carrier.base_url"); v != "" {
		config.BaseURL = v
	}
	if v := viper.GetString("carrier.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("carrier.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetDuration("carrier.timeout"); v > 0 {
		config.Timeout = v
	}

	if config.ClientID == "" {
		config.ClientID = os.Getenv("CDEK_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("CDEK_CLIENT_SECRET")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadLedgerConfig loads Google Sheets ledger configuration from Viper
// and environment variables.
func LoadLedgerConfig() (*ledger.Config, error) {
	config := ledger.DefaultConfig()

	if v := viper.GetString("ledger.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("ledger.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("ledger.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("ledger.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("ledger.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("ledger.sheet_name"); v != "" {
		config.SheetName = v
	}
	if v := viper.GetString("ledger.spending_spreadsheet_id"); v != "" {
		config.SpendingSpreadsheetID = v
	}
	if v := viper.GetString("ledger.spending_sheet_name"); v != "" {
		config.SpendingSheetName = v
	}
	if v := viper.GetInt64("ledger.max_rows"); v > 0 {
		config.MaxRows = v
	}

	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	// The spending sheet defaults to a second tab of the same
	// spreadsheet.
	if config.SpendingSpreadsheetID == "" {
		config.SpendingSpreadsheetID = config.SpreadsheetID
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadCRMConfig loads CRM API configuration from Viper and environment
// variables.
func LoadCRMConfig() (*crm.Config, error) {
	config := crm.DefaultConfig()

	if v := viper.GetString("crm.base_url"); v != "" {
		config.BaseURL = v
	}
	if v := viper.GetString("crm.access_token"); v != "" {
		config.AccessToken = v
	}
	if v := viper.GetDuration("crm.timeout"); v > 0 {
		config.Timeout = v
	}

	if config.BaseURL == "" {
		config.BaseURL = os.Getenv("AMOCRM_BASE_URL")
	}
	if config.AccessToken == "" {
		config.AccessToken = os.Getenv("AMOCRM_ACCESS_TOKEN")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// EnrichmentSettings are the tunables of the enrichment stage.
type EnrichmentSettings struct {
	BatchSize  int
	BatchDelay time.Duration
}

// LoadEnrichmentSettings loads enrichment tunables from Viper.
func LoadEnrichmentSettings() EnrichmentSettings {
	settings := EnrichmentSettings{
		BatchSize:  enrich.DefaultBatchSize,
		BatchDelay: enrich.DefaultBatchDelay,
	}
	if v := viper.GetInt("enrichment.batch_size"); v > 0 {
		settings.BatchSize = v
	}
	if viper.IsSet("enrichment.batch_delay") {
		settings.BatchDelay = viper.GetDuration("enrichment.batch_delay")
	}
	return settings
}
