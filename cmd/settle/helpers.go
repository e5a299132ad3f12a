package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkuleshov/cod-settle/internal/cdek"
	"github.com/mkuleshov/cod-settle/internal/config"
	"github.com/mkuleshov/cod-settle/internal/crm"
	"github.com/mkuleshov/cod-settle/internal/engine"
	"github.com/mkuleshov/cod-settle/internal/enrich"
	"github.com/mkuleshov/cod-settle/internal/ledger"
)

// buildEngine wires the full dependency graph for a reconciliation or
// pickup run. progress may be nil.
func buildEngine(ctx context.Context, progress func(done, total int)) (*engine.ReconciliationEngine, error) {
	logger := slog.Default()

	carrierCfg, err := config.LoadCarrierConfig()
	if err != nil {
		return nil, fmt.Errorf("carrier config: %w", err)
	}
	gateway, err := cdek.NewClient(ctx, *carrierCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("carrier client: %w", err)
	}

	store, spending, err := buildLedgers(ctx)
	if err != nil {
		return nil, err
	}

	crmCfg, err := config.LoadCRMConfig()
	if err != nil {
		return nil, fmt.Errorf("crm config: %w", err)
	}
	crmClient, err := crm.NewClient(*crmCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("crm client: %w", err)
	}

	settings := config.LoadEnrichmentSettings()
	opts := []enrich.Option{enrich.WithBatchSize(settings.BatchSize)}
	if progress != nil {
		opts = append(opts, enrich.WithProgress(progress))
	}
	enricher := enrich.New(gateway,
		enrich.FixedDelayPacer{Delay: settings.BatchDelay},
		logger, opts...)

	return engine.New(engine.Dependencies{
		Gateway:  gateway,
		Enricher: enricher,
		Ledger:   store,
		Spending: spending,
		CRM:      crmClient,
	}), nil
}

// buildLedgers creates the settlement store and the spending store
// over a shared authenticated Sheets service.
func buildLedgers(ctx context.Context) (*ledger.Store, *ledger.SpendingStore, error) {
	logger := slog.Default()

	ledgerCfg, err := config.LoadLedgerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("ledger config: %w", err)
	}

	sheetsService, err := ledger.NewSheetsService(ctx, *ledgerCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("sheets service: %w", err)
	}

	mainBackend, err := ledger.NewSheetsBackend(ctx, sheetsService,
		ledgerCfg.SpreadsheetID, ledgerCfg.SheetName, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger backend: %w", err)
	}
	store := ledger.NewStore(mainBackend, ledgerCfg.MaxRows, logger)

	spendingBackend, err := ledger.NewSheetsBackend(ctx, sheetsService,
		ledgerCfg.SpendingSpreadsheetID, ledgerCfg.SpendingSheetName, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("spending backend: %w", err)
	}
	spending := ledger.NewSpendingStore(spendingBackend, logger)

	return store, spending, nil
}
