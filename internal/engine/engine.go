// Package engine implements the daily settlement reconciliation run:
// fetch the carrier registry, enrich and classify every order, apply
// outcomes to the ledger and notify the CRM.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mkuleshov/cod-settle/internal/classify"
	"github.com/mkuleshov/cod-settle/internal/ledger"
	"github.com/mkuleshov/cod-settle/internal/model"
	"github.com/mkuleshov/cod-settle/internal/service"
)

// ReconciliationEngine drives one reconciliation run at a time. It
// owns the unit-of-work boundary: one ledger save, one spending bulk
// add, one CRM update batch and one CRM note batch per run.
type ReconciliationEngine struct {
	gateway  service.CarrierGateway
	enricher Enricher
	ledger   service.SettlementLedger
	spending service.SpendingLedger
	crm      service.CRMClient
	now      func() time.Time
}

// Dependencies are the collaborators a reconciliation engine needs.
// All are required.
type Dependencies struct {
	Gateway  service.CarrierGateway
	Enricher Enricher
	Ledger   service.SettlementLedger
	Spending service.SpendingLedger
	CRM      service.CRMClient
}

// New creates a reconciliation engine with the given dependencies.
func New(deps Dependencies) *ReconciliationEngine {
	return &ReconciliationEngine{
		gateway:  deps.Gateway,
		enricher: deps.Enricher,
		ledger:   deps.Ledger,
		spending: deps.Spending,
		crm:      deps.CRM,
		now:      time.Now,
	}
}

// Reconcile runs the full settlement pass for one registry date.
//
// Carrier-side registry errors and an empty registry both terminate
// the run cleanly with an explicit result; neither is a Go error. A
// failing ledger or CRM write degrades the run to best-effort: the
// failure is logged, sibling updates still apply, and the counters
// reflect only what actually landed.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, date time.Time) (*model.ReconciliationResult, error) {
	log := slog.With(
		"run_id", uuid.NewString(),
		"date", date.Format("2006-01-02"))
	log.Info("starting reconciliation")

	result := &model.ReconciliationResult{Date: date}

	registry, err := e.gateway.FetchRegistry(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registry: %w", err)
	}

	if len(registry.Errors) > 0 {
		result.Errors = registry.Errors
		log.Warn("carrier reported registry errors; run aborted",
			"errors", len(registry.Errors))
		return result, nil
	}
	if len(registry.Groups) == 0 {
		log.Info("no registries for date")
		return result, nil
	}
	result.Registries = len(registry.Groups)

	lines := registry.Flatten()
	log.Info("registry fetched", "registries", len(registry.Groups), "orders", len(lines))

	enriched, err := e.enricher.Enrich(ctx, lines)
	if err != nil {
		return nil, fmt.Errorf("enrichment interrupted: %w", err)
	}
	result.Failures = enriched.Failures

	var (
		spendingEntries []model.SpendingEntry
		leadUpdates     []model.LeadFieldUpdate
		notes           []model.LeadNote
	)

	for _, order := range enriched.Orders {
		switch outcome := classify.Classify(order, e.now()).(type) {
		case model.CourierPickup:
			result.CourierPickups++
			spendingEntries = append(spendingEntries, model.SpendingEntry{
				Date:        outcome.Date,
				Amount:      outcome.Amount,
				Description: outcome.Description,
			})

		case model.ReturnOrder:
			result.ReturnOrders++
			result.LedgerUpdates += e.applyReturn(ctx, log, order, outcome)
			if leadID, ok := leadIDFromOrder(order); ok {
				notes = append(notes, model.LeadNote{
					LeadID: leadID,
					Text: fmt.Sprintf("Возврат %s закрыт реестром %d",
						outcome.CdekNumber, outcome.RegistryNumber),
				})
			}

		case model.DirectSale:
			result.DirectOrders++
			result.LedgerUpdates += e.applySale(ctx, log, outcome)
			if leadID, ok := leadIDFromOrder(order); ok {
				update := model.LeadFieldUpdate{
					LeadID: leadID,
					Fields: map[string]string{
						"closed_by_register": strconv.Itoa(outcome.RegistryNumber),
					},
				}
				if outcome.PaymentLabel != "" {
					update.Fields["payment_type"] = outcome.PaymentLabel
				}
				leadUpdates = append(leadUpdates, update)
				notes = append(notes, model.LeadNote{
					LeadID: leadID,
					Text: fmt.Sprintf("Заказ %s закрыт реестром %d, сумма %s",
						outcome.CdekNumber, outcome.RegistryNumber, outcome.Amount.StringFixed(2)),
				})
			}
		}
	}

	// Unit of work: each remote system gets at most one write round,
	// and a failure in one never blocks the others.
	if len(spendingEntries) > 0 {
		if err := e.spending.Add(ctx, spendingEntries); err != nil {
			log.Error("failed to add spending entries", "error", err)
		} else {
			result.LedgerSpendingAdds = len(spendingEntries)
		}
	}

	if err := e.ledger.Save(ctx); err != nil {
		log.Error("failed to save ledger", "error", err)
	}

	if len(leadUpdates) > 0 {
		if err := e.crm.UpdateLeads(ctx, leadUpdates); err != nil {
			log.Error("failed to update crm leads", "error", err)
		} else {
			result.CRMUpdates = len(leadUpdates)
		}
	}
	if len(notes) > 0 {
		if err := e.crm.AddNotes(ctx, notes); err != nil {
			log.Error("failed to add crm notes", "error", err)
		} else {
			result.CRMNotes = len(notes)
		}
	}

	log.Info("reconciliation finished",
		"direct", result.DirectOrders,
		"returns", result.ReturnOrders,
		"pickups", result.CourierPickups,
		"ledger_updates", result.LedgerUpdates,
		"spending_adds", result.LedgerSpendingAdds,
		"crm_updates", result.CRMUpdates,
		"crm_notes", result.CRMNotes,
		"failures", len(result.Failures))

	return result, nil
}

// applyReturn closes the matching ledger row's return side. Returns
// are always updates against existing rows, matched through the
// return cdek number; they never create rows.
func (e *ReconciliationEngine) applyReturn(ctx context.Context, log *slog.Logger, order model.OrderRecord, outcome model.ReturnOrder) int {
	charge := order.TotalSumWithoutAgentFee.Add(order.AgentCommissionSum)

	stats, err := e.ledger.FindAndUpdate(ctx,
		ledger.Search{ReturnCdekNumbers: []string{outcome.CdekNumber}},
		ledger.Patch{
			ReturnClosedByRegister:   ledger.Str(strconv.Itoa(outcome.RegistryNumber)),
			OwnerReturnDeliveryPrice: ledger.Str(charge.StringFixed(2)),
			Color:                    ledger.ColorReturn,
		},
		ledger.UpdateOptions{})
	if err != nil {
		log.Error("return ledger update failed",
			"cdek_number", outcome.CdekNumber, "error", err)
		return 0
	}
	if stats.Found == 0 {
		log.Warn("no ledger row for return",
			"cdek_number", outcome.CdekNumber,
			"registry", outcome.RegistryNumber)
	}
	return stats.Updated
}

// applySale closes the matching ledger row for a delivered, paid
// order. Sales are always updates against existing rows matched by
// cdek number; they never create rows.
func (e *ReconciliationEngine) applySale(ctx context.Context, log *slog.Logger, outcome model.DirectSale) int {
	patch := ledger.Patch{
		ClosedByRegister: ledger.Str(strconv.Itoa(outcome.RegistryNumber)),
		Color:            ledger.ColorClosed,
	}
	if outcome.PaymentLabel != "" {
		patch.PaymentType = ledger.Str(outcome.PaymentLabel)
	}

	stats, err := e.ledger.FindAndUpdate(ctx,
		ledger.Search{CdekNumbers: []string{outcome.CdekNumber}},
		patch,
		ledger.UpdateOptions{})
	if err != nil {
		log.Error("sale ledger update failed",
			"cdek_number", outcome.CdekNumber, "error", err)
		return 0
	}
	if stats.Found == 0 {
		log.Warn("no ledger row for sale",
			"cdek_number", outcome.CdekNumber,
			"registry", outcome.RegistryNumber)
	}
	return stats.Updated
}

// SchedulePickup asks the carrier to collect goods and documents a
// rejection as a CRM note. The rejection itself is a business outcome:
// the returned confirmation is nil and the error is nil.
func (e *ReconciliationEngine) SchedulePickup(ctx context.Context, req model.PickupRequest) (*model.PickupConfirmation, error) {
	confirmation, err := e.gateway.ScheduleCourierPickup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule pickup: %w", err)
	}

	if confirmation == nil {
		slog.Warn("carrier rejected pickup",
			"date", req.IntakeDate.Format("2006-01-02"))
		if req.LeadID != 0 {
			note := model.LeadNote{
				LeadID: req.LeadID,
				Text: fmt.Sprintf("СДЭК отклонил вызов курьера на %s",
					req.IntakeDate.Format("02.01.2006")),
			}
			if err := e.crm.AddNotes(ctx, []model.LeadNote{note}); err != nil {
				slog.Error("failed to note pickup rejection", "error", err)
			}
		}
		return nil, nil
	}

	slog.Info("pickup scheduled", "uuid", confirmation.UUID)
	return confirmation, nil
}

func leadIDFromOrder(order model.OrderRecord) (int64, bool) {
	if order.OrderNumber == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(order.OrderNumber, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
