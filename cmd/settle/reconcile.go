package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkuleshov/cod-settle/internal/cli"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a day's registries against the ledger and CRM",
		Long: `Pulls the carrier's cash-on-delivery registry for a date, enriches
every order, classifies it as a direct sale, return or courier pickup,
and applies the outcome to the settlement ledger and the CRM.

Runs for yesterday (carrier local calendar) unless --date is given.`,
		RunE: runReconcile,
	}

	cmd.Flags().StringP("date", "d", "", "registry date (YYYY-MM-DD)")
	_ = viper.BindPFlag("reconcile.date", cmd.Flags().Lookup("date"))

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	date, err := resolveRegistryDate(viper.GetString("reconcile.date"))
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = cli.NewProgressBar(total, "Enriching orders...")
		}
		_ = bar.Set(done)
	}

	eng, err := buildEngine(ctx, progress)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Reconciling registries for %s", date.Format("2006-01-02"))))

	result, err := eng.Reconcile(ctx, date)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	if len(result.Errors) > 0 {
		for _, regErr := range result.Errors {
			fmt.Println(cli.FormatError(fmt.Sprintf("carrier: %s - %s", regErr.Code, regErr.Message)))
		}
		return fmt.Errorf("carrier reported %d registry errors", len(result.Errors))
	}
	if result.Registries == 0 {
		fmt.Println(cli.FormatWarning("No registries for this date"))
		return nil
	}

	for _, failure := range result.Failures {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("lookup failed: %s (registry %d)",
			failure.CdekNumber, failure.RegistryNumber)))
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"%d registries: %d sales, %d returns, %d pickups; %d ledger updates, %d spending entries, %d CRM updates, %d CRM notes",
		result.Registries, result.DirectOrders, result.ReturnOrders, result.CourierPickups,
		result.LedgerUpdates, result.LedgerSpendingAdds, result.CRMUpdates, result.CRMNotes)))

	return nil
}

// resolveRegistryDate parses an explicit date or defaults to yesterday
// in the carrier's local calendar.
func resolveRegistryDate(raw string) (time.Time, error) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load carrier timezone: %w", err)
	}

	if raw == "" {
		now := time.Now().In(loc)
		year, month, day := now.AddDate(0, 0, -1).Date()
		return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
	}

	date, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return date, nil
}
