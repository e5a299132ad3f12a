package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkuleshov/cod-settle/internal/cli"
	"github.com/mkuleshov/cod-settle/internal/model"
)

func pickupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pickup",
		Short: "Schedule a courier pickup from the office",
		Long: `Asks the carrier to collect goods from the merchant's office.

A carrier rejection is not an error: it is reported as a warning and,
when --lead is given, documented as a note on the CRM lead.`,
		RunE: runPickup,
	}

	cmd.Flags().String("date", "", "pickup date (YYYY-MM-DD, default: tomorrow)")
	cmd.Flags().String("from", "10:00", "earliest pickup time")
	cmd.Flags().String("to", "18:00", "latest pickup time")
	cmd.Flags().Int("weight", 1000, "total weight in grams")
	cmd.Flags().String("comment", "", "comment for the courier")
	cmd.Flags().Int64("lead", 0, "CRM lead id to note on rejection")

	return cmd
}

func runPickup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rawDate, _ := cmd.Flags().GetString("date")
	date, err := resolvePickupDate(rawDate)
	if err != nil {
		return err
	}

	timeFrom, _ := cmd.Flags().GetString("from")
	timeTo, _ := cmd.Flags().GetString("to")
	weight, _ := cmd.Flags().GetInt("weight")
	comment, _ := cmd.Flags().GetString("comment")
	leadID, _ := cmd.Flags().GetInt64("lead")

	req := model.PickupRequest{
		IntakeDate:    date,
		TimeFrom:      timeFrom,
		TimeTo:        timeTo,
		SenderName:    viper.GetString("pickup.sender_name"),
		SenderCompany: viper.GetString("pickup.sender_company"),
		Phone:         viper.GetString("pickup.phone"),
		Address:       viper.GetString("pickup.address"),
		WeightGrams:   weight,
		Comment:       comment,
		LeadID:        leadID,
	}

	eng, err := buildEngine(ctx, nil)
	if err != nil {
		return err
	}

	confirmation, err := eng.SchedulePickup(ctx, req)
	if err != nil {
		return err
	}
	if confirmation == nil {
		fmt.Println(cli.FormatWarning("Carrier rejected the pickup request"))
		return nil
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Pickup scheduled for %s, intake %s",
		date.Format("2006-01-02"), confirmation.UUID)))
	return nil
}

func resolvePickupDate(raw string) (time.Time, error) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load carrier timezone: %w", err)
	}

	if raw == "" {
		now := time.Now().In(loc)
		year, month, day := now.AddDate(0, 0, 1).Date()
		return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
	}

	date, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return date, nil
}
