package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkuleshov/cod-settle/internal/cli"
	"github.com/mkuleshov/cod-settle/internal/ledger"
)

// ingestOrder is the on-disk shape of one new order to append to the
// settlement ledger.
type ingestOrder struct {
	ShippingDate string `json:"shipping_date"`
	Status       string `json:"status"`
	GoodCategory string `json:"good_category"`
	GoodSku      string `json:"good_sku"`
	GoodName     string `json:"good_name"`
	GoodSize     string `json:"good_size"`
	Price        string `json:"price"`
	Discount     string `json:"discount"`
	DeliveryType string `json:"delivery_type"`
	PaymentType  string `json:"payment_type"`
	LeadID       string `json:"lead_id"`
	CdekNumber   string `json:"cdek_number"`
	Checkout     string `json:"checkout"`
	Ads          string `json:"ads"`
	Site         string `json:"site"`
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <orders.json>",
		Short: "Append new orders to the settlement ledger",
		Long: `Reads a JSON array of new orders and appends them as fresh ledger
rows. Appended rows are painted with the new-row marker color; the
reconciliation run later closes them by registry.`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read orders file: %w", err)
	}

	var orders []ingestOrder
	if err := json.Unmarshal(raw, &orders); err != nil {
		return fmt.Errorf("failed to parse orders file: %w", err)
	}
	if len(orders) == 0 {
		fmt.Println(cli.FormatWarning("No orders in file"))
		return nil
	}

	entries := make([]ledger.Entry, len(orders))
	for i, order := range orders {
		entries[i] = ledger.Entry{
			ShippingDate: order.ShippingDate,
			Status:       order.Status,
			GoodCategory: order.GoodCategory,
			GoodSku:      order.GoodSku,
			GoodName:     order.GoodName,
			GoodSize:     order.GoodSize,
			Price:        order.Price,
			Discount:     order.Discount,
			DeliveryType: order.DeliveryType,
			PaymentType:  order.PaymentType,
			LeadID:       order.LeadID,
			CdekNumber:   order.CdekNumber,
			Checkout:     order.Checkout,
			Ads:          order.Ads,
			Site:         order.Site,
		}
	}

	store, _, err := buildLedgers(ctx)
	if err != nil {
		return err
	}

	if err := store.AddRows(ctx, entries, ledger.ColorNew); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Appended %d ledger rows", len(entries))))
	return nil
}
