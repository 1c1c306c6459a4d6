// Command tracker is a one-shot lookup: fetch the configured sheet once,
// run a single query, and print the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/totemtrack/go-track-sheets/config"
	"github.com/totemtrack/go-track-sheets/models"
	"github.com/totemtrack/go-track-sheets/sheet"
	"github.com/totemtrack/go-track-sheets/status"
	"github.com/totemtrack/go-track-sheets/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	orderKey := flag.String("key", "", "Order, secondary, or invoice number to look up")
	document := flag.String("document", "", "Customer tax id (CPF/CNPJ) to look up")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if (*orderKey == "") == (*document == "") {
		fmt.Fprintln(os.Stderr, "provide exactly one of -key or -document")
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fetcher, err := sheet.NewFetcher(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialising fetcher: %v\n", err)
		os.Exit(1)
	}

	dataset := sheet.DatasetOrders
	if *document != "" {
		dataset = sheet.DatasetDocuments
	}

	st := store.NewStore(fetcher.Metrics)
	refresher := store.NewRefresher(st, fetcher, cfg, dataset)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := refresher.EnsureFresh(ctx, dataset); err != nil {
		fmt.Fprintf(os.Stderr, "could not reach the data source: %v\n", err)
		os.Exit(1)
	}

	if *orderKey != "" {
		rec, err := st.SearchByOrderKey(*orderKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not reach the data source: %v\n", err)
			os.Exit(1)
		}
		if rec == nil {
			fmt.Printf("no record found for %q\n", strings.TrimSpace(*orderKey))
			os.Exit(3)
		}
		printRecord(rec)
		return
	}

	records, err := st.SearchByDocument(*document)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not reach the data source: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Printf("no record found for %q\n", strings.TrimSpace(*document))
		os.Exit(3)
	}
	for i, rec := range records {
		if i > 0 {
			fmt.Println()
		}
		printRecord(rec)
	}
}

func printRecord(rec *models.TrackingRecord) {
	st := status.Classify(rec)
	separator := "--------------------------------------------------"
	fmt.Println(separator)
	fmt.Printf("  Status:        %s (%s)\n", st.Label, st.State)
	if rec.OrderID != 0 {
		fmt.Printf("  Order:         %d\n", rec.OrderID)
	}
	if rec.SecondaryID != 0 && rec.SecondaryID != rec.OrderID {
		fmt.Printf("  Secondary id:  %d\n", rec.SecondaryID)
	}
	if rec.TaxDocumentID != 0 {
		fmt.Printf("  Invoice:       %d\n", rec.TaxDocumentID)
	}
	if rec.CustomerTaxID != "" {
		fmt.Printf("  Tax id:        %s\n", rec.CustomerTaxID)
	}
	fmt.Printf("  Customer:      %s\n", rec.CustomerName)
	if rec.TradeName != "" && rec.TradeName != "N/A" {
		fmt.Printf("  Trade name:    %s\n", rec.TradeName)
	}
	fmt.Printf("  Shipped:       %s\n", rec.ShippedOn)
	fmt.Printf("  Expected:      %s\n", rec.ExpectedDeliveryOn)
	if rec.DeliveredOn != "" {
		fmt.Printf("  Delivered:     %s\n", rec.DeliveredOn)
	}
	if rec.DeliveryDurationDays != nil {
		fmt.Printf("  Days in route: %d\n", *rec.DeliveryDurationDays)
	}
	fmt.Printf("  Carrier:       %s\n", rec.Carrier)
	fmt.Printf("  Destination:   %s / %s\n", rec.City, rec.State)
	fmt.Printf("  Product:       %s (%s) x%d\n", rec.ProductType, rec.ModelName, rec.Quantity)
	fmt.Printf("  Value:         %s\n", rec.ProductValue)
	if rec.ProofOfDeliveryURL != "" {
		fmt.Printf("  Proof:         %s\n", rec.ProofOfDeliveryURL)
	}
	fmt.Println(separator)
}
