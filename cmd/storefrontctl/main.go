package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/ebay"
	"github.com/sellwithus/storefront/internal/email"
	"github.com/sellwithus/storefront/internal/logger"
	"github.com/sellwithus/storefront/internal/model"
	"github.com/sellwithus/storefront/internal/service"
	"github.com/sellwithus/storefront/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "storefrontctl",
	Short: "Operator tool for the storefront",
}

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Fetch one page of active listings from eBay",
	RunE:  runListings,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove stale staging directories once",
	RunE:  runSweep,
}

var mailCheckCmd = &cobra.Command{
	Use:   "mail-check",
	Short: "Send a test message through the configured email provider",
	RunE:  runMailCheck,
}

var (
	listingsPage int
	mailCheckTo  string
)

func init() {
	listingsCmd.Flags().IntVar(&listingsPage, "page", 1, "page number to fetch")
	mailCheckCmd.Flags().StringVar(&mailCheckTo, "to", "", "recipient (defaults to email.to)")

	rootCmd.AddCommand(listingsCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(mailCheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(cfg.Log.Level, "text"), nil
}

func runListings(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	svc := service.NewListingService(ebay.NewClientFromConfig(cfg.Ebay), log)
	page, err := svc.FetchListings(cmd.Context(), listingsPage)
	if err != nil {
		return err
	}

	printListings(page)
	return nil
}

func printListings(page *model.ListingPage) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tTITLE\tPRICE\tURL")
	for _, l := range page.Listings {
		price := "-"
		if l.Price.Valid {
			price = l.Price.Decimal.StringFixed(2) + " " + deref(l.Currency)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ItemID, deref(l.Title), price, deref(l.URL))
	}
	tw.Flush()

	fmt.Printf("\nPage %d of %d (%d listings)\n", page.Page, page.TotalPages, page.TotalEntries)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	removed, err := storage.NewSweeper(cfg.Upload.Dir, cfg.Upload.StaleAfter, log).SweepOnce()
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d stale staging directories from %s\n", removed, cfg.Upload.Dir)
	return nil
}

func runMailCheck(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	sender, err := email.NewSender(cmd.Context(), cfg.Email, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	to := mailCheckTo
	if to == "" {
		to = cfg.Email.To
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Email.SendTimeout)
	defer cancel()

	err = sender.Send(ctx, email.Message{
		From:     cfg.Email.From,
		To:       to,
		Subject:  "Storefront mail check",
		TextBody: fmt.Sprintf("This is a test message sent by storefrontctl at %s.", time.Now().Format(time.RFC1123Z)),
	})
	if err != nil {
		return fmt.Errorf("mail check via %s failed: %w", sender.Name(), err)
	}

	fmt.Printf("Test message sent to %s via %s\n", to, sender.Name())
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
