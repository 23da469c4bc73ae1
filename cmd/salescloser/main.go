package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	asJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "salescloser",
	Short: "Quotes, sales tax and the deal pipeline for a small sales shop",
	Long: `salescloser keeps quotes, clients, the deal board and purchase orders in a
local database.

Quotes are taxed per line against the bundled jurisdiction table. Every quote
is mirrored onto the pipeline board, and purchase orders are priced against
the quote lines they fill to report margins.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(jurisdictionsCmd)
	rootCmd.AddCommand(taxCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(dealCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(poCmd)
	rootCmd.AddCommand(marginsCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(backupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
