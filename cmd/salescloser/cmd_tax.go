package main

import (
	"context"
	"fmt"

	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	"github.com/spf13/cobra"
)

var jurisdictionsCmd = &cobra.Command{
	Use:   "jurisdictions",
	Short: "List the tax jurisdictions and their rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			rows := s.Tax.Jurisdictions()
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rows)
			}
			tw := newTable(out, "CODE", "NAME", "RATE", "FREIGHT", "LABOR", "NOTES")
			for _, j := range rows {
				row(tw, j.Code, j.Name, rate(j.CombinedRate), yesNo(j.FreightTaxable), yesNo(j.LaborTaxable), orDash(j.Notes))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\ntable version %s, %d jurisdictions\n", s.Tax.Version(), len(rows))
			return nil
		})
	},
}

var taxCmd = &cobra.Command{
	Use:   "tax <jurisdiction> <category> <amount>",
	Short: "Compute the sales tax on one amount",
	Long: `Compute the sales tax on one amount.

Categories: product, service, labor, freight. Unknown jurisdictions and
categories yield zero tax and say so.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		category := taxdomain.Category(args[1])
		if c, ok := taxdomain.ParseCategory(args[1]); ok {
			category = c
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			res := s.Tax.Compute(ctx, args[0], category, amount)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			switch res.Outcome {
			case taxdomain.OutcomeUnknownJurisdiction:
				fmt.Fprintf(out, "no tax data for %q, tax is %s\n", args[0], money(res.TaxAmount))
				return nil
			case taxdomain.OutcomeUnknownCategory:
				fmt.Fprintf(out, "unknown category %q, tax is %s\n", args[1], money(res.TaxAmount))
				return nil
			}
			tw := newTable(out, "AMOUNT", "TAXABLE", "RATE", "TAX", "TOTAL")
			row(tw, money(amount), yesNo(res.Taxable), rate(res.TaxRate), money(res.TaxAmount), money(amount.Add(res.TaxAmount)))
			return tw.Flush()
		})
	},
}
