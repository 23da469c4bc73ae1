package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	podomain "github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"github.com/spf13/cobra"
)

var poCmd = &cobra.Command{
	Use:   "po",
	Short: "Manage purchase orders",
}

var poListFlags struct {
	status string
	search string
}

var poListCmd = &cobra.Command{
	Use:   "list",
	Short: "List purchase orders with their margin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := podomain.ListFilter{Search: poListFlags.search}
		if poListFlags.status != "" {
			status, err := podomain.ParseStatus(poListFlags.status)
			if err != nil {
				return err
			}
			filter.Status = status
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			margins, err := s.POs.List(ctx, filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), margins)
			}
			return printLineMargins(cmd.OutOrStdout(), margins)
		})
	},
}

var poAddFlags struct {
	quote       string
	line        string
	contact     string
	shipTo      string
	description string
	quantity    string
	unitCost    string
	status      string
	notes       string
}

var poAddCmd = &cobra.Command{
	Use:   "add <vendor>",
	Short: "Create a purchase order, optionally for a quote line",
	Example: `  salescloser po add "Acme Supply" --quote Q-0001 --line 1 --quantity 2 --unit-cost 30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := podomain.CreateRequest{
			Vendor:        args[0],
			VendorContact: poAddFlags.contact,
			ShipToAddress: poAddFlags.shipTo,
			Description:   poAddFlags.description,
			Notes:         poAddFlags.notes,
		}
		var err error
		if req.Quantity, err = parseAmount(poAddFlags.quantity); err != nil {
			return err
		}
		if req.UnitCost, err = parseAmount(poAddFlags.unitCost); err != nil {
			return err
		}
		if poAddFlags.status != "" {
			if req.Status, err = podomain.ParseStatus(poAddFlags.status); err != nil {
				return err
			}
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			if poAddFlags.quote != "" {
				q, err := s.Quotes.Resolve(ctx, poAddFlags.quote)
				if err != nil {
					return err
				}
				req.QuoteID = &q.ID
				if poAddFlags.line != "" {
					line, err := pickLine(q, poAddFlags.line)
					if err != nil {
						return err
					}
					req.LineID = &line.ID
					if req.Description == "" {
						req.Description = line.Description
					}
				}
			}
			po, err := s.POs.Create(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), po)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s to %s: %s\n", po.Number, po.Vendor, money(po.Cost()))
			return nil
		})
	},
}

var poIssueCmd = &cobra.Command{
	Use:   "issue <id>",
	Short: "Issue a draft purchase order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			po, err := s.POs.Issue(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), po)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", po.Number, po.Status)
			return nil
		})
	},
}

var poStatusCmd = &cobra.Command{
	Use:   "status <id> <draft|issued|ordered|received|paid>",
	Short: "Set a purchase order's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := podomain.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			po, err := s.POs.SetStatus(ctx, id, status)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), po)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", po.Number, po.Status)
			return nil
		})
	},
}

var poDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a purchase order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			if err := s.POs.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted purchase order %s\n", id)
			return nil
		})
	},
}

var marginsCmd = &cobra.Command{
	Use:   "margins",
	Short: "Report margins per purchase order, per quote and overall",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			report, err := s.POs.MarginReport(ctx)
			if err != nil {
				return err
			}
			s.Batch.SetRecords(cmd.CommandPath(), "purchase_orders", report.Summary.Orders)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report)
			}
			if err := printLineMargins(out, report.Margins); err != nil {
				return err
			}

			fmt.Fprintln(out)
			tw := newTable(out, "QUOTE", "ORDERS", "SELL", "COST", "MARGIN", "MARGIN %")
			for _, q := range report.ByQuote {
				row(tw, q.Label, q.Orders, money(q.Sell), money(q.Cost), money(q.Margin), percent(q.MarginPct))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			tw = newTable(out, "CATEGORY", "COST")
			for _, c := range report.ByCategory {
				row(tw, c.Category, money(c.Cost))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			sum := report.Summary
			fmt.Fprintf(out, "\n%d orders, sell %s, cost %s, margin %s, average margin %s\n",
				sum.Orders, money(sum.TotalSell), money(sum.TotalCost), money(sum.TotalMargin), percent(sum.AverageMarginPct))
			return nil
		})
	},
}

func init() {
	poListCmd.Flags().StringVar(&poListFlags.status, "status", "", "Only orders with this status")
	poListCmd.Flags().StringVarP(&poListFlags.search, "search", "s", "", "Match number, vendor, description, quote or client")

	poAddCmd.Flags().StringVar(&poAddFlags.quote, "quote", "", "Quote id or number the order fills")
	poAddCmd.Flags().StringVar(&poAddFlags.line, "line", "", "Quote line id or 1-based position")
	poAddCmd.Flags().StringVar(&poAddFlags.contact, "contact", "", "Vendor contact")
	poAddCmd.Flags().StringVar(&poAddFlags.shipTo, "ship-to", "", "Ship-to address")
	poAddCmd.Flags().StringVar(&poAddFlags.description, "description", "", "Description (default: the quote line's)")
	poAddCmd.Flags().StringVar(&poAddFlags.quantity, "quantity", "1", "Quantity")
	poAddCmd.Flags().StringVar(&poAddFlags.unitCost, "unit-cost", "0", "Unit cost")
	poAddCmd.Flags().StringVar(&poAddFlags.status, "status", "", "Initial status (default draft)")
	poAddCmd.Flags().StringVar(&poAddFlags.notes, "notes", "", "Notes")

	poCmd.AddCommand(poListCmd)
	poCmd.AddCommand(poAddCmd)
	poCmd.AddCommand(poIssueCmd)
	poCmd.AddCommand(poStatusCmd)
	poCmd.AddCommand(poDeleteCmd)
}

// pickLine finds a quote line by id, or by position when ref is a small
// number within the line count.
func pickLine(q quotedomain.Quote, ref string) (quotedomain.Line, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(q.Lines) {
		return q.Lines[n-1], nil
	}
	id, err := snowflake.ParseString(ref)
	if err == nil {
		for _, l := range q.Lines {
			if l.ID == id {
				return l, nil
			}
		}
	}
	return quotedomain.Line{}, fmt.Errorf("%s has no line %q", q.Number, ref)
}

func printLineMargins(w io.Writer, margins []podomain.LineMargin) error {
	tw := newTable(w, "ID", "PO", "VENDOR", "STATUS", "QUOTE", "CATEGORY", "SELL", "COST", "MARGIN", "MARGIN %")
	for _, m := range margins {
		po := m.PurchaseOrder
		row(tw, po.ID, po.Number, po.Vendor, po.Status, orDash(m.QuoteNumber), m.Category,
			money(m.Sell), money(m.Cost), money(m.Margin), percent(m.MarginPct))
	}
	return tw.Flush()
}
