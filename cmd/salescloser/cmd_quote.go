package main

import (
	"context"
	"fmt"
	"io"

	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Create, list and close quotes",
	Long: `Manage quotes.

Quotes are referenced either by id or by number (Q-0001). Lines are given as
"category|description|quantity|unit price[|unit]".`,
}

var quoteListFlags struct {
	status string
	search string
	limit  int
}

var quoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quotes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := quotedomain.ListFilter{Search: quoteListFlags.search, Limit: quoteListFlags.limit}
		if quoteListFlags.status != "" {
			status, err := quotedomain.ParseStatus(quoteListFlags.status)
			if err != nil {
				return err
			}
			filter.Status = status
		}
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			quotes, err := s.Quotes.List(ctx, filter)
			if err != nil {
				return err
			}
			s.Batch.SetRecords(cmd.CommandPath(), "quotes", len(quotes))
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, quotes)
			}
			tw := newTable(out, "NUMBER", "CLIENT", "STATUS", "JURISDICTION", "SUBTOTAL", "TAX", "TOTAL", "CREATED")
			for _, q := range quotes {
				row(tw, q.Number, orDash(q.ClientName), q.Status, q.Jurisdiction,
					money(q.Subtotal), money(q.Tax), money(q.Total), q.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		})
	},
}

var quoteShowCmd = &cobra.Command{
	Use:   "show <id|number>",
	Short: "Show one quote with per-line tax",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			q, err := s.Quotes.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			totals, err := s.Quotes.Preview(ctx, quotedomain.PreviewRequest{
				Jurisdiction: q.Jurisdiction,
				Lines:        lineInputs(q.Lines),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Quote  quotedomain.Quote  `json:"quote"`
					Totals quotedomain.Totals `json:"totals"`
				}{q, totals})
			}
			fmt.Fprintf(out, "%s  %s  [%s]\n", q.Number, q.DisplayName(), q.Status)
			if q.ClientEmail != "" || q.ClientPhone != "" {
				fmt.Fprintf(out, "%s  %s\n", orDash(q.ClientEmail), orDash(q.ClientPhone))
			}
			fmt.Fprintf(out, "jurisdiction %s, created %s\n\n", q.Jurisdiction, q.CreatedAt.Format("2006-01-02 15:04"))
			return printTotals(out, totals)
		})
	},
}

var quoteCreateFlags struct {
	clientID     string
	client       string
	email        string
	phone        string
	jurisdiction string
	notes        string
	lines        []string
}

var quoteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft quote",
	Example: `  salescloser quote create --client "Harbor Pumps" --jurisdiction MA \
    --line "product|Pump housing|2|50" --line "freight|Delivery|1|40"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := optionalID(quoteCreateFlags.clientID)
		if err != nil {
			return err
		}
		lines, err := parseLines(quoteCreateFlags.lines)
		if err != nil {
			return err
		}
		req := quotedomain.CreateQuoteRequest{
			ClientID:     clientID,
			ClientName:   quoteCreateFlags.client,
			ClientEmail:  quoteCreateFlags.email,
			ClientPhone:  quoteCreateFlags.phone,
			Jurisdiction: quoteCreateFlags.jurisdiction,
			Notes:        quoteCreateFlags.notes,
			Lines:        lines,
		}
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			q, err := s.Quotes.Create(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), q)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s for %s: %s (tax %s)\n", q.Number, q.DisplayName(), money(q.Total), money(q.Tax))
			return nil
		})
	},
}

var quotePreviewFlags struct {
	jurisdiction string
	lines        []string
}

var quotePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Price lines without saving a quote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := parseLines(quotePreviewFlags.lines)
		if err != nil {
			return err
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			totals, err := s.Quotes.Preview(ctx, quotedomain.PreviewRequest{
				Jurisdiction: quotePreviewFlags.jurisdiction,
				Lines:        lines,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), totals)
			}
			return printTotals(cmd.OutOrStdout(), totals)
		})
	},
}

var quoteStatusCmd = &cobra.Command{
	Use:   "status <id|number> <draft|sent|won|lost>",
	Short: "Change a quote's status and move its deal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := quotedomain.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			q, err := s.Quotes.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			q, err = s.Quotes.SetStatus(ctx, q.ID, status)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), q)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", q.Number, q.Status)
			return nil
		})
	},
}

var quoteDeleteCmd = &cobra.Command{
	Use:   "delete <id|number>",
	Short: "Delete a quote",
	Long: `Delete a quote and its lines.

The linked deal is kept or removed according to QUOTE_DELETE_POLICY
(orphan or cascade).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			q, err := s.Quotes.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if err := s.Quotes.Delete(ctx, q.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (deal policy %s)\n", q.Number, s.Cfg.QuoteDeletePolicy)
			return nil
		})
	},
}

func init() {
	quoteListCmd.Flags().StringVar(&quoteListFlags.status, "status", "", "Only quotes with this status")
	quoteListCmd.Flags().StringVarP(&quoteListFlags.search, "search", "s", "", "Match number or client name")
	quoteListCmd.Flags().IntVar(&quoteListFlags.limit, "limit", 0, "Maximum number of quotes")

	quoteCreateCmd.Flags().StringVar(&quoteCreateFlags.clientID, "client-id", "", "Copy contact details from a client record")
	quoteCreateCmd.Flags().StringVar(&quoteCreateFlags.client, "client", "", "Client name")
	quoteCreateCmd.Flags().StringVar(&quoteCreateFlags.email, "email", "", "Client email")
	quoteCreateCmd.Flags().StringVar(&quoteCreateFlags.phone, "phone", "", "Client phone")
	quoteCreateCmd.Flags().StringVarP(&quoteCreateFlags.jurisdiction, "jurisdiction", "j", "", "Tax jurisdiction (default: client, then company home)")
	quoteCreateCmd.Flags().StringVar(&quoteCreateFlags.notes, "notes", "", "Free text notes")
	quoteCreateCmd.Flags().StringArrayVarP(&quoteCreateFlags.lines, "line", "l", nil, "Line item, repeatable")

	quotePreviewCmd.Flags().StringVarP(&quotePreviewFlags.jurisdiction, "jurisdiction", "j", "", "Tax jurisdiction")
	quotePreviewCmd.Flags().StringArrayVarP(&quotePreviewFlags.lines, "line", "l", nil, "Line item, repeatable")

	quoteCmd.AddCommand(quoteListCmd)
	quoteCmd.AddCommand(quoteShowCmd)
	quoteCmd.AddCommand(quoteCreateCmd)
	quoteCmd.AddCommand(quotePreviewCmd)
	quoteCmd.AddCommand(quoteStatusCmd)
	quoteCmd.AddCommand(quoteDeleteCmd)
}

func lineInputs(lines []quotedomain.Line) []quotedomain.LineInput {
	out := make([]quotedomain.LineInput, len(lines))
	for i, l := range lines {
		out[i] = quotedomain.LineInput{
			ID:          l.ID,
			Category:    string(l.Category),
			Description: l.Description,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return out
}

func printTotals(w io.Writer, totals quotedomain.Totals) error {
	tw := newTable(w, "#", "CATEGORY", "DESCRIPTION", "QTY", "UNIT PRICE", "SUBTOTAL", "TAX", "TOTAL")
	for i, l := range totals.Lines {
		row(tw, i+1, l.Line.Category, orDash(l.Line.Description), l.Line.Quantity.String(),
			money(l.Line.UnitPrice), money(l.Subtotal), money(l.Tax.TaxAmount), money(l.Total))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	tax := money(totals.Tax)
	if !totals.TaxDataAvailable {
		tax = "n/a (no tax data)"
	}
	fmt.Fprintf(w, "\nsubtotal %s\ntax      %s\ntotal    %s\n", money(totals.Subtotal), tax, money(totals.Total))
	return nil
}
