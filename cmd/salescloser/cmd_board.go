package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the deal pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			board, err := s.Pipeline.Board(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), board)
			}
			return printBoard(cmd.OutOrStdout(), board)
		})
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile every quote onto the board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			summary, err := s.Pipeline.SyncAll(ctx)
			if err != nil {
				return err
			}
			path := cmd.CommandPath()
			s.Batch.SetRecords(path, "quotes", summary.Quotes)
			s.Batch.SetRecords(path, "created", summary.Created)
			s.Batch.SetRecords(path, "moved", summary.Moved)
			s.Batch.SetRecords(path, "updated", summary.Updated)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d quotes: %d created, %d moved, %d updated, %d unchanged\n",
				summary.Quotes, summary.Created, summary.Moved, summary.Updated, summary.Unchanged)
			for _, id := range summary.Violations {
				fmt.Fprintf(out, "warning: quote %s is linked to more than one deal\n", id)
			}
			return nil
		})
	},
}

var dealCmd = &cobra.Command{
	Use:   "deal",
	Short: "Manage cards on the board",
}

var dealAddFlags struct {
	stage   string
	company string
	value   string
	note    string
}

var dealAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a deal that is not linked to a quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := pipelinedomain.AddDealRequest{
			Stage:   pipelinedomain.StageID(dealAddFlags.stage),
			Name:    args[0],
			Company: dealAddFlags.company,
			Note:    dealAddFlags.note,
		}
		if dealAddFlags.value != "" {
			v, err := parseAmount(dealAddFlags.value)
			if err != nil {
				return err
			}
			req.Value = v
		}
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			d, err := s.Pipeline.AddDeal(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added deal %s in %s\n", d.ID, d.Stage)
			return nil
		})
	},
}

var dealMoveCmd = &cobra.Command{
	Use:   "move <deal id> <stage>",
	Short: "Move a deal to another stage",
	Long: `Move a deal to another stage.

Stages: lead, quoted, sent, negotiate, won, lost. A deal linked to a quote is
moved back when its quote changes status.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		to := pipelinedomain.StageID(args[1])
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			board, err := s.Pipeline.Board(ctx)
			if err != nil {
				return err
			}
			current, ok := findDeal(board, id)
			if !ok {
				return pipelinedomain.ErrNotFound
			}
			d, err := s.Pipeline.MoveDeal(ctx, pipelinedomain.MoveDealRequest{ID: id, From: current.Stage, To: to})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", d.Name, current.Stage, d.Stage)
			return nil
		})
	},
}

var dealDeleteCmd = &cobra.Command{
	Use:   "delete <deal id>",
	Short: "Remove a deal from the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			board, err := s.Pipeline.Board(ctx)
			if err != nil {
				return err
			}
			current, ok := findDeal(board, id)
			if !ok {
				return pipelinedomain.ErrNotFound
			}
			if err := s.Pipeline.DeleteDeal(ctx, id, current.Stage); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted deal %s\n", id)
			return nil
		})
	},
}

func init() {
	dealAddCmd.Flags().StringVar(&dealAddFlags.stage, "stage", string(pipelinedomain.StageLead), "Stage to add the deal to")
	dealAddCmd.Flags().StringVar(&dealAddFlags.company, "company", "", "Company")
	dealAddCmd.Flags().StringVar(&dealAddFlags.value, "value", "", "Deal value")
	dealAddCmd.Flags().StringVar(&dealAddFlags.note, "note", "", "Note")

	dealCmd.AddCommand(dealAddCmd)
	dealCmd.AddCommand(dealMoveCmd)
	dealCmd.AddCommand(dealDeleteCmd)
}

func findDeal(board pipelinedomain.Board, id snowflake.ID) (pipelinedomain.Deal, bool) {
	for _, d := range board.Deals() {
		if d.ID == id {
			return d, true
		}
	}
	return pipelinedomain.Deal{}, false
}

func printBoard(w io.Writer, board pipelinedomain.Board) error {
	for _, col := range board.Columns {
		total := col.Total()
		fmt.Fprintf(w, "%s (%d, %s)\n", col.Stage.Label, len(col.Deals), money(total))
		if len(col.Deals) == 0 {
			continue
		}
		tw := newTable(w)
		for _, d := range col.Deals {
			row(tw, "  "+d.ID.String(), d.Name, orDash(d.QuoteNumber), money(d.Value), orDash(d.Note))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
