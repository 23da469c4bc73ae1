package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	backupdomain "github.com/smallbiznis/salescloser/internal/backup/domain"
	backupservice "github.com/smallbiznis/salescloser/internal/backup/service"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and restore a full data snapshot",
}

var backupExportFlags struct {
	out      string
	dir      string
	compress bool
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every record to a JSON snapshot",
	Long: `Write company settings, clients, quotes, deals and purchase orders to a
JSON snapshot. With --compress the snapshot is snappy-compressed (.json.sz).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			path := backupExportFlags.out
			if path == "" {
				settings, err := s.Company.Get(ctx)
				if err != nil {
					return err
				}
				path = filepath.Join(backupExportFlags.dir, backupservice.FileName(settings.Name, time.Now().UTC(), backupExportFlags.compress))
			}

			record, err := exportTo(ctx, s.Backup, path, backupExportFlags.compress)
			if err != nil {
				return err
			}
			s.Batch.SetRecords(cmd.CommandPath(), "bytes", int(record.SizeBytes))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, record.SizeBytes)
			return nil
		})
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with a snapshot",
	Long: `Replace all data with the contents of a snapshot.

The snapshot is validated before anything is touched; the replacement runs in
one transaction and the board is reconciled afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := s.Backup.Import(ctx, f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			path := cmd.CommandPath()
			s.Batch.SetRecords(path, "clients", res.Clients)
			s.Batch.SetRecords(path, "quotes", res.Quotes)
			s.Batch.SetRecords(path, "deals", res.Deals)
			s.Batch.SetRecords(path, "purchase_orders", res.PurchaseOrders)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored snapshot %s: %d clients, %d quotes, %d deals, %d purchase orders\n",
				res.SnapshotID, res.Clients, res.Quotes, res.Deals, res.PurchaseOrders)
			fmt.Fprintf(cmd.OutOrStdout(), "board sync: %d created, %d moved, %d updated\n",
				res.Sync.Created, res.Sync.Moved, res.Sync.Updated)
			return nil
		})
	},
}

var backupHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent exports and imports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			records, err := s.Backup.Records(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "WHEN", "METHOD", "FILE", "BYTES", "COMPRESSED")
			for _, r := range records {
				row(tw, r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Method, r.FileName, r.SizeBytes, yesNo(r.Compressed))
			}
			return tw.Flush()
		})
	},
}

func init() {
	backupExportCmd.Flags().StringVarP(&backupExportFlags.out, "out", "o", "", "Output file (default: generated name in --dir)")
	backupExportCmd.Flags().StringVar(&backupExportFlags.dir, "dir", ".", "Directory for the generated file name")
	backupExportCmd.Flags().BoolVar(&backupExportFlags.compress, "compress", false, "Snappy-compress the snapshot")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	backupCmd.AddCommand(backupHistoryCmd)
}

// exportTo writes the snapshot next to path and renames it into place, so a
// failed export never leaves a truncated file behind.
func exportTo(ctx context.Context, svc backupdomain.Service, path string, compress bool) (backupdomain.Record, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".salescloser-export-*")
	if err != nil {
		return backupdomain.Record{}, err
	}
	defer os.Remove(tmp.Name())

	record, err := svc.Export(ctx, tmp, backupdomain.ExportOptions{
		Compress: compress,
		FileName: filepath.Base(path),
	})
	if err != nil {
		tmp.Close()
		return backupdomain.Record{}, err
	}
	if err := tmp.Close(); err != nil {
		return backupdomain.Record{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return backupdomain.Record{}, fmt.Errorf("move snapshot into place: %w", err)
	}
	return record, nil
}
