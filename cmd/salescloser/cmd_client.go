package main

import (
	"context"
	"fmt"
	"strings"

	clientdomain "github.com/smallbiznis/salescloser/internal/client/domain"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage client records",
}

var clientListFlags struct {
	search string
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			clients, err := s.Clients.List(ctx, clientListFlags.search)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), clients)
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "COMPANY", "EMAIL", "PHONE", "JURISDICTION")
			for _, c := range clients {
				row(tw, c.ID, c.Name, orDash(c.Company), orDash(c.Email), orDash(c.Phone), orDash(c.Jurisdiction))
			}
			return tw.Flush()
		})
	},
}

var clientAddFlags struct {
	company      string
	email        string
	phone        string
	address      string
	jurisdiction string
	notes        string
	meta         []string
}

var clientAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := parseMetadata(clientAddFlags.meta)
		if err != nil {
			return err
		}
		req := clientdomain.CreateClientRequest{
			Name:         args[0],
			Company:      clientAddFlags.company,
			Email:        clientAddFlags.email,
			Phone:        clientAddFlags.phone,
			Address:      clientAddFlags.address,
			Jurisdiction: clientAddFlags.jurisdiction,
			Notes:        clientAddFlags.notes,
			Metadata:     meta,
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			c, err := s.Clients.Create(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added client %s (%s)\n", c.Name, c.ID)
			return nil
		})
	},
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client; quotes keep their copied contact details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			if err := s.Clients.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted client %s\n", id)
			return nil
		})
	},
}

func init() {
	clientListCmd.Flags().StringVarP(&clientListFlags.search, "search", "s", "", "Match name, company or email")

	clientAddCmd.Flags().StringVar(&clientAddFlags.company, "company", "", "Company")
	clientAddCmd.Flags().StringVar(&clientAddFlags.email, "email", "", "Email")
	clientAddCmd.Flags().StringVar(&clientAddFlags.phone, "phone", "", "Phone")
	clientAddCmd.Flags().StringVar(&clientAddFlags.address, "address", "", "Postal address")
	clientAddCmd.Flags().StringVarP(&clientAddFlags.jurisdiction, "jurisdiction", "j", "", "Tax jurisdiction code")
	clientAddCmd.Flags().StringVar(&clientAddFlags.notes, "notes", "", "Free text notes")
	clientAddCmd.Flags().StringArrayVar(&clientAddFlags.meta, "meta", nil, "key=value metadata, repeatable")

	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientDeleteCmd)
}

func parseMetadata(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("metadata %q: want key=value", p)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}
