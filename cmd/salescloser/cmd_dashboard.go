package main

import (
	"context"
	"fmt"

	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show open quotes, won revenue and recent activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{}, func(ctx context.Context, s services) error {
			snap, err := s.Dashboard.Snapshot(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, snap)
			}
			fmt.Fprintln(out, snap.CompanyName)
			tw := newTable(out)
			row(tw, "open quotes", snap.OpenQuotes)
			row(tw, "clients", snap.TotalClients)
			row(tw, "deals won", snap.DealsWon)
			row(tw, "revenue won", money(snap.RevenueWon))
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(snap.Recent) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nrecent quotes")
			tw = newTable(out, "NUMBER", "CLIENT", "STATUS", "TOTAL", "CREATED")
			for _, q := range snap.Recent {
				row(tw, q.Number, orDash(q.ClientName), q.Status, money(q.Total), q.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		})
	},
}

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show or change the company settings",
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the company settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			settings, err := s.Company.Get(ctx)
			if err != nil {
				return err
			}
			return printCompany(cmd, settings)
		})
	},
}

var companySetFlags struct {
	name, address, phone, email, website, home string
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change company settings; only the given flags are written",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req companydomain.UpdateSettingsRequest
		flags := cmd.Flags()
		if flags.Changed("name") {
			req.Name = &companySetFlags.name
		}
		if flags.Changed("address") {
			req.Address = &companySetFlags.address
		}
		if flags.Changed("phone") {
			req.Phone = &companySetFlags.phone
		}
		if flags.Changed("email") {
			req.Email = &companySetFlags.email
		}
		if flags.Changed("website") {
			req.Website = &companySetFlags.website
		}
		if flags.Changed("home-jurisdiction") {
			req.HomeJurisdiction = &companySetFlags.home
		}
		return run(cmd, runOptions{skipStartupSync: true}, func(ctx context.Context, s services) error {
			settings, err := s.Company.Update(ctx, req)
			if err != nil {
				return err
			}
			return printCompany(cmd, settings)
		})
	},
}

func init() {
	f := companySetCmd.Flags()
	f.StringVar(&companySetFlags.name, "name", "", "Company name")
	f.StringVar(&companySetFlags.address, "address", "", "Address")
	f.StringVar(&companySetFlags.phone, "phone", "", "Phone")
	f.StringVar(&companySetFlags.email, "email", "", "Email")
	f.StringVar(&companySetFlags.website, "website", "", "Website")
	f.StringVar(&companySetFlags.home, "home-jurisdiction", "", "Default tax jurisdiction for new quotes")

	companyCmd.AddCommand(companyShowCmd)
	companyCmd.AddCommand(companySetCmd)
}

func printCompany(cmd *cobra.Command, settings companydomain.Settings) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, settings)
	}
	tw := newTable(out)
	row(tw, "name", settings.Name)
	row(tw, "address", orDash(settings.Address))
	row(tw, "phone", orDash(settings.Phone))
	row(tw, "email", orDash(settings.Email))
	row(tw, "website", orDash(settings.Website))
	row(tw, "home jurisdiction", settings.HomeJurisdiction)
	return tw.Flush()
}
