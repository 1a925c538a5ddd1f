package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/wattcount/internal/middleware"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/report"
	"github.com/mmynk/wattcount/internal/service"
)

func (c *cli) billsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Create, list and pay bills",
	}
	cmd.AddCommand(
		c.billsCreateCommand(),
		c.billsListCommand(),
		c.billsShowCommand(),
		c.billsPayCommand(),
		c.billsDeleteCommand(),
		c.billsStatementCommand(),
	)
	return cmd
}

func (c *cli) billsCreateCommand() *cobra.Command {
	var user, cycle, current, previous, date, notes string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a meter reading and bill it at the current rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := parseDecimal("current", current)
			if err != nil {
				return err
			}
			prev, err := parseOptionalDecimal("previous", previous)
			if err != nil {
				return err
			}
			day, err := parseOptionalDate("date", date)
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context) error {
				userID, err := c.targetUser(ctx, user)
				if err != nil {
					return err
				}
				view, err := c.app.billing.CreateFromReading(ctx, service.Reading{
					UserID:          userID,
					BillingCycle:    cycle,
					ReadingDate:     day,
					PreviousReading: prev,
					CurrentReading:  cur,
					Notes:           notes,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, view)
			}, c.signedIn())
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "group member to bill (primary only)")
	cmd.Flags().StringVar(&cycle, "cycle", "", "billing cycle label (defaults to the reading's YYYY-MM)")
	cmd.Flags().StringVar(&current, "current", "", "current meter reading")
	cmd.Flags().StringVar(&previous, "previous", "", "previous meter reading (defaults to the latest stored reading)")
	cmd.Flags().StringVar(&date, "date", "", "reading date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&notes, "notes", "", "free text")
	_ = cmd.MarkFlagRequired("current")
	return cmd
}

func (c *cli) billsListCommand() *cobra.Command {
	var (
		cycle string
		mine  bool
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the bills you can see, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				userID := middleware.GetUserID(ctx)
				var (
					views []models.BillView
					err   error
				)
				switch {
				case mine:
					views, err = c.app.repos.Bills.GetMy(ctx, userID, limit)
				case cycle != "":
					views, err = c.billsOfCycle(ctx, cycle)
				default:
					views, err = c.visibleBills(ctx)
				}
				if err != nil {
					return err
				}
				if limit > 0 && len(views) > limit {
					views = views[:limit]
				}
				return printJSON(cmd, views)
			}, c.signedIn())
		},
	}
	cmd.Flags().StringVar(&cycle, "cycle", "", "only bills of this billing cycle")
	cmd.Flags().BoolVar(&mine, "mine", false, "use the per-user listing (a primary sees only its own bills)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many (0 shows all)")
	return cmd
}

func (c *cli) billsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a bill with its payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				view, err := c.findVisibleBill(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, view)
			}, c.signedIn())
		},
	}
}

func (c *cli) billsPayCommand() *cobra.Command {
	var amount, method, notes string
	cmd := &cobra.Command{
		Use:   "pay ID",
		Short: "Record a payment against a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context) error {
				if _, err := c.findVisibleBill(ctx, args[0]); err != nil {
					return err
				}
				view, err := c.app.billing.Pay(ctx, args[0], amt, method, notes)
				if err != nil {
					return err
				}
				return printJSON(cmd, view)
			}, c.signedIn())
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid")
	cmd.Flags().StringVar(&method, "method", "", "payment method, e.g. cash")
	cmd.Flags().StringVar(&notes, "notes", "", "free text")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) billsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a bill and its payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				if _, err := c.findVisibleBill(ctx, args[0]); err != nil {
					return err
				}
				return c.app.repos.Bills.Delete(ctx, args[0])
			}, c.primaryOnly()...)
		},
	}
}

func (c *cli) billsStatementCommand() *cobra.Command {
	var out, cycle string
	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Write the bills you can see to an xlsx statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				var (
					views []models.BillView
					err   error
				)
				if cycle != "" {
					views, err = c.billsOfCycle(ctx, cycle)
				} else {
					views, err = c.visibleBills(ctx)
				}
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				if err := report.WriteBillStatement(f, views); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bills to %s\n", len(views), out)
				return err
			}, c.signedIn())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "statement.xlsx", "output file")
	cmd.Flags().StringVar(&cycle, "cycle", "", "only bills of this billing cycle")
	return cmd
}
