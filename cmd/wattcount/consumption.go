package main

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/wattcount/internal/middleware"
	"github.com/mmynk/wattcount/internal/models"
)

func (c *cli) consumptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "consumption",
		Aliases: []string{"readings"},
		Short:   "Record and list meter readings",
	}

	var user, current, previous, date, notes string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a meter reading without billing it",
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
				if prev == nil {
					latest, err := c.app.repos.Consumption.GetLatestByUser(ctx, userID)
					if err != nil {
						return err
					}
					p := decimal.Zero
					if latest != nil {
						p = latest.CurrentReading
					}
					prev = &p
				}
				rec, err := c.app.repos.Consumption.Create(ctx, models.ConsumptionRecord{
					UserID:          userID,
					ReadingDate:     day,
					PreviousReading: *prev,
					CurrentReading:  cur,
					Notes:           notes,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, rec)
			}, c.signedIn())
		},
	}
	add.Flags().StringVar(&user, "user", "", "group member to record for (primary only)")
	add.Flags().StringVar(&current, "current", "", "current meter reading")
	add.Flags().StringVar(&previous, "previous", "", "previous meter reading (defaults to the latest stored reading)")
	add.Flags().StringVar(&date, "date", "", "reading date, YYYY-MM-DD (defaults to today)")
	add.Flags().StringVar(&notes, "notes", "", "free text")
	_ = add.MarkFlagRequired("current")

	var (
		group bool
		limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List your readings, latest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				userID := middleware.GetUserID(ctx)
				var (
					views []models.ConsumptionView
					err   error
				)
				if group {
					if middleware.GetRole(ctx) != models.RolePrimary {
						return models.ErrForbidden
					}
					views, err = c.app.repos.Consumption.GetAll(ctx, userID)
				} else {
					views, err = c.app.repos.Consumption.GetMy(ctx, userID, limit)
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
	list.Flags().BoolVar(&group, "group", false, "include your group members' readings, in storage order (primary only)")
	list.Flags().IntVar(&limit, "limit", 0, "show at most this many (0 shows all)")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a reading of your group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				rec, err := c.app.repos.Consumption.GetByID(ctx, args[0])
				if err != nil {
					return err
				}
				if _, err := c.targetUser(ctx, rec.UserID); err != nil {
					return err
				}
				return c.app.repos.Consumption.Delete(ctx, rec.ID)
			}, c.primaryOnly()...)
		},
	}

	cmd.AddCommand(add, list, del)
	return cmd
}
