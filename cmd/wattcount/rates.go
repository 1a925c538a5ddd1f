package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mmynk/wattcount/internal/models"
)

func (c *cli) ratesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Manage the price per kWh",
	}

	var price, from, to string
	set := &cobra.Command{
		Use:   "set",
		Short: "Create a rate and make it the only active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseDecimal("price", price)
			if err != nil {
				return err
			}
			start, err := parseOptionalDate("from", from)
			if err != nil {
				return err
			}
			rate := models.Rate{PricePerKWh: p, EffectiveFrom: start}
			if to != "" {
				end, err := parseOptionalDate("to", to)
				if err != nil {
					return err
				}
				rate.EffectiveTo = &end
			}
			return c.run(cmd, func(ctx context.Context) error {
				created, err := c.app.repos.Rates.Create(ctx, rate)
				if err != nil {
					return err
				}
				return printJSON(cmd, created)
			}, c.primaryOnly()...)
		},
	}
	set.Flags().StringVar(&price, "price", "", "price per kWh")
	set.Flags().StringVar(&from, "from", "", "first day the rate applies, YYYY-MM-DD (defaults to today)")
	set.Flags().StringVar(&to, "to", "", "last day the rate applies, YYYY-MM-DD")
	_ = set.MarkFlagRequired("price")

	current := &cobra.Command{
		Use:   "current",
		Short: "Show the rate that applies today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				rate, err := c.app.repos.Rates.GetCurrent(ctx)
				if err != nil {
					return err
				}
				if rate == nil {
					return models.ErrNoActiveRate
				}
				return printJSON(cmd, rate)
			}, c.signedIn())
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				rates, err := c.app.repos.Rates.GetAll(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, rates)
			}, c.signedIn())
		},
	}

	cmd.AddCommand(set, current, list)
	return cmd
}
