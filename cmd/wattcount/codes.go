package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/wattcount/internal/middleware"
)

func (c *cli) codesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Manage the group codes members join with",
	}

	var ttl time.Duration
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Create an extra group code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				gc, err := c.app.groups.GenerateCode(ctx, middleware.GetUserID(ctx), ttl)
				if err != nil {
					return err
				}
				return printJSON(cmd, gc)
			}, c.signedIn())
		},
	}
	generate.Flags().DurationVar(&ttl, "ttl", 0, "expire the code after this long (0 never expires)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your group codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				codes, err := c.app.groups.ListCodes(ctx, middleware.GetUserID(ctx))
				if err != nil {
					return err
				}
				return printJSON(cmd, codes)
			}, c.signedIn())
		},
	}

	del := &cobra.Command{
		Use:   "delete CODE",
		Short: "Delete one of your group codes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				return c.app.groups.DeleteCode(ctx, middleware.GetUserID(ctx), args[0])
			}, c.signedIn())
		},
	}

	members := &cobra.Command{
		Use:   "members",
		Short: "List the users that joined your group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				profiles, err := c.app.groups.Members(ctx, middleware.GetUserID(ctx))
				if err != nil {
					return err
				}
				return printJSON(cmd, profiles)
			}, c.signedIn())
		},
	}

	cmd.AddCommand(generate, list, del, members)
	return cmd
}
