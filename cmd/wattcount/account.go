package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mmynk/wattcount/internal/middleware"
	"github.com/mmynk/wattcount/internal/models"
)

func registrationFlags(cmd *cobra.Command, reg *models.Registration) {
	cmd.Flags().StringVar(&reg.Username, "username", "", "login name")
	cmd.Flags().StringVar(&reg.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&reg.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
}

func (c *cli) registerCommand() *cobra.Command {
	var reg models.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a primary account and its group code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				s, err := c.app.auth.Register(ctx, reg)
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			})
		},
	}
	registrationFlags(cmd, &reg)
	return cmd
}

func (c *cli) connectCommand() *cobra.Command {
	var reg models.CodeRegistration
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Create a member account by joining a group with its code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				s, err := c.app.auth.ConnectWithCode(ctx, reg)
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			})
		},
	}
	registrationFlags(cmd, &reg.Registration)
	cmd.Flags().StringVar(&reg.Code, "code", "", "group code shared by the primary user")
	return cmd
}

func (c *cli) loginCommand() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				s, err := c.app.auth.Login(ctx, username, password)
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, c.app.auth.Logout)
		},
	}
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				p, err := c.app.auth.GetProfile(ctx, middleware.GetUserID(ctx))
				if err != nil {
					return err
				}
				return printJSON(cmd, p)
			}, c.signedIn())
		},
	}
}
