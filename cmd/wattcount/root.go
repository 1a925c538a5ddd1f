package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/wattcount/internal/config"
	"github.com/mmynk/wattcount/internal/middleware"
)

// cli carries state shared by every command of one invocation.
type cli struct {
	token string
	open  BackendOpener
	app   *app
}

func execute(ctx context.Context, args []string) error {
	return runCLI(ctx, args, openBackend, os.Stdout)
}

// runCLI runs one invocation with the given backend opener and output.
func runCLI(ctx context.Context, args []string, open BackendOpener, out io.Writer) error {
	c := &cli{open: open}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	err := root.ExecuteContext(ctx)
	if c.app != nil {
		err = errors.Join(err, c.app.Close())
	}
	return err
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wattcount",
		Short:         "Shared electricity billing for a household",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.app, err = newApp(cmd.Context(), cfg, c.open)
			return err
		},
	}
	root.PersistentFlags().StringVar(&c.token, "token", "", "session token (defaults to the stored session)")

	root.AddCommand(
		c.registerCommand(),
		c.connectCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.codesCommand(),
		c.consumptionCommand(),
		c.billsCommand(),
		c.ratesCommand(),
		c.dataCommand(),
	)
	return root
}

// run executes h with logging and the given interceptors.
func (c *cli) run(cmd *cobra.Command, h middleware.Handler, interceptors ...middleware.Interceptor) error {
	chain := append([]middleware.Interceptor{middleware.Logging(cmd.CommandPath())}, interceptors...)
	return middleware.Chain(h, chain...)(cmd.Context())
}

// signedIn requires a session.
func (c *cli) signedIn() middleware.Interceptor {
	return middleware.RequireAuth(c.app.auth, c.token)
}

// primaryOnly requires a session belonging to a primary user.
func (c *cli) primaryOnly() []middleware.Interceptor {
	return []middleware.Interceptor{c.signedIn(), middleware.RequirePrimary()}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
