package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/wattcount/internal/backup"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

func (c *cli) dataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Export and import the stored collections",
	}

	var out string
	var only []string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write collections to a JSON envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections, err := parseCollections(only)
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context) error {
				data, err := c.app.backup.Export(ctx, collections...)
				if err != nil {
					return err
				}
				return writeOutput(cmd, out, data)
			})
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "-", "output file (- for stdout)")
	export.Flags().StringSliceVar(&only, "only", nil, "collections to export (default all)")

	var merge bool
	imp := &cobra.Command{
		Use:   "import FILE",
		Short: "Load collections from a JSON envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collections, err := parseCollections(only)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return c.run(cmd, func(ctx context.Context) error {
				res, err := c.app.backup.Import(ctx, data, backup.ImportOptions{Collections: collections, Merge: merge})
				if err != nil {
					return err
				}
				return printJSON(cmd, countsByName(res))
			})
		},
	}
	imp.Flags().BoolVar(&merge, "merge", false, "keep stored records and add new ones instead of replacing")
	imp.Flags().StringSliceVar(&only, "only", nil, "collections to import (default all present)")

	var codesOut string
	exportCodes := &cobra.Command{
		Use:   "export-codes",
		Short: "Write only the group codes to a JSON envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context) error {
				data, err := c.app.backup.ExportCodes(ctx)
				if err != nil {
					return err
				}
				return writeOutput(cmd, codesOut, data)
			})
		},
	}
	exportCodes.Flags().StringVarP(&codesOut, "out", "o", "-", "output file (- for stdout)")

	var codesMerge bool
	importCodes := &cobra.Command{
		Use:   "import-codes FILE",
		Short: "Load only the group codes from a JSON envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return c.run(cmd, func(ctx context.Context) error {
				res, err := c.app.backup.ImportCodes(ctx, data, codesMerge)
				if err != nil {
					return err
				}
				return printJSON(cmd, countsByName(res))
			})
		},
	}
	importCodes.Flags().BoolVar(&codesMerge, "merge", false, "keep stored codes and add new ones instead of replacing")

	cmd.AddCommand(export, imp, exportCodes, importCodes)
	return cmd
}

func parseCollections(names []string) ([]storage.Collection, error) {
	var out []storage.Collection
	for _, n := range names {
		col, ok := storage.ParseCollection(strings.TrimSpace(n))
		if !ok {
			return nil, fmt.Errorf("%w: unknown collection %q", models.ErrValidation, n)
		}
		out = append(out, col)
	}
	return out, nil
}

func countsByName(res *backup.Result) map[string]int {
	out := make(map[string]int, len(res.Counts))
	for col, n := range res.Counts {
		out[col.Name()] = n
	}
	return out
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
