package terminal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/grc-admin/pkg/services/bulkdata"
)

func (cli *CLI) newImportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <controls|domains|obligations> <file>",
		Short: "Load reference data from a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := bulkdata.ParseResource(args[0])
			if err != nil {
				return err
			}
			f, err := bulkdata.ParseFormat(formatFor(format, args[1]))
			if err != nil {
				return err
			}
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer file.Close()

			ctx := cli.context(cmd)
			a, err := cli.openApp(ctx)
			if err != nil {
				return err
			}
			defer cli.closeApp(a)

			res, err := a.BulkData.Import(ctx, resource, f, file, "cli")
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "created %d, skipped %d\n", res.Created, res.Skipped)
			for _, rowErr := range res.Errors {
				fmt.Fprintf(cli.out, "  row %d: %s\n", rowErr.Row, rowErr.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, yaml or csv, detected from the file extension when empty")
	return cmd
}

func (cli *CLI) newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export <controls|domains|obligations>",
		Short: "Dump reference data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := bulkdata.ParseResource(args[0])
			if err != nil {
				return err
			}
			f, err := bulkdata.ParseFormat(formatFor(format, out))
			if err != nil {
				return err
			}

			ctx := cli.context(cmd)
			a, err := cli.openApp(ctx)
			if err != nil {
				return err
			}
			defer cli.closeApp(a)

			w, closeFn, err := cli.output(out)
			if err != nil {
				return err
			}
			defer closeFn()
			return a.BulkData.Export(ctx, resource, f, w)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, yaml or csv, detected from --out when empty")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty")
	return cmd
}

func formatFor(flag, path string) string {
	if flag != "" {
		return flag
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
