package terminal

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/scheduler"
)

func (cli *CLI) newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compliance reporting",
	}
	cmd.AddCommand(cli.newReportGenerateCmd())
	return cmd
}

func (cli *CLI) newReportGenerateCmd() *cobra.Command {
	var (
		name   string
		period string
		from, to string
		table bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a compliance report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := domain.GenerateReportInput{
				Name:      name,
				Period:    domain.ReportPeriod(period),
				CreatedBy: "cli",
			}
			in.PeriodStart, in.PeriodEnd = scheduler.TrailingWindow(in.Period, time.Now())

			start, err := parseDate(from)
			if err != nil {
				return err
			}
			end, err := parseDate(to)
			if err != nil {
				return err
			}
			if start != nil || end != nil {
				if start == nil || end == nil {
					return fmt.Errorf("--from and --to must be set together")
				}
				in.Period = domain.PeriodCustom
				in.PeriodStart, in.PeriodEnd = *start, *end
			}

			ctx := cli.context(cmd)
			a, err := cli.openApp(ctx)
			if err != nil {
				return err
			}
			defer cli.closeApp(a)

			report, err := a.Reports.Generate(ctx, in)
			if err != nil {
				return err
			}
			if table {
				return cli.table.Handle(report)
			}
			return cli.reporter.Handle(report)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Report name, generated when empty")
	cmd.Flags().StringVar(&period, "period", string(domain.PeriodMonthly), "weekly, monthly, quarterly or annual")
	cmd.Flags().StringVar(&from, "from", "", "Custom period start, requires --to")
	cmd.Flags().StringVar(&to, "to", "", "Custom period end, requires --from")
	cmd.Flags().BoolVar(&table, "table", false, "Print the domain breakdown as a table")
	return cmd
}
