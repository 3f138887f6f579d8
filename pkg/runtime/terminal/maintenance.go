package terminal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

func (cli *CLI) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := sqldb.NewDB(cli.context(cmd), sqldb.Settings{
				Driver:       cli.cfg.Database.Driver,
				DSN:          cli.cfg.Database.DSN,
				MaxOpenConns: cli.cfg.Database.MaxOpenConns,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = fmt.Fprintf(cli.out, "schema applied (%s)\n", db.Dialect())
			return err
		},
	}
}

func (cli *CLI) newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		roles  []string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			tokens, err := auth.NewTokens(cli.cfg.Auth.JWTSecret, cli.cfg.Auth.Issuer, cli.cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			if userID == "" {
				userID = uuid.NewString()
			}
			token, err := tokens.Issue(auth.User{ID: userID, Email: email, Roles: roles}, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cli.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Subject user id (random when empty)")
	cmd.Flags().StringVar(&email, "email", "", "User email claim")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{auth.RoleUser}, "Comma separated roles")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, defaults to auth.token_ttl")
	return cmd
}

func (cli *CLI) newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit log maintenance",
	}
	cmd.AddCommand(cli.newAuditCleanupCmd())
	cmd.AddCommand(cli.newAuditExportCmd())
	return cmd
}

func (cli *CLI) newAuditCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Archive and delete audit entries older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				days = cli.cfg.Audit.RetentionDays
			}
			ctx := cli.context(cmd)
			a, err := cli.openApp(ctx)
			if err != nil {
				return err
			}
			defer cli.closeApp(a)

			deleted, err := a.Audit.Cleanup(ctx, days)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cli.out, "deleted %d audit entries older than %d days\n", deleted, days)
			return err
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention in days, defaults to audit.retention_days")
	return cmd
}

func (cli *CLI) newAuditExportCmd() *cobra.Command {
	var (
		out string
		from, to   string
		entityType string
		userID     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the audit log as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.AuditFilter{EntityType: entityType, UserID: userID}
			var err error
			if filter.From, err = parseDate(from); err != nil {
				return err
			}
			if filter.To, err = parseDate(to); err != nil {
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
			return a.Audit.ExportCSV(ctx, filter, w)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty")
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&entityType, "entity-type", "", "Only entries for this entity type")
	cmd.Flags().StringVar(&userID, "user", "", "Only entries by this user")
	return cmd
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", raw)
}

// output opens path for writing, or returns the CLI output for "" and "-".
func (cli *CLI) output(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cli.out, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			cli.logger.Error().Err(err).Str("path", path).Msg("failed to close output file")
		}
	}, nil
}
