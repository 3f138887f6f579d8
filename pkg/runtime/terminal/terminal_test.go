package terminal

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/runtime/terminal/export"
)

const testSecret = "cli-secret"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GRC_AUTH_JWT_SECRET", testSecret)
	t.Setenv("GRC_DATABASE_DSN", filepath.Join(t.TempDir(), "grc.db"))

	var out bytes.Buffer
	cli := NewCLI(Options{Output: &out, Version: "test"})
	cli.rootCmd.SetArgs(args)
	err := cli.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	out, err := run(t, "token", "--user", "u-1", "--email", "a@example.com", "--roles", "admin,auditor")
	require.NoError(t, err)

	tokens, err := auth.NewTokens(testSecret, "grc-admin", time.Hour)
	require.NoError(t, err)
	user, err := tokens.Verify(strings.TrimSpace(out))
	require.NoError(t, err)

	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, []string{auth.RoleAdmin, auth.RoleAuditor}, user.Roles)
}

func TestMigrateCmd(t *testing.T) {
	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema applied (sqlite)\n", out)
}

func TestConfigValidationFails(t *testing.T) {
	t.Setenv("GRC_LOG_LEVEL", "loud")
	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestImportCmd_UnknownResource(t *testing.T) {
	_, err := run(t, "import", "vehicles", "fleet.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *time.Time
		wantErr bool
	}{
		{name: "empty", raw: ""},
		{name: "date only", raw: "2024-03-01", want: ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", raw: "2024-03-01T10:00:00Z", want: ptr(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))},
		{name: "garbage", raw: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, "csv", formatFor("csv", "x.yaml"))
	assert.Equal(t, "yaml", formatFor("", "controls.YAML"))
	assert.Equal(t, "", formatFor("", ""))
}

func sampleReport() *domain.ComplianceReport {
	return &domain.ComplianceReport{
		ReportName:       "Monthly Compliance Report",
		ReportPeriod:     domain.PeriodMonthly,
		PeriodStart:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		OverallScore:     72.44,
		Rating:           domain.RatingFair,
		TrendDirection:   domain.TrendImproving,
		Policies:         domain.PolicyMetrics{Total: 4, Published: 3, AcknowledgmentRate: 50},
		Controls:         domain.ControlMetrics{Total: 10, Implemented: 6, Partial: 2},
		CriticalGaps:     1,
		ExecutiveSummary: "Posture is fair.",
		KeyFindings:      []string{"6 of 10 controls implemented"},
		GapDetails: []domain.Gap{
			{Area: "controls", Severity: "critical", Description: "4 controls are not implemented"},
		},
		DomainBreakdown: []domain.DomainScore{
			{DomainName: "Access Control", Controls: 5, Implemented: 4, Score: 80, Rating: domain.RatingGood},
		},
	}
}

func TestReporter_Handle(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReporter(&out).Handle(sampleReport()))

	text := out.String()
	assert.Contains(t, text, "Monthly Compliance Report (monthly)")
	assert.Contains(t, text, "Period: 2024-02-01 to 2024-03-01")
	assert.Contains(t, text, "Overall Score: 72.4 (fair), trend improving")
	assert.Contains(t, text, "Controls: 6/10 implemented, 2 partial")
	assert.Contains(t, text, "- 6 of 10 controls implemented")
	assert.NotContains(t, text, "Recommendations")
}

func TestTableReporter_Handle(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, export.NewReporter(&out).Handle(sampleReport()))

	text := out.String()
	assert.Contains(t, text, "| Access Control")
	assert.Contains(t, text, "80.0")
	assert.Contains(t, text, "| critical | 4 controls are not implemented")
}

func ptr[T any](v T) *T { return &v }
