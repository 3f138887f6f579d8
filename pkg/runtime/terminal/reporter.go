package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

const summaryTemplate = `
{{.ReportName}} ({{.ReportPeriod}})
Period: {{.PeriodStart.Format "2006-01-02"}} to {{.PeriodEnd.Format "2006-01-02"}}
Overall Score: {{printf "%.1f" .OverallScore}} ({{.Rating}}){{if .TrendDirection}}, trend {{.TrendDirection}}{{end}}

Policies: {{.Policies.Published}}/{{.Policies.Total}} published, {{printf "%.1f" .Policies.AcknowledgmentRate}}% acknowledged
Controls: {{.Controls.Implemented}}/{{.Controls.Total}} implemented, {{.Controls.Partial}} partial
Assets:   {{.Assets.Compliant}}/{{.Assets.Total}} compliant
Gaps:     {{.CriticalGaps}} critical, {{.MediumGaps}} medium, {{.LowGaps}} low

{{.ExecutiveSummary}}
{{if .KeyFindings}}
=== Key Findings ===
{{range .KeyFindings}}- {{.}}
{{end}}{{end}}{{if .Recommendations}}
=== Recommendations ===
{{range .Recommendations}}- {{.}}
{{end}}{{end}}`

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.ComplianceReport) error {
	t, err := template.New("report").Parse(summaryTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
