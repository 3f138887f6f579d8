package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

type TableConfig struct {
	NameWidth     int
	CountWidth    int
	ScoreWidth    int
	RatingWidth   int
	SeverityWidth int
	GapWidth      int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:     40,
		CountWidth:    11,
		ScoreWidth:    7,
		RatingWidth:   10,
		SeverityWidth: 8,
		GapWidth:      80,
	}
}

// Reporter renders the domain breakdown and gap list of a report as tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(report *domain.ComplianceReport) error {
	cfg := c.config
	funcMap := template.FuncMap{
		"domainRow": func(name string, controls, implemented, score, rating any) string {
			return fmt.Sprintf("| %-*s | %*v | %*v | %*v | %-*v |",
				cfg.NameWidth, truncate(name, cfg.NameWidth),
				cfg.CountWidth, controls,
				cfg.CountWidth, implemented,
				cfg.ScoreWidth, score,
				cfg.RatingWidth, rating)
		},
		"domainSeparator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", cfg.NameWidth+2),
				strings.Repeat("-", cfg.CountWidth+2),
				strings.Repeat("-", cfg.CountWidth+2),
				strings.Repeat("-", cfg.ScoreWidth+2),
				strings.Repeat("-", cfg.RatingWidth+2))
		},
		"gapRow": func(severity any, description string) string {
			return fmt.Sprintf("| %-*v | %-*s |",
				cfg.SeverityWidth, severity,
				cfg.GapWidth, truncate(description, cfg.GapWidth))
		},
		"gapSeparator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", cfg.SeverityWidth+2),
				strings.Repeat("-", cfg.GapWidth+2))
		},
		"score": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
	}

	tmpl := `
{{.ReportName}}

Active Period: {{.PeriodStart.Format "2006-01-02"}} to {{.PeriodEnd.Format "2006-01-02"}}
Overall Score: {{score .OverallScore}} ({{.Rating}})

=== Domains ===
{{domainSeparator}}
{{domainRow "Domain" "Controls" "Implemented" "Score" "Rating"}}
{{domainSeparator}}
{{range .DomainBreakdown}}{{domainRow .DomainName .Controls .Implemented (score .Score) .Rating}}
{{end}}{{domainSeparator}}
{{if .GapDetails}}
=== Gaps ===
{{gapSeparator}}
{{gapRow "Severity" "Description"}}
{{gapSeparator}}
{{range .GapDetails}}{{gapRow .Severity .Description}}
{{end}}{{gapSeparator}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
