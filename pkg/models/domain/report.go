package domain

import "time"

type ReportPeriod string

const (
	PeriodWeekly    ReportPeriod = "weekly"
	PeriodMonthly   ReportPeriod = "monthly"
	PeriodQuarterly ReportPeriod = "quarterly"
	PeriodAnnual    ReportPeriod = "annual"
	PeriodCustom    ReportPeriod = "custom"
)

// Window returns the period ending at end.
func (p ReportPeriod) Window(end time.Time) (time.Time, time.Time) {
	switch p {
	case PeriodWeekly:
		return end.AddDate(0, 0, -7), end
	case PeriodQuarterly:
		return end.AddDate(0, -3, 0), end
	case PeriodAnnual:
		return end.AddDate(-1, 0, 0), end
	default:
		return end.AddDate(0, -1, 0), end
	}
}

type ComplianceRating string

const (
	RatingExcellent ComplianceRating = "excellent"
	RatingGood      ComplianceRating = "good"
	RatingFair      ComplianceRating = "fair"
	RatingPoor      ComplianceRating = "poor"
)

// RatingFor maps a 0..100 score onto a rating band.
func RatingFor(score float64) ComplianceRating {
	switch {
	case score >= 85:
		return RatingExcellent
	case score >= 70:
		return RatingGood
	case score >= 55:
		return RatingFair
	default:
		return RatingPoor
	}
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

type GapSeverity string

const (
	GapCritical GapSeverity = "critical"
	GapMedium   GapSeverity = "medium"
	GapLow      GapSeverity = "low"
)

type Gap struct {
	Area        string
	Severity    GapSeverity
	Description string
}

type TrendPoint struct {
	Date  time.Time
	Score float64
}

type DomainScore struct {
	DomainID    string
	DomainName  string
	Controls    int
	Mappings    int
	Implemented int
	Score       float64
	Rating      ComplianceRating
}

type PolicyMetrics struct {
	Total              int
	Published          int
	Acknowledged       int
	AcknowledgmentRate float64
	Score              float64
}

type ControlMetrics struct {
	Total                int
	Implemented          int
	Partial              int
	NotImplemented       int
	AverageEffectiveness float64
	Score                float64
}

type AssetMetrics struct {
	Total      int
	Compliant  int
	Percentage float64
	Score      float64
}

type ComplianceReport struct {
	ID                       string
	ReportName               string
	ReportPeriod             ReportPeriod
	PeriodStart              time.Time
	PeriodEnd                time.Time
	OverallScore             float64
	Rating                   ComplianceRating
	Policies                 PolicyMetrics
	Controls                 ControlMetrics
	Assets                   AssetMetrics
	CriticalGaps             int
	MediumGaps               int
	LowGaps                  int
	GapDetails               []Gap
	DomainBreakdown          []DomainScore
	Trend                    []TrendPoint
	ProjectedScore           float64
	ProjectedDaysToExcellent int
	TrendDirection           TrendDirection
	ExecutiveSummary         string
	KeyFindings              []string
	Recommendations          []string
	IsFinal                  bool
	IsArchived               bool
	CreatedBy                string
	CreatedAt                time.Time
	GeneratedAt              time.Time
}

type ReportFilter struct {
	Period    ReportPeriod
	StartDate *time.Time
	EndDate   *time.Time
	Rating    ComplianceRating
	Page      Page
}

type GenerateReportInput struct {
	Name        string
	Period      ReportPeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedBy   string
}

// MappingStatus is one control-asset mapping as seen by reporting.
type MappingStatus struct {
	ControlID            string
	AssetType            AssetType
	AssetID              string
	ImplementationStatus ImplementationStatus
	EffectivenessScore   *float64
}

type PolicyCounts struct {
	Total        int
	Published    int
	Acknowledged int
}

type DomainCounts struct {
	DomainID    string
	DomainName  string
	Controls    int
	Mappings    int
	Implemented int
	InProgress  int
}
