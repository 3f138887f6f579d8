package api

import "time"

type GenerateReportRequest struct {
	ReportName   string    `json:"report_name" validate:"max=255"`
	ReportPeriod string    `json:"report_period" validate:"omitempty,oneof=weekly monthly quarterly annual custom"`
	PeriodStart  time.Time `json:"period_start_date" validate:"required"`
	PeriodEnd    time.Time `json:"period_end_date" validate:"required"`
}

type Gap struct {
	Area        string `json:"area"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type TrendPoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

type DomainScore struct {
	DomainID    string  `json:"domain_id,omitempty"`
	DomainName  string  `json:"domain_name"`
	Controls    int     `json:"controls"`
	Mappings    int     `json:"mappings"`
	Implemented int     `json:"implemented"`
	Score       float64 `json:"score"`
	Rating      string  `json:"rating"`
}

type ComplianceReport struct {
	ID                          string        `json:"id"`
	ReportName                  string        `json:"report_name"`
	ReportPeriod                string        `json:"report_period"`
	PeriodStartDate             time.Time     `json:"period_start_date"`
	PeriodEndDate               time.Time     `json:"period_end_date"`
	OverallComplianceScore      float64       `json:"overall_compliance_score"`
	OverallComplianceRating     string        `json:"overall_compliance_rating"`
	PoliciesScore               float64       `json:"policies_score"`
	ControlsScore               float64       `json:"controls_score"`
	AssetsScore                 float64       `json:"assets_score"`
	TotalPolicies               int           `json:"total_policies"`
	PublishedPolicies           int           `json:"published_policies"`
	AcknowledgedPolicies        int           `json:"acknowledged_policies"`
	PolicyAcknowledgmentRate    float64       `json:"policy_acknowledgment_rate"`
	TotalControls               int           `json:"total_controls"`
	ImplementedControls         int           `json:"implemented_controls"`
	PartialControls             int           `json:"partial_controls"`
	NotImplementedControls      int           `json:"not_implemented_controls"`
	AverageControlEffectiveness float64       `json:"average_control_effectiveness"`
	TotalAssets                 int           `json:"total_assets"`
	CompliantAssets             int           `json:"compliant_assets"`
	AssetCompliancePercentage   float64       `json:"asset_compliance_percentage"`
	CriticalGaps                int           `json:"critical_gaps"`
	MediumGaps                  int           `json:"medium_gaps"`
	LowGaps                     int           `json:"low_gaps"`
	GapDetails                  []Gap         `json:"gap_details"`
	DomainBreakdown             []DomainScore `json:"domain_breakdown"`
	ComplianceTrend             []TrendPoint  `json:"compliance_trend"`
	ProjectedScoreNextPeriod    float64       `json:"projected_score_next_period"`
	ProjectedDaysToExcellent    int           `json:"projected_days_to_excellent"`
	TrendDirection              string        `json:"trend_direction"`
	ExecutiveSummary            string        `json:"executive_summary"`
	KeyFindings                 []string      `json:"key_findings"`
	Recommendations             []string      `json:"recommendations"`
	IsFinal                     bool          `json:"is_final"`
	IsArchived                  bool          `json:"is_archived"`
	CreatedBy                   string        `json:"created_by,omitempty"`
	CreatedAt                   time.Time     `json:"created_at"`
	GeneratedAt                 time.Time     `json:"generated_at"`
}

type ReportDashboard struct {
	ReportID       string        `json:"report_id"`
	GeneratedAt    time.Time     `json:"generated_at"`
	OverallScore   float64       `json:"overall_score"`
	Rating         string        `json:"rating"`
	PoliciesScore  float64       `json:"policies_score"`
	ControlsScore  float64       `json:"controls_score"`
	AssetsScore    float64       `json:"assets_score"`
	CriticalGaps   int           `json:"critical_gaps"`
	TrendDirection string        `json:"trend_direction"`
	Trend          []TrendPoint  `json:"trend"`
	Domains        []DomainScore `json:"domains"`
}
