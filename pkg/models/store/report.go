package store

import (
	"database/sql"
	"time"
)

// ComplianceReport is the flattened compliance_reports row.
type ComplianceReport struct {
	ID                          string
	ReportName                  string
	ReportPeriod                string
	PeriodStartDate             time.Time
	PeriodEndDate               time.Time
	OverallComplianceScore      float64
	OverallComplianceRating     string
	PoliciesScore               float64
	ControlsScore               float64
	AssetsScore                 float64
	TotalPolicies               int
	PublishedPolicies           int
	AcknowledgedPolicies        int
	PolicyAcknowledgmentRate    float64
	TotalControls               int
	ImplementedControls         int
	PartialControls             int
	NotImplementedControls      int
	AverageControlEffectiveness float64
	TotalAssets                 int
	CompliantAssets             int
	AssetCompliancePercentage   float64
	CriticalGaps                int
	MediumGaps                  int
	LowGaps                     int
	GapDetails                  sql.NullString
	DomainBreakdown             sql.NullString
	ComplianceTrend             sql.NullString
	ProjectedScoreNextPeriod    float64
	ProjectedDaysToExcellent    int
	TrendDirection              string
	ExecutiveSummary            sql.NullString
	KeyFindings                 sql.NullString
	Recommendations             sql.NullString
	IsFinal                     bool
	IsArchived                  bool
	CreatedBy                   sql.NullString
	CreatedAt                   time.Time
	GeneratedAt                 time.Time
}
