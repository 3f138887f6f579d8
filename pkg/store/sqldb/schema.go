package sqldb

const AuditLogsSchema = `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_email TEXT,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT,
		description TEXT,
		changes TEXT,
		ip_address TEXT,
		user_agent TEXT,
		request_id TEXT,
		status_code INTEGER,
		created_at TIMESTAMP NOT NULL
	);
`

const AuditLogsIndexes = `
	CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_user ON audit_logs (user_id);
`

const ControlDomainsSchema = `
	CREATE TABLE IF NOT EXISTS control_domains (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		description TEXT,
		parent_id TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);
`

const UnifiedControlsSchema = `
	CREATE TABLE IF NOT EXISTS unified_controls (
		id TEXT PRIMARY KEY,
		control_identifier TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT,
		control_type TEXT,
		control_category TEXT,
		domain_id TEXT,
		complexity TEXT,
		cost_impact TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		implementation_status TEXT NOT NULL DEFAULT 'not_implemented',
		control_owner_id TEXT,
		control_procedures TEXT,
		testing_procedures TEXT,
		tags TEXT,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);
`

const ControlAssetMappingsSchema = `
	CREATE TABLE IF NOT EXISTS control_asset_mappings (
		id TEXT PRIMARY KEY,
		control_id TEXT NOT NULL,
		asset_id TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		implementation_status TEXT NOT NULL DEFAULT 'not_implemented',
		implementation_notes TEXT,
		is_automated BOOLEAN NOT NULL DEFAULT FALSE,
		last_test_date TIMESTAMP,
		last_test_result TEXT,
		effectiveness_score DOUBLE PRECISION,
		mapped_by TEXT,
		mapped_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (control_id, asset_type, asset_id)
	);
`

const FrameworksSchema = `
	CREATE TABLE IF NOT EXISTS compliance_frameworks (
		id TEXT PRIMARY KEY,
		framework_code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		version TEXT,
		issuing_authority TEXT,
		description TEXT,
		effective_date TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'active',
		tags TEXT,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);
`

const FrameworkRequirementsSchema = `
	CREATE TABLE IF NOT EXISTS framework_requirements (
		id TEXT PRIMARY KEY,
		framework_id TEXT NOT NULL,
		requirement_identifier TEXT NOT NULL,
		requirement_text TEXT NOT NULL,
		domain TEXT,
		category TEXT,
		priority TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (framework_id, requirement_identifier)
	);
`

const FrameworkControlMappingsSchema = `
	CREATE TABLE IF NOT EXISTS framework_control_mappings (
		id TEXT PRIMARY KEY,
		requirement_id TEXT NOT NULL,
		control_id TEXT NOT NULL,
		coverage_level TEXT NOT NULL,
		mapping_notes TEXT,
		mapped_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (requirement_id, control_id)
	);
`

const SOPsSchema = `
	CREATE TABLE IF NOT EXISTS sops (
		id TEXT PRIMARY KEY,
		sop_identifier TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		category TEXT,
		subcategory TEXT,
		purpose TEXT,
		scope TEXT,
		content TEXT,
		version TEXT NOT NULL DEFAULT '1.0',
		version_number INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'draft',
		owner_id TEXT,
		review_frequency TEXT,
		next_review_date TIMESTAMP,
		approval_date TIMESTAMP,
		published_date TIMESTAMP,
		tags TEXT,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);
`

const SOPRelationsSchema = `
	CREATE TABLE IF NOT EXISTS sop_control_mappings (
		sop_id TEXT NOT NULL,
		control_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (sop_id, control_id)
	);
	CREATE TABLE IF NOT EXISTS sop_versions (
		id TEXT PRIMARY KEY,
		sop_id TEXT NOT NULL,
		version_number INTEGER NOT NULL,
		version TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT,
		change_summary TEXT,
		created_by TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sop_steps (
		id TEXT PRIMARY KEY,
		sop_id TEXT NOT NULL,
		step_number INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		expected_duration INTEGER NOT NULL DEFAULT 0,
		responsible_role TEXT,
		is_critical BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sop_schedules (
		id TEXT PRIMARY KEY,
		sop_id TEXT NOT NULL,
		frequency TEXT NOT NULL,
		next_execution_date TIMESTAMP NOT NULL,
		assigned_user_id TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sop_executions (
		id TEXT PRIMARY KEY,
		sop_id TEXT NOT NULL,
		schedule_id TEXT,
		executed_by TEXT,
		outcome TEXT NOT NULL,
		notes TEXT,
		executed_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sop_feedback (
		id TEXT PRIMARY KEY,
		sop_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sop_assignments (
		id TEXT PRIMARY KEY,
		sop_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		assigned_by TEXT,
		assigned_at TIMESTAMP NOT NULL,
		acknowledged_at TIMESTAMP,
		UNIQUE (sop_id, user_id)
	);
`

const PoliciesSchema = `
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		policy_type TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		owner_id TEXT,
		version TEXT,
		content TEXT,
		effective_date TIMESTAMP,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS policy_acknowledgments (
		policy_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		acknowledged_at TIMESTAMP NOT NULL,
		PRIMARY KEY (policy_id, user_id)
	);
`

const PolicyExceptionsSchema = `
	CREATE TABLE IF NOT EXISTS policy_exceptions (
		id TEXT PRIMARY KEY,
		exception_identifier TEXT NOT NULL UNIQUE,
		policy_id TEXT NOT NULL,
		title TEXT NOT NULL,
		justification TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'requested',
		requested_by TEXT,
		approved_by TEXT,
		approved_at TIMESTAMP,
		decision_notes TEXT,
		start_date TIMESTAMP,
		end_date TIMESTAMP,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);
`

const ObligationsSchema = `
	CREATE TABLE IF NOT EXISTS obligations (
		id TEXT PRIMARY KEY,
		obligation_identifier TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT,
		source TEXT,
		source_reference TEXT,
		owner_id TEXT,
		status TEXT NOT NULL DEFAULT 'not_started',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date TIMESTAMP,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);
`

const ComplianceReportsSchema = `
	CREATE TABLE IF NOT EXISTS compliance_reports (
		id TEXT PRIMARY KEY,
		report_name TEXT NOT NULL,
		report_period TEXT NOT NULL,
		period_start_date TIMESTAMP NOT NULL,
		period_end_date TIMESTAMP NOT NULL,
		overall_compliance_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		overall_compliance_rating TEXT NOT NULL,
		policies_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		controls_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		assets_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_policies INTEGER NOT NULL DEFAULT 0,
		published_policies INTEGER NOT NULL DEFAULT 0,
		acknowledged_policies INTEGER NOT NULL DEFAULT 0,
		policy_acknowledgment_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_controls INTEGER NOT NULL DEFAULT 0,
		implemented_controls INTEGER NOT NULL DEFAULT 0,
		partial_controls INTEGER NOT NULL DEFAULT 0,
		not_implemented_controls INTEGER NOT NULL DEFAULT 0,
		average_control_effectiveness DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_assets INTEGER NOT NULL DEFAULT 0,
		compliant_assets INTEGER NOT NULL DEFAULT 0,
		asset_compliance_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		critical_gaps INTEGER NOT NULL DEFAULT 0,
		medium_gaps INTEGER NOT NULL DEFAULT 0,
		low_gaps INTEGER NOT NULL DEFAULT 0,
		gap_details TEXT,
		domain_breakdown TEXT,
		compliance_trend TEXT,
		projected_score_next_period DOUBLE PRECISION NOT NULL DEFAULT 0,
		projected_days_to_excellent INTEGER NOT NULL DEFAULT 0,
		trend_direction TEXT NOT NULL DEFAULT 'stable',
		executive_summary TEXT,
		key_findings TEXT,
		recommendations TEXT,
		is_final BOOLEAN NOT NULL DEFAULT FALSE,
		is_archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_by TEXT,
		created_at TIMESTAMP NOT NULL,
		generated_at TIMESTAMP NOT NULL
	);
`

const WorkflowsSchema = `
	CREATE TABLE IF NOT EXISTS workflows (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		trigger_type TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		conditions TEXT,
		actions TEXT,
		days_before_deadline INTEGER NOT NULL DEFAULT 0,
		created_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS workflow_executions (
		id TEXT PRIMARY KEY,
		workflow_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		status TEXT NOT NULL,
		input_data TEXT,
		error_message TEXT,
		assigned_to TEXT,
		started_at TIMESTAMP,
		completed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS workflow_approvals (
		id TEXT PRIMARY KEY,
		execution_id TEXT NOT NULL,
		approver_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		step_order INTEGER NOT NULL,
		comments TEXT,
		responded_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	);
`

var bootQueries = []string{
	AuditLogsSchema,
	AuditLogsIndexes,
	ControlDomainsSchema,
	UnifiedControlsSchema,
	ControlAssetMappingsSchema,
	FrameworksSchema,
	FrameworkRequirementsSchema,
	FrameworkControlMappingsSchema,
	SOPsSchema,
	SOPRelationsSchema,
	PoliciesSchema,
	PolicyExceptionsSchema,
	ObligationsSchema,
	ComplianceReportsSchema,
	WorkflowsSchema,
}
