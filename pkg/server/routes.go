package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/auth"
	assetcontrolhandler "github.com/de-tools/grc-admin/pkg/handlers/assetcontrol"
	audithandler "github.com/de-tools/grc-admin/pkg/handlers/audit"
	bulkdatahandler "github.com/de-tools/grc-admin/pkg/handlers/bulkdata"
	controlshandler "github.com/de-tools/grc-admin/pkg/handlers/controls"
	domainshandler "github.com/de-tools/grc-admin/pkg/handlers/domains"
	exceptionshandler "github.com/de-tools/grc-admin/pkg/handlers/exceptions"
	frameworkshandler "github.com/de-tools/grc-admin/pkg/handlers/frameworks"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	obligationshandler "github.com/de-tools/grc-admin/pkg/handlers/obligations"
	policieshandler "github.com/de-tools/grc-admin/pkg/handlers/policies"
	reportshandler "github.com/de-tools/grc-admin/pkg/handlers/reports"
	sopshandler "github.com/de-tools/grc-admin/pkg/handlers/sops"
	workflowhandler "github.com/de-tools/grc-admin/pkg/handlers/workflow"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	grcmiddleware "github.com/de-tools/grc-admin/pkg/server/middleware"
)

var (
	writers      = []string{auth.RoleAdmin, auth.RoleComplianceOfficer}
	auditReaders = []string{auth.RoleAdmin, auth.RoleAuditor, auth.RoleComplianceOfficer}
	admins       = []string{auth.RoleAdmin}
)

func newRouter(logger *zerolog.Logger, deps Dependencies) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(grcmiddleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(grcmiddleware.Metrics(deps.Metrics))

	router.Get("/healthz", healthz(deps.DB))
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler())
	}

	authz := deps.Authorizer
	rec := grcmiddleware.NewAuditor(deps.Audit).Record

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Authenticate(deps.Tokens))

		auditRoutes(r, authz, audithandler.NewHandler(deps.Audit))
		assets := assetcontrolhandler.NewHandler(deps.AssetControl)
		frameworks := frameworkshandler.NewHandler(deps.Frameworks)
		controlRoutes(r, authz, rec, controlshandler.NewHandler(deps.Controls), assets, frameworks)
		assetControlRoutes(r, authz, rec, assets)
		frameworkRoutes(r, authz, rec, frameworks)
		domainRoutes(r, authz, rec, domainshandler.NewHandler(deps.Domains))
		sopRoutes(r, authz, rec, sopshandler.NewHandler(deps.SOPs))
		policyRoutes(r, authz, rec, policieshandler.NewHandler(deps.Policies))
		exceptionRoutes(r, authz, rec, exceptionshandler.NewHandler(deps.Exceptions))
		obligationRoutes(r, authz, rec, obligationshandler.NewHandler(deps.Obligations))
		reportRoutes(r, authz, rec, reportshandler.NewHandler(deps.Reports))
		workflowRoutes(r, authz, rec, workflowhandler.NewHandler(deps.Workflow))
		dataRoutes(r, authz, rec, bulkdatahandler.NewHandler(deps.BulkData))
	})

	return router
}

type recordFunc func(action domain.AuditAction, entityType, description string) func(http.Handler) http.Handler

func healthz(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
			httpx.WriteJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func auditRoutes(r chi.Router, authz *auth.Authorizer, h *audithandler.Handler) {
	r.Route("/audit-logs", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireRoles(auditReaders...))
			r.Get("/", h.List)
			r.Get("/export", h.Export)
			r.Get("/stats", h.Stats)
			r.Get("/entity/{entityType}/{entityID}", h.EntityTrail)
			r.Get("/{id}", h.Get)
		})
		r.With(authz.RequireRoles(admins...)).Delete("/retention", h.Cleanup)
	})
}

// controlRoutes owns every path under /controls, including the asset and
// framework mapping subresources.
func controlRoutes(
	r chi.Router,
	authz *auth.Authorizer,
	rec recordFunc,
	h *controlshandler.Handler,
	assets *assetcontrolhandler.Handler,
	frameworks *frameworkshandler.Handler,
) {
	w := authz.RequireRoles(writers...)
	r.Route("/controls", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "control", "Created control")).Post("/", h.Create)
		r.Get("/library/statistics", h.Stats)
		r.With(rec(domain.AuditExport, "control", "Exported control library")).Get("/library/export", h.Export)
		r.With(w, rec(domain.AuditImport, "control", "Imported controls")).Post("/library/import", h.Import)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "control", "Updated control")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "control", "Deleted control")).Delete("/{id}", h.Delete)
		r.Get("/{id}/related", h.Related)
		r.Get("/{id}/effectiveness", assets.ControlEffectiveness)

		r.Route("/{id}/assets", func(r chi.Router) {
			r.Get("/", assets.ListByControl)
			r.With(w, rec(domain.AuditAssign, "control_asset_mapping", "Mapped control to asset")).Post("/", assets.Map)
			r.With(w, rec(domain.AuditAssign, "control_asset_mapping", "Mapped control to assets")).Post("/bulk", assets.MapBulk)
			r.With(w, rec(domain.AuditUpdate, "control_asset_mapping", "Updated control asset mapping")).
				Patch("/{assetType}/{assetID}", assets.Update)
			r.With(w, rec(domain.AuditDelete, "control_asset_mapping", "Removed control asset mapping")).
				Delete("/{assetType}/{assetID}", assets.Delete)
		})

		r.Route("/{id}/framework-mappings", func(r chi.Router) {
			r.Get("/", frameworks.ControlMappings)
			r.With(w, rec(domain.AuditCreate, "framework_mapping", "Mapped control to requirement")).
				Post("/", frameworks.MapControl)
			r.With(w, rec(domain.AuditCreate, "framework_mapping", "Mapped control to requirements")).
				Post("/bulk", frameworks.MapControlBulk)
		})
	})
}

func assetControlRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *assetcontrolhandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Get("/assets/{assetType}/{assetID}/controls", h.ListByAsset)
	r.Get("/assets/{assetType}/{assetID}/compliance", h.AssetCompliance)
	r.Route("/control-mappings", func(r chi.Router) {
		r.Get("/matrix", h.Matrix)
		r.Get("/statistics", h.MatrixStats)
		r.Get("/unmapped-controls", h.Unmapped)
		r.Get("/compliance-by-asset-type", h.ComplianceByAssetType)
		r.With(w, rec(domain.AuditUpdate, "control_asset_mapping", "Bulk updated implementation status")).
			Patch("/status", h.BulkUpdateStatus)
	})
}

func frameworkRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *frameworkshandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/frameworks", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "framework", "Created framework")).Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "framework", "Updated framework")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "framework", "Deleted framework")).Delete("/{id}", h.Delete)
		r.Get("/{id}/requirements", h.ListRequirements)
		r.With(w, rec(domain.AuditCreate, "framework_requirement", "Added framework requirement")).
			Post("/{id}/requirements", h.CreateRequirement)
		r.With(w, rec(domain.AuditDelete, "framework_requirement", "Removed framework requirement")).
			Delete("/{id}/requirements/{requirementID}", h.DeleteRequirement)
		r.Get("/{id}/coverage-matrix", h.Coverage)
	})
	r.Route("/framework-mappings/{mappingID}", func(r chi.Router) {
		r.With(w, rec(domain.AuditUpdate, "framework_mapping", "Updated framework mapping")).Patch("/", h.UpdateMapping)
		r.With(w, rec(domain.AuditDelete, "framework_mapping", "Deleted framework mapping")).Delete("/", h.DeleteMapping)
	})
}

func domainRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *domainshandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/domains", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "control_domain", "Created control domain")).Post("/", h.Create)
		r.Get("/tree", h.Tree)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "control_domain", "Updated control domain")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "control_domain", "Deleted control domain")).Delete("/{id}", h.Delete)
	})
}

func sopRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *sopshandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/sops", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "sop", "Created SOP")).Post("/", h.Create)
		r.Get("/assigned", h.Assigned)
		r.Get("/statistics/publication", h.PublicationStats)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "sop", "Updated SOP")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "sop", "Deleted SOP")).Delete("/{id}", h.Delete)
		r.With(w, rec(domain.AuditPublish, "sop", "Published SOP")).Post("/{id}/publish", h.Publish)
		r.With(rec(domain.AuditUpdate, "sop", "Acknowledged SOP")).Post("/{id}/acknowledge", h.Acknowledge)
		r.Get("/{id}/versions", h.Versions)

		r.Get("/{id}/steps", h.Steps)
		r.With(w, rec(domain.AuditUpdate, "sop", "Added SOP step")).Post("/{id}/steps", h.CreateStep)
		r.With(w, rec(domain.AuditUpdate, "sop", "Updated SOP step")).Patch("/{id}/steps/{stepID}", h.UpdateStep)
		r.With(w, rec(domain.AuditUpdate, "sop", "Removed SOP step")).Delete("/{id}/steps/{stepID}", h.DeleteStep)

		r.Get("/{id}/schedules", h.Schedules)
		r.With(w, rec(domain.AuditUpdate, "sop", "Scheduled SOP execution")).Post("/{id}/schedules", h.CreateSchedule)
		r.With(w, rec(domain.AuditUpdate, "sop", "Removed SOP schedule")).
			Delete("/{id}/schedules/{scheduleID}", h.DeleteSchedule)

		r.Get("/{id}/feedback", h.Feedback)
		r.Post("/{id}/feedback", h.CreateFeedback)
		r.Get("/{id}/feedback/summary", h.FeedbackSummary)
	})
}

func policyRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *policieshandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/policies", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "policy", "Created policy")).Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "policy", "Updated policy")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "policy", "Deleted policy")).Delete("/{id}", h.Delete)
		r.With(rec(domain.AuditUpdate, "policy", "Acknowledged policy")).Post("/{id}/acknowledge", h.Acknowledge)
		r.Get("/{id}/acknowledgments", h.Acknowledgments)
	})
}

func exceptionRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *exceptionshandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/policy-exceptions", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(rec(domain.AuditCreate, "policy_exception", "Requested policy exception")).Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "policy_exception", "Updated policy exception")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "policy_exception", "Deleted policy exception")).Delete("/{id}", h.Delete)
		r.With(w, rec(domain.AuditApprove, "policy_exception", "Approved policy exception")).Post("/{id}/approve", h.Approve)
		r.With(w, rec(domain.AuditReject, "policy_exception", "Rejected policy exception")).Post("/{id}/reject", h.Reject)
	})
}

func obligationRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *obligationshandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/obligations", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "obligation", "Created obligation")).Post("/", h.Create)
		r.Get("/statistics", h.Stats)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "obligation", "Updated obligation")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "obligation", "Deleted obligation")).Delete("/{id}", h.Delete)
	})
}

func reportRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *reportshandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/compliance-reports", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "compliance_report", "Generated compliance report")).Post("/", h.Generate)
		r.Get("/latest", h.Latest)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditArchive, "compliance_report", "Archived compliance report")).Post("/{id}/archive", h.Archive)
		r.With(w, rec(domain.AuditUpdate, "compliance_report", "Finalized compliance report")).Post("/{id}/finalize", h.Finalize)
	})
}

func workflowRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *workflowhandler.Handler) {
	w := authz.RequireRoles(writers...)
	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(w, rec(domain.AuditCreate, "workflow", "Created workflow")).Post("/", h.Create)
		r.Get("/executions", h.Executions)
		r.Get("/executions/{id}", h.ExecutionDetail)
		r.Get("/approvals/pending", h.PendingApprovals)
		r.With(rec(domain.AuditApprove, "workflow_approval", "Responded to workflow approval")).
			Post("/approvals/{id}/respond", h.Respond)
		r.Get("/{id}", h.Get)
		r.With(w, rec(domain.AuditUpdate, "workflow", "Updated workflow")).Patch("/{id}", h.Update)
		r.With(w, rec(domain.AuditDelete, "workflow", "Deleted workflow")).Delete("/{id}", h.Delete)
		r.With(w, rec(domain.AuditCreate, "workflow_execution", "Executed workflow")).Post("/{id}/execute", h.Execute)
	})
}

func dataRoutes(r chi.Router, authz *auth.Authorizer, rec recordFunc, h *bulkdatahandler.Handler) {
	r.Route("/data", func(r chi.Router) {
		r.With(rec(domain.AuditExport, "bulk_data", "Exported reference data")).Get("/export/{resource}", h.Export)
		r.With(authz.RequireRoles(writers...), rec(domain.AuditImport, "bulk_data", "Imported reference data")).
			Post("/import/{resource}", h.Import)
	})
}
