package reports

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/reports"
)

type Handler struct {
	svc reports.Service
}

func NewHandler(svc reports.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateReportRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	report, err := h.svc.Generate(r.Context(), domain.GenerateReportInput{
		Name:        req.ReportName,
		Period:      domain.ReportPeriod(req.ReportPeriod),
		PeriodStart: req.PeriodStart.UTC(),
		PeriodEnd:   req.PeriodEnd.UTC(),
		CreatedBy:   auth.UserID(r.Context()),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainReportToApi(*report))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ReportFilter{
		Period: domain.ReportPeriod(r.URL.Query().Get("report_period")),
		Rating: domain.ComplianceRating(r.URL.Query().Get("rating")),
	}
	var err error
	if filter.StartDate, err = httpx.Time(r, "start_date"); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if filter.EndDate, err = httpx.Time(r, "end_date"); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if filter.Page, err = httpx.Page(r); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainReportToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainReportToApi(*report))
}

func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Latest(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainReportToApi(*report))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Dashboard(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainReportToDashboard(*report))
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Archive(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.Get(w, r)
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Finalize(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.Get(w, r)
}
