package bulkdata

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/services/bulkdata"
)

const maxImportBytes = 16 << 20

type Handler struct {
	svc bulkdata.Service
}

func NewHandler(svc bulkdata.Service) *Handler {
	return &Handler{svc: svc}
}

func params(r *http.Request) (bulkdata.Resource, bulkdata.Format, error) {
	resource, err := bulkdata.ParseResource(chi.URLParam(r, "resource"))
	if err != nil {
		return "", "", err
	}
	format, err := bulkdata.ParseFormat(r.URL.Query().Get("format"))
	return resource, format, err
}

// Export renders into memory first so a failed export still gets an error status.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	resource, format, err := params(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), resource, format, &buf); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.%s",
		resource, time.Now().UTC().Format("20060102"), format))
	if _, err := w.Write(buf.Bytes()); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("resource", string(resource)).
			Msg("failed to write export")
	}
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	resource, format, err := params(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := h.svc.Import(r.Context(), resource, format, body, auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainImportResultToApi(result))
}
