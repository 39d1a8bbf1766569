package http

import (
	"log/slog"
	"net/http"

	"github.com/codedits/bitecheck/internal/service"
	"github.com/codedits/bitecheck/pkg/httputil"
)

// AdminHandler handles administrative HTTP endpoints.
type AdminHandler struct {
	reconciler *service.ReconcilerService
	logger     *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(reconciler *service.ReconcilerService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{reconciler: reconciler, logger: logger}
}

// Reconcile handles POST /api/v1/admin/reconcile. It runs one synchronous
// reconciliation sweep and returns the report.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.Run(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}
