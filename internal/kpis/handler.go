package kpis

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Handler serves the dashboard endpoint.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger, now: time.Now}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	emp, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa nao identificada"}`, http.StatusForbidden)
		return
	}
	d, err := h.repo.Dashboard(r.Context(), emp.ID, h.now())
	if err != nil {
		h.logger.Error("dashboard", "error", err, "empresa", emp.Code)
		http.Error(w, `{"error":"erro ao montar dashboard"}`, http.StatusInternalServerError)
		return
	}
	if d.TopServicos == nil {
		d.TopServicos = []ServicoRank{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(d)
}
