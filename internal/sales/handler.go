package sales

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Handler exposes the sales endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	emp, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa nao identificada"}`, http.StatusForbidden)
		return
	}
	vendas, err := h.repo.List(r.Context(), emp.ID)
	if err != nil {
		h.logger.Error("list vendas", "error", err, "empresa", emp.Code)
		http.Error(w, `{"error":"erro ao listar vendas"}`, http.StatusInternalServerError)
		return
	}
	if vendas == nil {
		vendas = []Venda{}
	}
	writeJSON(w, http.StatusOK, vendas)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	emp, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa nao identificada"}`, http.StatusForbidden)
		return
	}
	var req CreateVendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"json invalido"}`, http.StatusBadRequest)
		return
	}
	venda, err := h.repo.Create(r.Context(), emp.ID, &req)
	if err != nil {
		h.respondErr(w, err, emp.Code)
		return
	}
	writeJSON(w, http.StatusCreated, venda)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	emp, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa nao identificada"}`, http.StatusForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"id invalido"}`, http.StatusBadRequest)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"json invalido"}`, http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateStatus(r.Context(), emp.ID, id, req.Status); err != nil {
		h.respondErr(w, err, emp.Code)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Venda atualizada com sucesso"})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, empresa string) {
	switch {
	case errors.Is(err, ErrVendaNotFound):
		http.Error(w, `{"error":"venda nao encontrada"}`, http.StatusNotFound)
	case errors.Is(err, ErrMissingCliente),
		errors.Is(err, ErrMissingItens),
		errors.Is(err, ErrItemSemReferencia),
		errors.Is(err, ErrEstoqueInsuficiente),
		errors.Is(err, ErrInvalidStatus):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	default:
		h.logger.Error("vendas", "error", err, "empresa", empresa)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
