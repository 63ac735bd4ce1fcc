package clients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Handler provides the /clientes HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new clients HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /clientes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	list, err := h.repo.List(r.Context(), empresa.ID)
	if err != nil {
		h.logger.Error("failed to list clients", "empresa", empresa.Code, "error", err)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Cliente{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /clientes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	id, err := idParam(r)
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return
	}
	c, err := h.repo.GetByID(r.Context(), empresa.ID, id)
	if err != nil {
		h.respondErr(w, empresa.Code, "get client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Pets handles GET /clientes/{id}/pets.
func (h *Handler) Pets(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	id, err := idParam(r)
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return
	}
	pets, err := h.repo.PetsByCliente(r.Context(), empresa.ID, id)
	if err != nil {
		h.respondErr(w, empresa.Code, "list pets", err)
		return
	}
	if pets == nil {
		pets = []Pet{}
	}
	writeJSON(w, http.StatusOK, pets)
}

// Create handles POST /clientes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	var req CreateClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	c, err := h.repo.Create(r.Context(), empresa.ID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidNome) || errors.Is(err, ErrMissingContato) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.respondErr(w, empresa.Code, "create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update handles PUT /clientes/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	id, err := idParam(r)
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return
	}
	var req UpdateClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	c, err := h.repo.Update(r.Context(), empresa.ID, id, &req)
	if err != nil {
		h.respondErr(w, empresa.Code, "update client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /clientes/{id} (soft delete).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	id, err := idParam(r)
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return
	}
	if err := h.repo.SoftDelete(r.Context(), empresa.ID, id); err != nil {
		h.respondErr(w, empresa.Code, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, empresa, op string, err error) {
	if errors.Is(err, ErrClienteNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrClienteNotFound.Error()})
		return
	}
	h.logger.Error("clients handler failed", "op", op, "empresa", empresa, "error", err)
	http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
