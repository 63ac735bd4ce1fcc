package packages

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Handler provides the /pacotes endpoints plus the per-client package listing.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /pacotes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	list, err := h.repo.ListPacotes(r.Context(), empresa.ID)
	if err != nil {
		h.logger.Error("failed to list packages", "empresa", empresa.Code, "error", err)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Pacote{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Create handles POST /pacotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	var req CreatePacoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	p, err := h.repo.CreatePacote(r.Context(), empresa.ID, &req)
	if err != nil {
		h.respondErr(w, "create pacote", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Assign handles POST /clientes/{id}/pacotes. The client comes from the URL;
// a body id_cliente is accepted only when it matches.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	clienteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return
	}
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	if req.ClienteID != 0 && req.ClienteID != clienteID {
		h.respondErr(w, "assign pacote", ErrClienteMismatch)
		return
	}
	req.ClienteID = clienteID
	cp, err := h.repo.AssignToCliente(r.Context(), empresa.ID, &req)
	if err != nil {
		h.respondErr(w, "assign pacote", err)
		return
	}
	writeJSON(w, http.StatusCreated, cp)
}

// ByCliente handles GET /clientes/{id}/pacotes. Only status=ativo is served;
// the query parameter is accepted for compatibility with the web client.
func (h *Handler) ByCliente(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	clienteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return
	}
	if s := r.URL.Query().Get("status"); s != "" && s != StatusAtivo {
		writeJSON(w, http.StatusOK, []ClientePacote{})
		return
	}
	list, err := h.repo.ActiveByCliente(r.Context(), empresa.ID, clienteID)
	if err != nil {
		h.respondErr(w, "list cliente pacotes", err)
		return
	}
	if list == nil {
		list = []ClientePacote{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrPacoteNotFound), errors.Is(err, ErrClientePacoteNotFound),
		errors.Is(err, ErrClienteNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidNome), errors.Is(err, ErrInvalidTipo),
		errors.Is(err, ErrCreditosFields), errors.Is(err, ErrComboFields),
		errors.Is(err, ErrClienteMismatch):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("packages handler failed", "op", op, "error", err)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
