package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Handler provides the /servicos and /produtos HTTP endpoints.
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

func (h *Handler) ListServicos(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx requestCtx) (any, error) {
		return h.repo.ListServicos(ctx.r.Context(), ctx.empresaID)
	})
}

func (h *Handler) CreateServico(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	var req ServicoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	s, err := h.repo.CreateServico(r.Context(), empresa.ID, &req)
	if err != nil {
		h.respondErr(w, "create servico", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) UpdateServico(w http.ResponseWriter, r *http.Request) {
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
	var req ServicoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	s, err := h.repo.UpdateServico(r.Context(), empresa.ID, id, &req)
	if err != nil {
		h.respondErr(w, "update servico", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) DeleteServico(w http.ResponseWriter, r *http.Request) {
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
	if err := h.repo.DeleteServico(r.Context(), empresa.ID, id); err != nil {
		h.respondErr(w, "delete servico", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProdutos(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx requestCtx) (any, error) {
		return h.repo.ListProdutos(ctx.r.Context(), ctx.empresaID)
	})
}

func (h *Handler) CreateProduto(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	var req ProdutoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	p, err := h.repo.CreateProduto(r.Context(), empresa.ID, &req)
	if err != nil {
		h.respondErr(w, "create produto", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduto(w http.ResponseWriter, r *http.Request) {
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
	var req ProdutoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	p, err := h.repo.UpdateProduto(r.Context(), empresa.ID, id, &req)
	if err != nil {
		h.respondErr(w, "update produto", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduto(w http.ResponseWriter, r *http.Request) {
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
	if err := h.repo.DeleteProduto(r.Context(), empresa.ID, id); err != nil {
		h.respondErr(w, "delete produto", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type requestCtx struct {
	r         *http.Request
	empresaID int64
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(requestCtx) (any, error)) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	out, err := fetch(requestCtx{r: r, empresaID: empresa.ID})
	if err != nil {
		h.respondErr(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrServicoNotFound), errors.Is(err, ErrProdutoNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidNome), errors.Is(err, ErrInvalidPreco):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("catalog handler failed", "op", op, "error", err)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
