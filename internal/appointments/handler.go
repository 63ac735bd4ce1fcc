package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/patasoft/petshop-platform/internal/packages"
	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Handler provides the /agendamentos HTTP endpoints.
type Handler struct {
	repo   *Repository
	cache  *CalendarCache
	logger *logging.Logger
}

func NewHandler(repo *Repository, cache *CalendarCache, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, cache: cache, logger: logger}
}

// Create handles POST /agendamentos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	id, err := h.repo.Create(r.Context(), empresa.ID, &req)
	if err != nil {
		h.respondErr(w, empresa.Code, "create", err)
		return
	}
	if when, perr := time.Parse(DataHoraLayout, req.DataHora); perr == nil {
		h.cache.Invalidate(r.Context(), empresa.ID, when)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id_agendamento": id,
		"message":        "Agendamento criado com sucesso",
	})
}

// ListByDate handles GET /agendamentos?data=YYYY-MM-DD.
func (h *Handler) ListByDate(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("data")
	if date == "" {
		date = time.Now().Format(DateLayout)
	}
	list, err := h.repo.ListByDate(r.Context(), empresa.ID, date)
	if err != nil {
		h.respondErr(w, empresa.Code, "list by date", err)
		return
	}
	if list == nil {
		list = []Agendamento{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Calendar handles GET /agendamentos/calendario?ano=&mes=.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	ano, _ := strconv.Atoi(r.URL.Query().Get("ano"))
	mes, _ := strconv.Atoi(r.URL.Query().Get("mes"))
	if err := ValidateCalendarPeriod(ano, mes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if counts, hit := h.cache.Get(r.Context(), empresa.ID, ano, mes); hit {
		writeJSON(w, http.StatusOK, counts)
		return
	}
	counts, err := h.repo.CalendarCounts(r.Context(), empresa.ID, ano, mes)
	if err != nil {
		h.respondErr(w, empresa.Code, "calendar", err)
		return
	}
	if counts == nil {
		counts = []DayCount{}
	}
	h.cache.Set(r.Context(), empresa.ID, ano, mes, counts)
	writeJSON(w, http.StatusOK, counts)
}

// UpdateStatus handles PATCH /agendamentos/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	empresa, ok := tenancy.EmpresaFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"empresa não resolvida"}`, http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"payload inválido"}`, http.StatusBadRequest)
		return
	}
	status, err := ParseStatus(body.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.repo.UpdateStatus(r.Context(), empresa.ID, id, status); err != nil {
		h.respondErr(w, empresa.Code, "update status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status atualizado para " + string(status)})
}

func (h *Handler) respondErr(w http.ResponseWriter, empresa, op string, err error) {
	switch {
	case errors.Is(err, ErrAgendamentoNotFound), errors.Is(err, ErrPetNotFound),
		errors.Is(err, ErrServicoNotFound), errors.Is(err, ErrFuncionarioNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrMissingPet), errors.Is(err, ErrMissingServico),
		errors.Is(err, ErrMissingFuncionario), errors.Is(err, ErrInvalidDataHora),
		errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidMes), errors.Is(err, ErrInvalidAno),
		errors.Is(err, packages.ErrPacoteInativo), errors.Is(err, packages.ErrSemCreditos):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("appointments handler failed", "op", op, "empresa", empresa, "error", err)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
