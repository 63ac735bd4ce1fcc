package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/patasoft/petshop-platform/internal/http/middleware"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Handler exposes login, the authenticated-user endpoint and password
// recovery.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type loginRequest struct {
	Empresa string `json:"empresa"`
	Login   string `json:"login"`
	Senha   string `json:"senha"`
}

type loginResponse struct {
	Token         string `json:"access_token"`
	TokenType     string `json:"token_type"`
	FuncionarioID int64  `json:"id_funcionario"`
	Nome          string `json:"nome"`
	Cargo         string `json:"cargo"`
	Empresa       string `json:"empresa"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"json invalido"}`, http.StatusBadRequest)
		return
	}
	if req.Empresa == "" {
		req.Empresa = r.Header.Get("X-Empresa")
	}
	if req.Empresa == "" || req.Login == "" || req.Senha == "" {
		http.Error(w, `{"error":"empresa, login e senha sao obrigatorios"}`, http.StatusBadRequest)
		return
	}

	token, f, err := h.svc.Login(r.Context(), req.Empresa, req.Login, req.Senha)
	if err != nil {
		if errors.Is(err, ErrCredenciaisInvalidas) {
			http.Error(w, `{"error":"credenciais invalidas"}`, http.StatusUnauthorized)
			return
		}
		h.logger.Error("login", "error", err, "empresa", req.Empresa)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:         token,
		TokenType:     "bearer",
		FuncionarioID: f.ID,
		Nome:          f.Nome,
		Cargo:         f.Cargo,
		Empresa:       f.Empresa,
	})
}

// Me answers with the account behind the bearer token. The account is
// reloaded so tokens outlive neither a deactivation nor a deletion.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"nao autenticado"}`, http.StatusUnauthorized)
		return
	}
	f, err := h.svc.ActiveAccount(r.Context(), claims.FuncionarioID)
	if err != nil {
		if errors.Is(err, ErrFuncionarioNotFound) {
			http.Error(w, `{"error":"conta inativa"}`, http.StatusUnauthorized)
			return
		}
		h.logger.Error("me", "error", err, "id_funcionario", claims.FuncionarioID)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id_funcionario": f.ID,
		"nome":           f.Nome,
		"cargo":          f.Cargo,
		"empresa":        f.Empresa,
	})
}

func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Empresa string `json:"empresa"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"json invalido"}`, http.StatusBadRequest)
		return
	}
	if req.Empresa == "" {
		req.Empresa = r.Header.Get("X-Empresa")
	}
	if req.Empresa == "" || req.Email == "" {
		http.Error(w, `{"error":"empresa e email sao obrigatorios"}`, http.StatusBadRequest)
		return
	}
	if err := h.svc.RequestReset(r.Context(), req.Empresa, req.Email); err != nil {
		h.logger.Error("reset request", "error", err, "empresa", req.Empresa)
		http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Se o email existir, um link de recuperacao foi enviado"})
}

func (h *Handler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		NovaSenha string `json:"nova_senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"json invalido"}`, http.StatusBadRequest)
		return
	}
	if err := h.svc.ConfirmReset(r.Context(), req.Token, req.NovaSenha); err != nil {
		switch {
		case errors.Is(err, ErrTokenInvalido):
			http.Error(w, `{"error":"token invalido ou expirado"}`, http.StatusBadRequest)
		case errors.Is(err, ErrSenhaFraca):
			http.Error(w, `{"error":"senha muito curta"}`, http.StatusBadRequest)
		default:
			h.logger.Error("reset confirm", "error", err)
			http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Senha redefinida com sucesso"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
