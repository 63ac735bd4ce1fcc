package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/patasoft/petshop-platform/internal/appointments"
	"github.com/patasoft/petshop-platform/internal/auth"
	"github.com/patasoft/petshop-platform/internal/catalog"
	"github.com/patasoft/petshop-platform/internal/clients"
	httpmiddleware "github.com/patasoft/petshop-platform/internal/http/middleware"
	"github.com/patasoft/petshop-platform/internal/kpis"
	"github.com/patasoft/petshop-platform/internal/packages"
	"github.com/patasoft/petshop-platform/internal/sales"
	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

const testSecret = "router-test-secret"

type stubResolver struct{}

func (stubResolver) ResolveEmpresa(ctx context.Context, codigo string) (tenancy.Empresa, error) {
	if codigo != "patas" {
		return tenancy.Empresa{}, errEmpresaNotFound
	}
	return tenancy.Empresa{ID: 1, Code: "patas"}, nil
}

func signToken(t *testing.T) string {
	t.Helper()
	claims := httpmiddleware.UserClaims{
		FuncionarioID: 7,
		Nome:          "Ana",
		Empresa:       "patas",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T, mock pgxmock.PgxPoolIface) http.Handler {
	t.Helper()
	logger := logging.NewWithWriter("error", io.Discard)
	return New(&Config{
		Logger:              logger,
		AuthHandler:         auth.NewHandler(auth.NewService(auth.NewRepositoryWithDB(mock), nil, auth.ServiceConfig{JWTSecret: testSecret, TokenTTL: time.Hour}, logger), logger),
		ClientsHandler:      clients.NewHandler(clients.NewRepositoryWithDB(mock), logger),
		CatalogHandler:      catalog.NewHandler(catalog.NewRepositoryWithDB(mock), logger),
		PackagesHandler:     packages.NewHandler(packages.NewRepositoryWithDB(mock), logger),
		AppointmentsHandler: appointments.NewHandler(appointments.NewRepositoryWithDB(mock), nil, logger),
		SalesHandler:        sales.NewHandler(sales.NewRepositoryWithDB(mock), logger),
		KPIsHandler:         kpis.NewHandler(kpis.NewRepositoryWithDB(mock), logger),
		EmpresaResolver:     stubResolver{},
		JWTSecret:           testSecret,
	})
}

func TestHealth_Public(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestProtected_RequiresToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/servicos", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestProtected_RejectsUnknownEmpresa(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	req := httptest.NewRequest(http.MethodGet, "/servicos", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t))
	req.Header.Set("X-Empresa", "inexistente")

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestProtected_ScopedListServicos(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id_servico, nome, descricao, preco_base`).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows([]string{"id_servico", "nome", "descricao", "preco_base", "duracao_padrao", "ativo", "created_at"}).
			AddRow(int64(5), "Banho", (*string)(nil), 50.0, (*int)(nil), true, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/servicos", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t))
	req.Header.Set("X-Empresa", "patas")

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAuthMe(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT f\.id_funcionario, f\.id_empresa, e\.codigo`).
		WithArgs(int64(7)).
		WillReturnRows(mock.NewRows([]string{"id_funcionario", "id_empresa", "codigo", "nome", "cargo", "login", "senha", "email"}).
			AddRow(int64(7), int64(1), "patas", "Ana", "gerente", "ana", "hash", "ana@patas.com"))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t))
	req.Header.Set("X-Empresa", "patas")

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if body == "" || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("body = %q, content-type = %q", body, rec.Header().Get("Content-Type"))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAuthMe_DeactivatedAccountRejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	// Token is still valid but the account no longer resolves.
	mock.ExpectQuery(`SELECT f\.id_funcionario, f\.id_empresa, e\.codigo`).
		WithArgs(int64(7)).
		WillReturnRows(mock.NewRows([]string{"id_funcionario", "id_empresa", "codigo", "nome", "cargo", "login", "senha", "email"}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t))
	req.Header.Set("X-Empresa", "patas")

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAssignPacote_ClienteComesFromURL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	maxUsos := 10
	validade := 90
	mock.ExpectQuery(`SELECT tipo, max_usos, validade_dias FROM pacotes`).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(mock.NewRows([]string{"tipo", "max_usos", "validade_dias"}).
			AddRow("creditos", &maxUsos, &validade))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM clientes`).
		WithArgs(int64(42), int64(1)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO clientes_pacotes`).
		WithArgs(int64(1), int64(42), int64(3), &maxUsos, &validade).
		WillReturnRows(mock.NewRows([]string{"id_cliente_pacote", "status", "expira_em"}).
			AddRow(int64(88), "ativo", (*time.Time)(nil)))

	req := httptest.NewRequest(http.MethodPost, "/clientes/42/pacotes", strings.NewReader(`{"id_pacote":3}`))
	req.Header.Set("Authorization", "Bearer "+signToken(t))
	req.Header.Set("X-Empresa", "patas")

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssignPacote_BodyClienteMismatchRejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	req := httptest.NewRequest(http.MethodPost, "/clientes/42/pacotes", strings.NewReader(`{"id_cliente":99,"id_pacote":3}`))
	req.Header.Set("Authorization", "Bearer "+signToken(t))
	req.Header.Set("X-Empresa", "patas")

	rec := httptest.NewRecorder()
	newTestRouter(t, mock).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("mismatched body reached the database: %v", err)
	}
}
