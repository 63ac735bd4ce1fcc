package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/patasoft/petshop-platform/internal/tenancy"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// EmpresaResolver maps a tenant code to its record.
type EmpresaResolver interface {
	ResolveEmpresa(ctx context.Context, codigo string) (tenancy.Empresa, error)
}

type empresaDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DBEmpresaResolver resolves tenants from the empresas table.
type DBEmpresaResolver struct {
	db empresaDB
}

func NewEmpresaResolver(db empresaDB) *DBEmpresaResolver {
	return &DBEmpresaResolver{db: db}
}

var errEmpresaNotFound = errors.New("router: empresa nao encontrada")

func (r *DBEmpresaResolver) ResolveEmpresa(ctx context.Context, codigo string) (tenancy.Empresa, error) {
	var emp tenancy.Empresa
	err := r.db.QueryRow(ctx, `
		SELECT id_empresa, codigo FROM empresas WHERE codigo = $1 AND ativo = TRUE
	`, codigo).Scan(&emp.ID, &emp.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenancy.Empresa{}, errEmpresaNotFound
		}
		return tenancy.Empresa{}, err
	}
	return emp, nil
}

// RequireEmpresa reads the X-Empresa header, resolves the tenant and stores
// it in the request context. Requests without a resolvable tenant get 403.
func RequireEmpresa(resolver EmpresaResolver, defaultCode string, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			codigo := r.Header.Get("X-Empresa")
			if codigo == "" {
				codigo = defaultCode
			}
			if codigo == "" {
				http.Error(w, `{"error":"header X-Empresa obrigatorio"}`, http.StatusForbidden)
				return
			}
			emp, err := resolver.ResolveEmpresa(r.Context(), codigo)
			if err != nil {
				if errors.Is(err, errEmpresaNotFound) {
					http.Error(w, `{"error":"empresa invalida"}`, http.StatusForbidden)
					return
				}
				logger.Error("resolve empresa", "error", err, "codigo", codigo)
				http.Error(w, `{"error":"erro interno"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(tenancy.WithEmpresa(r.Context(), emp)))
		})
	}
}
