package tenancy

import "context"

type ctxKey string

const empresaKey ctxKey = "petshop.empresa"

// Empresa identifies the tenant a request acts on.
type Empresa struct {
	ID   int64
	Code string
}

// WithEmpresa stores the tenant in context.
func WithEmpresa(ctx context.Context, e Empresa) context.Context {
	return context.WithValue(ctx, empresaKey, e)
}

// EmpresaFromContext extracts the tenant if present.
func EmpresaFromContext(ctx context.Context) (Empresa, bool) {
	val := ctx.Value(empresaKey)
	if val == nil {
		return Empresa{}, false
	}
	e, ok := val.(Empresa)
	return e, ok && e.ID != 0
}
