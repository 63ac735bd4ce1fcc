package tenancy

import (
	"context"
	"testing"
)

func TestEmpresaRoundTrip(t *testing.T) {
	ctx := WithEmpresa(context.Background(), Empresa{ID: 7, Code: "filial-sul"})
	got, ok := EmpresaFromContext(ctx)
	if !ok {
		t.Fatal("empresa not found in context")
	}
	if got.ID != 7 || got.Code != "filial-sul" {
		t.Errorf("empresa = %+v", got)
	}
}

func TestEmpresaMissing(t *testing.T) {
	if _, ok := EmpresaFromContext(context.Background()); ok {
		t.Error("expected ok=false for empty context")
	}
}

func TestEmpresaZeroIDRejected(t *testing.T) {
	ctx := WithEmpresa(context.Background(), Empresa{Code: "x"})
	if _, ok := EmpresaFromContext(ctx); ok {
		t.Error("expected ok=false for zero tenant id")
	}
}
