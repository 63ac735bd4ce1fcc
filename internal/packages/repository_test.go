package packages

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

func intPtr(v int) *int { return &v }

func TestCreatePacoteRequest_Validate(t *testing.T) {
	cases := []struct {
		name string
		req  CreatePacoteRequest
		want error
	}{
		{"missing nome", CreatePacoteRequest{Tipo: TipoCombo}, ErrInvalidNome},
		{"bad tipo", CreatePacoteRequest{Nome: "X", Tipo: "mensal"}, ErrInvalidTipo},
		{"creditos without fields", CreatePacoteRequest{Nome: "X", Tipo: TipoCreditos}, ErrCreditosFields},
		{"combo with fields", CreatePacoteRequest{Nome: "X", Tipo: TipoCombo, MaxUsos: intPtr(3)}, ErrComboFields},
		{"valid combo", CreatePacoteRequest{Nome: "Banho + Tosa", Tipo: TipoCombo}, nil},
		{"valid creditos", CreatePacoteRequest{Nome: "10 banhos", Tipo: TipoCreditos, ValidadeDias: intPtr(90), MaxUsos: intPtr(10)}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.Validate(); !errors.Is(got, tc.want) {
				t.Errorf("Validate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRegisterUse_CreditosDecrementsAndFlips(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT p\.tipo, cp\.status, cp\.usos_restantes`).
		WithArgs(int64(11), int64(1)).
		WillReturnRows(mock.NewRows([]string{"tipo", "status", "usos_restantes"}).
			AddRow(TipoCreditos, StatusAtivo, intPtr(1)))
	mock.ExpectExec(`INSERT INTO clientes_pacotes_uso`).
		WithArgs(int64(11), int64(200), int64(5), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// Last credit: remaining drops to 0 and the package flips to 'usado'.
	mock.ExpectExec(`UPDATE clientes_pacotes SET usos_restantes = \$3, status = \$4`).
		WithArgs(int64(11), int64(1), 0, StatusUsado).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := RegisterUse(context.Background(), mock, 1, 11, 200, 5, nil); err != nil {
		t.Fatalf("RegisterUse: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterUse_ComboSingleShot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT p\.tipo, cp\.status, cp\.usos_restantes`).
		WithArgs(int64(12), int64(1)).
		WillReturnRows(mock.NewRows([]string{"tipo", "status", "usos_restantes"}).
			AddRow(TipoCombo, StatusAtivo, (*int)(nil)))
	mock.ExpectExec(`INSERT INTO clientes_pacotes_uso`).
		WithArgs(int64(12), int64(201), int64(6), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE clientes_pacotes SET status = 'usado'`).
		WithArgs(int64(12), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := RegisterUse(context.Background(), mock, 1, 12, 201, 6, nil); err != nil {
		t.Fatalf("RegisterUse: %v", err)
	}
}

func TestRegisterUse_InactiveRejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT p\.tipo, cp\.status, cp\.usos_restantes`).
		WithArgs(int64(13), int64(1)).
		WillReturnRows(mock.NewRows([]string{"tipo", "status", "usos_restantes"}).
			AddRow(TipoCreditos, StatusUsado, intPtr(0)))

	err = RegisterUse(context.Background(), mock, 1, 13, 202, 7, nil)
	if !errors.Is(err, ErrPacoteInativo) {
		t.Errorf("err = %v, want ErrPacoteInativo", err)
	}
}

func TestRegisterUse_OtherTenantPackageInvisible(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	// The package row exists but belongs to empresa 2; scoped lookup finds
	// nothing and no use is recorded.
	mock.ExpectQuery(`SELECT p\.tipo, cp\.status, cp\.usos_restantes`).
		WithArgs(int64(9001), int64(1)).
		WillReturnRows(mock.NewRows([]string{"tipo", "status", "usos_restantes"}))

	err = RegisterUse(context.Background(), mock, 1, 9001, 777, 5, nil)
	if !errors.Is(err, ErrPacoteInativo) {
		t.Errorf("err = %v, want ErrPacoteInativo", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("use was recorded against another tenant's package: %v", err)
	}
}

func TestAssignToCliente_ClienteScopedToEmpresa(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT tipo, max_usos, validade_dias FROM pacotes`).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(mock.NewRows([]string{"tipo", "max_usos", "validade_dias"}).
			AddRow(TipoCreditos, intPtr(10), intPtr(90)))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM clientes`).
		WithArgs(int64(42), int64(1)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))

	repo := NewRepositoryWithDB(mock)
	_, err = repo.AssignToCliente(context.Background(), 1, &AssignRequest{ClienteID: 42, PacoteID: 3})
	if !errors.Is(err, ErrClienteNotFound) {
		t.Errorf("err = %v, want ErrClienteNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("assignment reached the insert: %v", err)
	}
}

func TestRegisterUse_NoCredits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT p\.tipo, cp\.status, cp\.usos_restantes`).
		WithArgs(int64(14), int64(1)).
		WillReturnRows(mock.NewRows([]string{"tipo", "status", "usos_restantes"}).
			AddRow(TipoCreditos, StatusAtivo, intPtr(0)))
	mock.ExpectExec(`INSERT INTO clientes_pacotes_uso`).
		WithArgs(int64(14), int64(203), int64(8), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = RegisterUse(context.Background(), mock, 1, 14, 203, 8, nil)
	if !errors.Is(err, ErrSemCreditos) {
		t.Errorf("err = %v, want ErrSemCreditos", err)
	}
}
