package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func i64(v int64) *int64 { return &v }

func TestCreate_ProductSale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO vendas `).
		WithArgs(int64(1), int64(5), int64(9), "pix").
		WillReturnRows(mock.NewRows([]string{"id_venda", "created_at"}).AddRow(int64(100), time.Now()))
	mock.ExpectQuery(`SELECT preco, estoque FROM produtos`).
		WithArgs(int64(40), int64(1)).
		WillReturnRows(mock.NewRows([]string{"preco", "estoque"}).AddRow(25.5, 10))
	mock.ExpectExec(`UPDATE produtos SET estoque = estoque - \$2`).
		WithArgs(int64(40), 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO vendas_itens`).
		WithArgs(int64(100), i64(40), (*int64)(nil), (*int64)(nil), 2, 25.5).
		WillReturnRows(mock.NewRows([]string{"id_item"}).AddRow(int64(1000)))
	mock.ExpectExec(`UPDATE vendas SET total = \$2`).
		WithArgs(int64(100), 51.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	repo := NewRepositoryWithDB(mock)
	venda, err := repo.Create(context.Background(), 1, &CreateVendaRequest{
		ClienteID:      5,
		FuncionarioID:  9,
		FormaPagamento: "pix",
		Itens:          []VendaItemRequest{{ProdutoID: i64(40), Quantidade: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if venda.Total != 51.0 {
		t.Errorf("Total = %v, want 51.0", venda.Total)
	}
	if len(venda.Itens) != 1 || venda.Itens[0].PrecoUnitario != 25.5 {
		t.Errorf("Itens = %+v", venda.Itens)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreate_InsufficientStockRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO vendas `).
		WithArgs(int64(1), int64(5), int64(9), "dinheiro").
		WillReturnRows(mock.NewRows([]string{"id_venda", "created_at"}).AddRow(int64(101), time.Now()))
	mock.ExpectQuery(`SELECT preco, estoque FROM produtos`).
		WithArgs(int64(41), int64(1)).
		WillReturnRows(mock.NewRows([]string{"preco", "estoque"}).AddRow(10.0, 1))
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(mock)
	_, err = repo.Create(context.Background(), 1, &CreateVendaRequest{
		ClienteID:      5,
		FuncionarioID:  9,
		FormaPagamento: "dinheiro",
		Itens:          []VendaItemRequest{{ProdutoID: i64(41), Quantidade: 3}},
	})
	if !errors.Is(err, ErrEstoqueInsuficiente) {
		t.Errorf("err = %v, want ErrEstoqueInsuficiente", err)
	}
}

func TestCreateVendaRequest_Validate(t *testing.T) {
	cases := []struct {
		name string
		req  CreateVendaRequest
		want error
	}{
		{"no cliente", CreateVendaRequest{}, ErrMissingCliente},
		{"no items", CreateVendaRequest{ClienteID: 1}, ErrMissingItens},
		{"empty item", CreateVendaRequest{ClienteID: 1, Itens: []VendaItemRequest{{}}}, ErrItemSemReferencia},
		{"double ref", CreateVendaRequest{ClienteID: 1, Itens: []VendaItemRequest{{ProdutoID: i64(1), ServicoID: i64(2)}}}, ErrItemSemReferencia},
		{"ok", CreateVendaRequest{ClienteID: 1, Itens: []VendaItemRequest{{ServicoID: i64(2)}}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.Validate(); !errors.Is(got, tc.want) {
				t.Errorf("Validate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpdateStatus_Invalid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithDB(mock)
	if err := repo.UpdateStatus(context.Background(), 1, 2, "estornado"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}
