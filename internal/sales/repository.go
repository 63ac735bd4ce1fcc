package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository stores sales, scoped by tenant.
type Repository struct {
	db txDB
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("sales: pgx pool required")
	}
	return &Repository{db: pool}
}

func NewRepositoryWithDB(db txDB) *Repository {
	return &Repository{db: db}
}

// Create registers a sale: snapshots unit prices, decrements product stock
// and totals the lines, all in one transaction.
func (r *Repository) Create(ctx context.Context, empresaID int64, req *CreateVendaRequest) (*Venda, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("sales: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	venda := Venda{
		ClienteID:      req.ClienteID,
		FuncionarioID:  req.FuncionarioID,
		FormaPagamento: req.FormaPagamento,
		Status:         StatusPendente,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO vendas (id_empresa, id_cliente, id_funcionario, forma_pagamento)
		VALUES ($1, $2, $3, $4)
		RETURNING id_venda, created_at
	`, empresaID, req.ClienteID, req.FuncionarioID, req.FormaPagamento).Scan(&venda.ID, &venda.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("sales: insert venda: %w", err)
	}

	for _, item := range req.Itens {
		qty := item.Quantidade
		if qty <= 0 {
			qty = 1
		}
		preco, err := r.resolvePreco(ctx, tx, empresaID, item, qty)
		if err != nil {
			return nil, err
		}

		var itemID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO vendas_itens (id_venda, id_produto, id_servico, id_pacote, quantidade, preco_unitario)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id_item
		`, venda.ID, item.ProdutoID, item.ServicoID, item.PacoteID, qty, preco).Scan(&itemID)
		if err != nil {
			return nil, fmt.Errorf("sales: insert item: %w", err)
		}

		venda.Itens = append(venda.Itens, VendaItem{
			ID:            itemID,
			ProdutoID:     item.ProdutoID,
			ServicoID:     item.ServicoID,
			PacoteID:      item.PacoteID,
			Quantidade:    qty,
			PrecoUnitario: preco,
		})
		venda.Total += preco * float64(qty)
	}

	if _, err := tx.Exec(ctx, `UPDATE vendas SET total = $2 WHERE id_venda = $1`, venda.ID, venda.Total); err != nil {
		return nil, fmt.Errorf("sales: set total: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("sales: commit: %w", err)
	}
	return &venda, nil
}

// List returns the tenant's sales, newest first, without line items.
func (r *Repository) List(ctx context.Context, empresaID int64) ([]Venda, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id_venda, id_cliente, id_funcionario, total, forma_pagamento, status, created_at
		FROM vendas
		WHERE id_empresa = $1
		ORDER BY created_at DESC
	`, empresaID)
	if err != nil {
		return nil, fmt.Errorf("sales: list: %w", err)
	}
	defer rows.Close()

	var out []Venda
	for rows.Next() {
		var v Venda
		if err := rows.Scan(&v.ID, &v.ClienteID, &v.FuncionarioID, &v.Total, &v.FormaPagamento, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("sales: scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a sale to pendente/pago/cancelado.
func (r *Repository) UpdateStatus(ctx context.Context, empresaID, id int64, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE vendas SET status = $3, updated_at = now()
		WHERE id_venda = $1 AND id_empresa = $2
	`, id, empresaID, status)
	if err != nil {
		return fmt.Errorf("sales: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendaNotFound
	}
	return nil
}

// resolvePreco snapshots the unit price of the referenced item and, for
// products, decrements stock while holding the row lock.
func (r *Repository) resolvePreco(ctx context.Context, tx pgx.Tx, empresaID int64, item VendaItemRequest, qty int) (float64, error) {
	switch {
	case item.ProdutoID != nil:
		var preco float64
		var estoque int
		err := tx.QueryRow(ctx, `
			SELECT preco, estoque FROM produtos
			WHERE id_produto = $1 AND id_empresa = $2 AND ativo = TRUE
			FOR UPDATE
		`, *item.ProdutoID, empresaID).Scan(&preco, &estoque)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrItemSemReferencia
			}
			return 0, fmt.Errorf("sales: load produto: %w", err)
		}
		if estoque < qty {
			return 0, ErrEstoqueInsuficiente
		}
		_, err = tx.Exec(ctx, `
			UPDATE produtos SET estoque = estoque - $2, updated_at = now() WHERE id_produto = $1
		`, *item.ProdutoID, qty)
		if err != nil {
			return 0, fmt.Errorf("sales: decrement estoque: %w", err)
		}
		return preco, nil
	case item.ServicoID != nil:
		var preco float64
		err := tx.QueryRow(ctx, `
			SELECT preco_base FROM servicos WHERE id_servico = $1 AND id_empresa = $2 AND ativo = TRUE
		`, *item.ServicoID, empresaID).Scan(&preco)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrItemSemReferencia
			}
			return 0, fmt.Errorf("sales: load servico: %w", err)
		}
		return preco, nil
	default:
		var preco float64
		err := tx.QueryRow(ctx, `
			SELECT preco_base FROM pacotes WHERE id_pacote = $1 AND id_empresa = $2 AND ativo = TRUE
		`, *item.PacoteID, empresaID).Scan(&preco)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrItemSemReferencia
			}
			return 0, fmt.Errorf("sales: load pacote: %w", err)
		}
		return preco, nil
	}
}
