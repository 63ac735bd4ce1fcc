package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository stores the service and product catalog, scoped by tenant.
type Repository struct {
	db queryer
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &Repository{db: pool}
}

func NewRepositoryWithDB(db queryer) *Repository {
	return &Repository{db: db}
}

// ListServicos returns active services ordered by name.
func (r *Repository) ListServicos(ctx context.Context, empresaID int64) ([]Servico, error) {
	query := `
		SELECT id_servico, nome, descricao, preco_base, duracao_padrao, ativo, created_at
		FROM servicos
		WHERE id_empresa = $1 AND ativo = TRUE AND deleted_at IS NULL
		ORDER BY nome
	`
	rows, err := r.db.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list servicos: %w", err)
	}
	defer rows.Close()

	var out []Servico
	for rows.Next() {
		var s Servico
		if err := rows.Scan(&s.ID, &s.Nome, &s.Descricao, &s.PrecoBase, &s.DuracaoPadrao, &s.Ativo, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan servico: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetServico fetches one active service.
func (r *Repository) GetServico(ctx context.Context, empresaID, id int64) (*Servico, error) {
	query := `
		SELECT id_servico, nome, descricao, preco_base, duracao_padrao, ativo, created_at
		FROM servicos
		WHERE id_servico = $1 AND id_empresa = $2 AND ativo = TRUE AND deleted_at IS NULL
	`
	var s Servico
	err := r.db.QueryRow(ctx, query, id, empresaID).
		Scan(&s.ID, &s.Nome, &s.Descricao, &s.PrecoBase, &s.DuracaoPadrao, &s.Ativo, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServicoNotFound
		}
		return nil, fmt.Errorf("catalog: get servico: %w", err)
	}
	return &s, nil
}

// CreateServico inserts a new catalog service.
func (r *Repository) CreateServico(ctx context.Context, empresaID int64, req *ServicoRequest) (*Servico, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO servicos (id_empresa, nome, descricao, preco_base, duracao_padrao)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_servico
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, empresaID, req.Nome, req.Descricao, req.PrecoBase, req.DuracaoPadrao).Scan(&id); err != nil {
		return nil, fmt.Errorf("catalog: insert servico: %w", err)
	}
	return r.GetServico(ctx, empresaID, id)
}

// UpdateServico replaces the mutable fields of a service.
func (r *Repository) UpdateServico(ctx context.Context, empresaID, id int64, req *ServicoRequest) (*Servico, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		UPDATE servicos
		SET nome = $3, descricao = $4, preco_base = $5, duracao_padrao = $6, updated_at = now()
		WHERE id_servico = $1 AND id_empresa = $2 AND ativo = TRUE AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, empresaID, req.Nome, req.Descricao, req.PrecoBase, req.DuracaoPadrao)
	if err != nil {
		return nil, fmt.Errorf("catalog: update servico: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrServicoNotFound
	}
	return r.GetServico(ctx, empresaID, id)
}

// DeleteServico soft deletes a service.
func (r *Repository) DeleteServico(ctx context.Context, empresaID, id int64) error {
	query := `
		UPDATE servicos SET ativo = FALSE, deleted_at = now(), updated_at = now()
		WHERE id_servico = $1 AND id_empresa = $2 AND ativo = TRUE
	`
	tag, err := r.db.Exec(ctx, query, id, empresaID)
	if err != nil {
		return fmt.Errorf("catalog: delete servico: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServicoNotFound
	}
	return nil
}

// ListProdutos returns active products ordered by name.
func (r *Repository) ListProdutos(ctx context.Context, empresaID int64) ([]Produto, error) {
	query := `
		SELECT id_produto, nome, descricao, preco, estoque, ativo, created_at
		FROM produtos
		WHERE id_empresa = $1 AND ativo = TRUE AND deleted_at IS NULL
		ORDER BY nome
	`
	rows, err := r.db.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list produtos: %w", err)
	}
	defer rows.Close()

	var out []Produto
	for rows.Next() {
		var p Produto
		if err := rows.Scan(&p.ID, &p.Nome, &p.Descricao, &p.Preco, &p.Estoque, &p.Ativo, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan produto: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduto fetches one active product.
func (r *Repository) GetProduto(ctx context.Context, empresaID, id int64) (*Produto, error) {
	query := `
		SELECT id_produto, nome, descricao, preco, estoque, ativo, created_at
		FROM produtos
		WHERE id_produto = $1 AND id_empresa = $2 AND ativo = TRUE AND deleted_at IS NULL
	`
	var p Produto
	err := r.db.QueryRow(ctx, query, id, empresaID).
		Scan(&p.ID, &p.Nome, &p.Descricao, &p.Preco, &p.Estoque, &p.Ativo, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProdutoNotFound
		}
		return nil, fmt.Errorf("catalog: get produto: %w", err)
	}
	return &p, nil
}

// CreateProduto inserts a new product.
func (r *Repository) CreateProduto(ctx context.Context, empresaID int64, req *ProdutoRequest) (*Produto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO produtos (id_empresa, nome, descricao, preco, estoque)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_produto
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, empresaID, req.Nome, req.Descricao, req.Preco, req.Estoque).Scan(&id); err != nil {
		return nil, fmt.Errorf("catalog: insert produto: %w", err)
	}
	return r.GetProduto(ctx, empresaID, id)
}

// UpdateProduto replaces the mutable fields of a product.
func (r *Repository) UpdateProduto(ctx context.Context, empresaID, id int64, req *ProdutoRequest) (*Produto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		UPDATE produtos
		SET nome = $3, descricao = $4, preco = $5, estoque = $6, updated_at = now()
		WHERE id_produto = $1 AND id_empresa = $2 AND ativo = TRUE AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, empresaID, req.Nome, req.Descricao, req.Preco, req.Estoque)
	if err != nil {
		return nil, fmt.Errorf("catalog: update produto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrProdutoNotFound
	}
	return r.GetProduto(ctx, empresaID, id)
}

// DeleteProduto soft deletes a product.
func (r *Repository) DeleteProduto(ctx context.Context, empresaID, id int64) error {
	query := `
		UPDATE produtos SET ativo = FALSE, deleted_at = now(), updated_at = now()
		WHERE id_produto = $1 AND id_empresa = $2 AND ativo = TRUE
	`
	tag, err := r.db.Exec(ctx, query, id, empresaID)
	if err != nil {
		return fmt.Errorf("catalog: delete produto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProdutoNotFound
	}
	return nil
}
