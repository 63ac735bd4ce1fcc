package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clienteColumns = `id_cliente, nome, cpf, telefone, email,
	       endereco_rua, endereco_numero, endereco_complemento, endereco_bairro,
	       endereco_cidade, endereco_estado, endereco_cep,
	       ativo, created_at, updated_at`

// queryer is the subset of pgxpool.Pool the repository needs.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository stores clients and their pets, scoped by tenant.
type Repository struct {
	db queryer
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("clients: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db queryer) *Repository {
	return &Repository{db: db}
}

// List returns active clients for the tenant ordered by name.
func (r *Repository) List(ctx context.Context, empresaID int64) ([]Cliente, error) {
	query := `
		SELECT ` + clienteColumns + `
		FROM clientes
		WHERE id_empresa = $1 AND ativo = TRUE AND deleted_at IS NULL
		ORDER BY nome
	`
	rows, err := r.db.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	var out []Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches one active client scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, empresaID, id int64) (*Cliente, error) {
	query := `
		SELECT ` + clienteColumns + `
		FROM clientes
		WHERE id_cliente = $1 AND id_empresa = $2 AND ativo = TRUE AND deleted_at IS NULL
	`
	c, err := scanCliente(r.db.QueryRow(ctx, query, id, empresaID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClienteNotFound
		}
		return nil, fmt.Errorf("clients: get: %w", err)
	}
	return &c, nil
}

// Create inserts a new client row.
func (r *Repository) Create(ctx context.Context, empresaID int64, req *CreateClienteRequest) (*Cliente, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO clientes (id_empresa, nome, cpf, telefone, email,
		                      endereco_rua, endereco_numero, endereco_complemento, endereco_bairro,
		                      endereco_cidade, endereco_estado, endereco_cep)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id_cliente
	`
	var id int64
	err := r.db.QueryRow(ctx, query,
		empresaID, req.Nome, req.CPF, req.Telefone, req.Email,
		req.Endereco.Rua, req.Endereco.Numero, req.Endereco.Complemento, req.Endereco.Bairro,
		req.Endereco.Cidade, req.Endereco.Estado, req.Endereco.CEP,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("clients: insert: %w", err)
	}
	return r.GetByID(ctx, empresaID, id)
}

// Update changes only the provided fields.
func (r *Repository) Update(ctx context.Context, empresaID, id int64, req *UpdateClienteRequest) (*Cliente, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, empresaID}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if req.Nome != nil {
		add("nome", *req.Nome)
	}
	if req.Telefone != nil {
		add("telefone", *req.Telefone)
	}
	if req.Email != nil {
		add("email", *req.Email)
	}
	if req.Endereco != nil {
		add("endereco_rua", req.Endereco.Rua)
		add("endereco_numero", req.Endereco.Numero)
		add("endereco_complemento", req.Endereco.Complemento)
		add("endereco_bairro", req.Endereco.Bairro)
		add("endereco_cidade", req.Endereco.Cidade)
		add("endereco_estado", req.Endereco.Estado)
		add("endereco_cep", req.Endereco.CEP)
	}

	query := fmt.Sprintf(`
		UPDATE clientes SET %s
		WHERE id_cliente = $1 AND id_empresa = $2 AND ativo = TRUE AND deleted_at IS NULL
	`, strings.Join(sets, ", "))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clients: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrClienteNotFound
	}
	return r.GetByID(ctx, empresaID, id)
}

// SoftDelete marks the client inactive instead of removing rows.
func (r *Repository) SoftDelete(ctx context.Context, empresaID, id int64) error {
	query := `
		UPDATE clientes SET ativo = FALSE, deleted_at = now(), updated_at = now()
		WHERE id_cliente = $1 AND id_empresa = $2 AND ativo = TRUE
	`
	tag, err := r.db.Exec(ctx, query, id, empresaID)
	if err != nil {
		return fmt.Errorf("clients: soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClienteNotFound
	}
	return nil
}

// PetsByCliente lists the client's active pets ordered by name.
func (r *Repository) PetsByCliente(ctx context.Context, empresaID, clienteID int64) ([]Pet, error) {
	query := `
		SELECT id_pet, nome, especie, raca, data_nascimento, id_cliente, ativo, created_at
		FROM pets
		WHERE id_cliente = $1 AND id_empresa = $2 AND ativo = TRUE AND deleted_at IS NULL
		ORDER BY nome
	`
	rows, err := r.db.Query(ctx, query, clienteID, empresaID)
	if err != nil {
		return nil, fmt.Errorf("clients: list pets: %w", err)
	}
	defer rows.Close()

	var out []Pet
	for rows.Next() {
		var p Pet
		if err := rows.Scan(&p.ID, &p.Nome, &p.Especie, &p.Raca, &p.DataNascimento, &p.ClienteID, &p.Ativo, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("clients: scan pet: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanCliente(row pgx.Row) (Cliente, error) {
	var c Cliente
	err := row.Scan(
		&c.ID, &c.Nome, &c.CPF, &c.Telefone, &c.Email,
		&c.Endereco.Rua, &c.Endereco.Numero, &c.Endereco.Complemento, &c.Endereco.Bairro,
		&c.Endereco.Cidade, &c.Endereco.Estado, &c.Endereco.CEP,
		&c.Ativo, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
