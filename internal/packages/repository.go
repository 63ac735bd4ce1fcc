package packages

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryer is the query surface shared by pgxpool.Pool and pgx.Tx. Use
// registration runs inside the appointment-creation transaction, so the
// methods that take part in it accept a Queryer instead of binding to the pool.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository stores package definitions and per-client assignments.
type Repository struct {
	db Queryer
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("packages: pgx pool required")
	}
	return &Repository{db: pool}
}

func NewRepositoryWithDB(db Queryer) *Repository {
	return &Repository{db: db}
}

// ListPacotes returns catalog packages with their included services.
func (r *Repository) ListPacotes(ctx context.Context, empresaID int64) ([]Pacote, error) {
	query := `
		SELECT id_pacote, nome, descricao, tipo, preco_base, validade_dias, max_usos, ativo, created_at
		FROM pacotes
		WHERE id_empresa = $1 AND ativo = TRUE
		ORDER BY nome
	`
	rows, err := r.db.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("packages: list: %w", err)
	}
	defer rows.Close()

	var out []Pacote
	for rows.Next() {
		var p Pacote
		if err := rows.Scan(&p.ID, &p.Nome, &p.Descricao, &p.Tipo, &p.PrecoBase, &p.ValidadeDias, &p.MaxUsos, &p.Ativo, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("packages: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		servicos, err := r.servicosDoPacote(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Servicos = servicos
	}
	return out, nil
}

// CreatePacote inserts a package and its service associations.
func (r *Repository) CreatePacote(ctx context.Context, empresaID int64, req *CreatePacoteRequest) (*Pacote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO pacotes (id_empresa, nome, descricao, tipo, preco_base, validade_dias, max_usos)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id_pacote, created_at
	`
	p := Pacote{
		Nome:         req.Nome,
		Descricao:    req.Descricao,
		Tipo:         req.Tipo,
		PrecoBase:    req.PrecoBase,
		ValidadeDias: req.ValidadeDias,
		MaxUsos:      req.MaxUsos,
		Ativo:        true,
		Servicos:     []PacoteServico{},
	}
	err := r.db.QueryRow(ctx, query,
		empresaID, req.Nome, req.Descricao, req.Tipo, req.PrecoBase, req.ValidadeDias, req.MaxUsos,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("packages: insert: %w", err)
	}

	for _, servicoID := range req.ServicosIDs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO pacotes_servicos (id_pacote, id_servico, quantidade) VALUES ($1, $2, 1)`,
			p.ID, servicoID,
		)
		if err != nil {
			return nil, fmt.Errorf("packages: associate servico %d: %w", servicoID, err)
		}
	}
	return &p, nil
}

// AssignToCliente creates a clientes_pacotes row with expiry and use counters
// derived from the package definition.
func (r *Repository) AssignToCliente(ctx context.Context, empresaID int64, req *AssignRequest) (*ClientePacote, error) {
	var tipo string
	var maxUsos, validadeDias *int
	err := r.db.QueryRow(ctx,
		`SELECT tipo, max_usos, validade_dias FROM pacotes WHERE id_pacote = $1 AND id_empresa = $2 AND ativo = TRUE`,
		req.PacoteID, empresaID,
	).Scan(&tipo, &maxUsos, &validadeDias)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPacoteNotFound
		}
		return nil, fmt.Errorf("packages: load pacote: %w", err)
	}

	var clienteOK bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM clientes WHERE id_cliente = $1 AND id_empresa = $2 AND ativo = TRUE)`,
		req.ClienteID, empresaID,
	).Scan(&clienteOK)
	if err != nil {
		return nil, fmt.Errorf("packages: check cliente: %w", err)
	}
	if !clienteOK {
		return nil, ErrClienteNotFound
	}

	query := `
		INSERT INTO clientes_pacotes (id_empresa, id_cliente, id_pacote, usos_restantes, expira_em)
		VALUES ($1, $2, $3, $4, CASE WHEN $5::int IS NULL THEN NULL ELSE now() + make_interval(days => $5::int) END)
		RETURNING id_cliente_pacote, status, expira_em
	`
	cp := ClientePacote{
		ClienteID:     req.ClienteID,
		PacoteID:      req.PacoteID,
		Tipo:          tipo,
		UsosRestantes: maxUsos,
		Servicos:      []PacoteServico{},
	}
	err = r.db.QueryRow(ctx, query, empresaID, req.ClienteID, req.PacoteID, maxUsos, validadeDias).
		Scan(&cp.ID, &cp.Status, &cp.ExpiraEm)
	if err != nil {
		return nil, fmt.Errorf("packages: assign: %w", err)
	}
	return &cp, nil
}

// ActiveByCliente lists a client's active packages with remaining uses and the
// service set each one unlocks.
func (r *Repository) ActiveByCliente(ctx context.Context, empresaID, clienteID int64) ([]ClientePacote, error) {
	query := `
		SELECT cp.id_cliente_pacote, cp.id_cliente, cp.id_pacote, p.nome, p.tipo,
		       cp.usos_restantes, cp.status, cp.expira_em
		FROM clientes_pacotes cp
		JOIN pacotes p ON p.id_pacote = cp.id_pacote
		WHERE cp.id_cliente = $1 AND cp.id_empresa = $2 AND cp.status = 'ativo'
		  AND (cp.expira_em IS NULL OR cp.expira_em > now())
		ORDER BY cp.created_at
	`
	rows, err := r.db.Query(ctx, query, clienteID, empresaID)
	if err != nil {
		return nil, fmt.Errorf("packages: active by cliente: %w", err)
	}
	defer rows.Close()

	var out []ClientePacote
	for rows.Next() {
		var cp ClientePacote
		if err := rows.Scan(&cp.ID, &cp.ClienteID, &cp.PacoteID, &cp.Nome, &cp.Tipo, &cp.UsosRestantes, &cp.Status, &cp.ExpiraEm); err != nil {
			return nil, fmt.Errorf("packages: scan cliente pacote: %w", err)
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		servicos, err := r.servicosDoPacote(ctx, out[i].PacoteID)
		if err != nil {
			return nil, err
		}
		out[i].Servicos = servicos
	}
	return out, nil
}

// RegisterUse records one use of a client package inside the caller's
// transaction. Creditos packages decrement usos_restantes and flip to 'usado'
// at zero; combo packages are single-shot and flip immediately. The lookup is
// pinned to the empresa so a package id from another tenant behaves like a
// missing one.
func RegisterUse(ctx context.Context, q Queryer, empresaID, clientePacoteID, agendamentoID, servicoID int64, observacoes *string) error {
	var tipo, status string
	var usosRestantes *int
	err := q.QueryRow(ctx, `
		SELECT p.tipo, cp.status, cp.usos_restantes
		FROM clientes_pacotes cp
		JOIN pacotes p ON p.id_pacote = cp.id_pacote
		WHERE cp.id_cliente_pacote = $1 AND cp.id_empresa = $2
		FOR UPDATE OF cp
	`, clientePacoteID, empresaID).Scan(&tipo, &status, &usosRestantes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPacoteInativo
		}
		return fmt.Errorf("packages: load cliente pacote: %w", err)
	}
	if status != StatusAtivo {
		return ErrPacoteInativo
	}

	_, err = q.Exec(ctx, `
		INSERT INTO clientes_pacotes_uso (id_cliente_pacote, id_agendamento, id_servico, observacoes)
		VALUES ($1, $2, $3, $4)
	`, clientePacoteID, agendamentoID, servicoID, observacoes)
	if err != nil {
		return fmt.Errorf("packages: record use: %w", err)
	}

	switch tipo {
	case TipoCreditos:
		if usosRestantes == nil || *usosRestantes <= 0 {
			return ErrSemCreditos
		}
		restante := *usosRestantes - 1
		novoStatus := StatusAtivo
		if restante == 0 {
			novoStatus = StatusUsado
		}
		_, err = q.Exec(ctx, `
			UPDATE clientes_pacotes SET usos_restantes = $3, status = $4, updated_at = now()
			WHERE id_cliente_pacote = $1 AND id_empresa = $2
		`, clientePacoteID, empresaID, restante, novoStatus)
	default: // combo is consumed by its first use
		_, err = q.Exec(ctx, `
			UPDATE clientes_pacotes SET status = 'usado', updated_at = now()
			WHERE id_cliente_pacote = $1 AND id_empresa = $2
		`, clientePacoteID, empresaID)
	}
	if err != nil {
		return fmt.Errorf("packages: update counters: %w", err)
	}
	return nil
}

func (r *Repository) servicosDoPacote(ctx context.Context, pacoteID int64) ([]PacoteServico, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id_servico, s.nome, s.preco_base, ps.quantidade
		FROM pacotes_servicos ps
		JOIN servicos s ON s.id_servico = ps.id_servico
		WHERE ps.id_pacote = $1
		ORDER BY s.nome
	`, pacoteID)
	if err != nil {
		return nil, fmt.Errorf("packages: servicos do pacote: %w", err)
	}
	defer rows.Close()

	out := []PacoteServico{}
	for rows.Next() {
		var ps PacoteServico
		if err := rows.Scan(&ps.ServicoID, &ps.Nome, &ps.Preco, &ps.Quantidade); err != nil {
			return nil, fmt.Errorf("packages: scan servico: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}
