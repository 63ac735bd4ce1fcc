package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patasoft/petshop-platform/internal/packages"
)

// txDB is the pool surface the repository needs; pgxmock satisfies it.
type txDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository stores appointments, scoped by tenant.
type Repository struct {
	db txDB
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

func NewRepositoryWithDB(db txDB) *Repository {
	return &Repository{db: db}
}

// Create books an appointment. When a client package is referenced the use
// registration runs in the same transaction, so a package without credits
// rolls the whole booking back.
func (r *Repository) Create(ctx context.Context, empresaID int64, req *CreateRequest) (int64, error) {
	when, err := req.Validate()
	if err != nil {
		return 0, err
	}
	duracao := req.DuracaoEstimada
	if duracao <= 0 {
		duracao = 45
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Foreign keys only prove the rows exist somewhere; pin each one to the
	// empresa before booking.
	var petOK, servicoOK, funcionarioOK bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM pets WHERE id_pet = $2 AND id_empresa = $1 AND ativo = TRUE),
		       EXISTS (SELECT 1 FROM servicos WHERE id_servico = $3 AND id_empresa = $1 AND ativo = TRUE),
		       EXISTS (SELECT 1 FROM funcionarios WHERE id_funcionario = $4 AND id_empresa = $1 AND ativo = TRUE)
	`, empresaID, req.PetID, req.ServicoID, req.FuncionarioID).Scan(&petOK, &servicoOK, &funcionarioOK)
	if err != nil {
		return 0, fmt.Errorf("appointments: check ownership: %w", err)
	}
	switch {
	case !petOK:
		return 0, ErrPetNotFound
	case !servicoOK:
		return 0, ErrServicoNotFound
	case !funcionarioOK:
		return 0, ErrFuncionarioNotFound
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO agendamentos (id_empresa, id_pet, id_servico, id_funcionario, data_hora, duracao_estimada, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id_agendamento
	`, empresaID, req.PetID, req.ServicoID, req.FuncionarioID, when, duracao, req.Observacoes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("appointments: insert: %w", err)
	}

	if req.ClientePacoteID != nil {
		if err := packages.RegisterUse(ctx, tx, empresaID, *req.ClientePacoteID, id, req.ServicoID, req.Observacoes); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("appointments: commit: %w", err)
	}
	return id, nil
}

// ListByDate returns the appointments of one calendar day ordered by time.
func (r *Repository) ListByDate(ctx context.Context, empresaID int64, date string) ([]Agendamento, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDataHora
	}
	query := `
		SELECT a.id_agendamento, a.data_hora, a.status, a.duracao_estimada, a.observacoes,
		       a.id_pet, a.id_servico, a.id_funcionario,
		       p.nome AS pet_nome, c.nome AS cliente_nome, s.nome AS servico_nome
		FROM agendamentos a
		JOIN pets p ON p.id_pet = a.id_pet
		JOIN clientes c ON c.id_cliente = p.id_cliente
		JOIN servicos s ON s.id_servico = a.id_servico
		WHERE a.id_empresa = $1 AND a.data_hora >= $2 AND a.data_hora < $3
		ORDER BY a.data_hora
	`
	rows, err := r.db.Query(ctx, query, empresaID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("appointments: list by date: %w", err)
	}
	defer rows.Close()

	var out []Agendamento
	for rows.Next() {
		var a Agendamento
		if err := rows.Scan(
			&a.ID, &a.DataHora, &a.Status, &a.DuracaoEstimada, &a.Observacoes,
			&a.PetID, &a.ServicoID, &a.FuncionarioID,
			&a.PetNome, &a.ClienteNome, &a.ServicoNome,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CalendarCounts aggregates appointments per day for one month.
func (r *Repository) CalendarCounts(ctx context.Context, empresaID int64, ano, mes int) ([]DayCount, error) {
	if err := ValidateCalendarPeriod(ano, mes); err != nil {
		return nil, err
	}
	first := time.Date(ano, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)
	query := `
		SELECT to_char(data_hora, 'YYYY-MM-DD') AS dia, COUNT(*) AS total
		FROM agendamentos
		WHERE id_empresa = $1 AND data_hora >= $2 AND data_hora < $3
		GROUP BY 1
		ORDER BY 1
	`
	rows, err := r.db.Query(ctx, query, empresaID, first, first.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("appointments: calendar counts: %w", err)
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Dia, &dc.Total); err != nil {
			return nil, fmt.Errorf("appointments: scan count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// UpdateStatus transitions an appointment to a new status from the closed set.
func (r *Repository) UpdateStatus(ctx context.Context, empresaID, id int64, novo Status) error {
	if _, err := ParseStatus(string(novo)); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE agendamentos SET status = $3, updated_at = now()
		WHERE id_agendamento = $1 AND id_empresa = $2
	`, id, empresaID, string(novo))
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAgendamentoNotFound
	}
	return nil
}
