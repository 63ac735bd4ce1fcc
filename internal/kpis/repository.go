package kpis

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dashboard holds the per-tenant indicators shown on the home panel.
type Dashboard struct {
	AgendamentosHoje int64         `json:"agendamentos_hoje"`
	ClientesAtivos   int64         `json:"clientes_ativos"`
	FaturamentoMes   float64       `json:"faturamento_mes"`
	VendasMes        int64         `json:"vendas_mes"`
	TopServicos      []ServicoRank `json:"top_servicos"`
}

// ServicoRank is one row of the most-booked services list.
type ServicoRank struct {
	ServicoID int64  `json:"id_servico"`
	Nome      string `json:"nome"`
	Total     int64  `json:"total"`
}

type statsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository computes dashboard aggregates.
type Repository struct {
	db statsDB
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("kpis: pgx pool required")
	}
	return &Repository{db: pool}
}

func NewRepositoryWithDB(db statsDB) *Repository {
	return &Repository{db: db}
}

// Dashboard aggregates today's appointments, active clients and the current
// month's billing for one tenant. now anchors "today" and "this month".
func (r *Repository) Dashboard(ctx context.Context, empresaID int64, now time.Time) (*Dashboard, error) {
	d := &Dashboard{}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM agendamentos
		WHERE id_empresa = $1 AND data_hora >= $2 AND data_hora < $3
	`, empresaID, dayStart, dayStart.AddDate(0, 0, 1)).Scan(&d.AgendamentosHoje)
	if err != nil {
		return nil, fmt.Errorf("kpis: count agendamentos: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM clientes
		WHERE id_empresa = $1 AND ativo = TRUE AND deleted_at IS NULL
	`, empresaID).Scan(&d.ClientesAtivos)
	if err != nil {
		return nil, fmt.Errorf("kpis: count clientes: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*) FROM vendas
		WHERE id_empresa = $1 AND status = 'pago' AND created_at >= $2 AND created_at < $3
	`, empresaID, monthStart, monthEnd).Scan(&d.FaturamentoMes, &d.VendasMes)
	if err != nil {
		return nil, fmt.Errorf("kpis: sum vendas: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.id_servico, s.nome, COUNT(*) AS total
		FROM agendamentos a
		JOIN servicos s ON s.id_servico = a.id_servico
		WHERE a.id_empresa = $1 AND a.data_hora >= $2 AND a.data_hora < $3
		GROUP BY s.id_servico, s.nome
		ORDER BY total DESC, s.nome
		LIMIT 5
	`, empresaID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("kpis: top servicos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sr ServicoRank
		if err := rows.Scan(&sr.ServicoID, &sr.Nome, &sr.Total); err != nil {
			return nil, fmt.Errorf("kpis: scan servico rank: %w", err)
		}
		d.TopServicos = append(d.TopServicos, sr)
	}
	return d, rows.Err()
}
