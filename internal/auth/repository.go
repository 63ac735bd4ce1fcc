package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrFuncionarioNotFound = errors.New("auth: funcionario nao encontrado")
	ErrTokenInvalido       = errors.New("auth: token de recuperacao invalido")
)

// Funcionario is a staff account. Senha carries the bcrypt hash and never
// leaves the package.
type Funcionario struct {
	ID        int64
	EmpresaID int64
	Empresa   string
	Nome      string
	Cargo     string
	Login     string
	Senha     string
	Email     string
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository loads staff accounts and password reset tokens.
type Repository struct {
	db queryer
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return &Repository{db: pool}
}

func NewRepositoryWithDB(db queryer) *Repository {
	return &Repository{db: db}
}

// ByLogin resolves a staff account by login within one tenant.
func (r *Repository) ByLogin(ctx context.Context, empresaCode, login string) (*Funcionario, error) {
	var f Funcionario
	err := r.db.QueryRow(ctx, `
		SELECT f.id_funcionario, f.id_empresa, e.codigo, f.nome, f.cargo, f.login, f.senha, f.email
		FROM funcionarios f
		JOIN empresas e ON e.id_empresa = f.id_empresa
		WHERE e.codigo = $1 AND f.login = $2 AND f.ativo = TRUE AND f.deleted_at IS NULL
	`, empresaCode, login).Scan(&f.ID, &f.EmpresaID, &f.Empresa, &f.Nome, &f.Cargo, &f.Login, &f.Senha, &f.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFuncionarioNotFound
		}
		return nil, fmt.Errorf("auth: load funcionario: %w", err)
	}
	return &f, nil
}

// ByID loads a staff account by primary key, regardless of tenant.
func (r *Repository) ByID(ctx context.Context, id int64) (*Funcionario, error) {
	var f Funcionario
	err := r.db.QueryRow(ctx, `
		SELECT f.id_funcionario, f.id_empresa, e.codigo, f.nome, f.cargo, f.login, f.senha, f.email
		FROM funcionarios f
		JOIN empresas e ON e.id_empresa = f.id_empresa
		WHERE f.id_funcionario = $1 AND f.ativo = TRUE AND f.deleted_at IS NULL
	`, id).Scan(&f.ID, &f.EmpresaID, &f.Empresa, &f.Nome, &f.Cargo, &f.Login, &f.Senha, &f.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFuncionarioNotFound
		}
		return nil, fmt.Errorf("auth: load funcionario: %w", err)
	}
	return &f, nil
}

// ByEmail finds an account by email within one tenant, for reset requests.
func (r *Repository) ByEmail(ctx context.Context, empresaCode, email string) (*Funcionario, error) {
	var f Funcionario
	err := r.db.QueryRow(ctx, `
		SELECT f.id_funcionario, f.id_empresa, e.codigo, f.nome, f.cargo, f.login, f.senha, f.email
		FROM funcionarios f
		JOIN empresas e ON e.id_empresa = f.id_empresa
		WHERE e.codigo = $1 AND f.email = $2 AND f.ativo = TRUE AND f.deleted_at IS NULL
	`, empresaCode, email).Scan(&f.ID, &f.EmpresaID, &f.Empresa, &f.Nome, &f.Cargo, &f.Login, &f.Senha, &f.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFuncionarioNotFound
		}
		return nil, fmt.Errorf("auth: load funcionario: %w", err)
	}
	return &f, nil
}

// SaveResetToken stores a one-shot password reset token.
func (r *Repository) SaveResetToken(ctx context.Context, token string, funcionarioID int64, expiraEm time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_resets (token, id_funcionario, expira_em)
		VALUES ($1, $2, $3)
	`, token, funcionarioID, expiraEm)
	if err != nil {
		return fmt.Errorf("auth: save reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken marks a token used and returns its owner. Expired or
// already-used tokens fail with ErrTokenInvalido.
func (r *Repository) ConsumeResetToken(ctx context.Context, token string) (int64, error) {
	var funcionarioID int64
	err := r.db.QueryRow(ctx, `
		UPDATE password_resets SET usado = TRUE
		WHERE token = $1 AND usado = FALSE AND expira_em > now()
		RETURNING id_funcionario
	`, token).Scan(&funcionarioID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrTokenInvalido
		}
		return 0, fmt.Errorf("auth: consume reset token: %w", err)
	}
	return funcionarioID, nil
}

// UpdateSenha replaces the stored password hash.
func (r *Repository) UpdateSenha(ctx context.Context, funcionarioID int64, hash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE funcionarios SET senha = $2, updated_at = now() WHERE id_funcionario = $1
	`, funcionarioID, hash)
	if err != nil {
		return fmt.Errorf("auth: update senha: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFuncionarioNotFound
	}
	return nil
}
