package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/patasoft/petshop-platform/internal/http/middleware"
	"github.com/patasoft/petshop-platform/internal/notify"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

var (
	ErrCredenciaisInvalidas = errors.New("auth: credenciais invalidas")
	ErrSenhaFraca           = errors.New("auth: senha muito curta")
)

// Service implements login, token issuing and password recovery.
type Service struct {
	repo          *Repository
	emails        notify.EmailSender
	logger        *logging.Logger
	jwtSecret     []byte
	tokenTTL      time.Duration
	resetTokenTTL time.Duration
	resetBaseURL  string
	bcryptCost    int
	now           func() time.Time
}

type ServiceConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	ResetBaseURL  string
	BCryptCost    int
}

func NewService(repo *Repository, emails notify.EmailSender, cfg ServiceConfig, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if emails == nil {
		emails = notify.NewStubEmailSender(logger)
	}
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:          repo,
		emails:        emails,
		logger:        logger,
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenTTL:      cfg.TokenTTL,
		resetTokenTTL: cfg.ResetTokenTTL,
		resetBaseURL:  cfg.ResetBaseURL,
		bcryptCost:    cfg.BCryptCost,
		now:           time.Now,
	}
}

// Login verifies credentials and issues a signed token. A wrong login and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, empresaCode, login, senha string) (string, *Funcionario, error) {
	f, err := s.repo.ByLogin(ctx, empresaCode, login)
	if err != nil {
		if errors.Is(err, ErrFuncionarioNotFound) {
			return "", nil, ErrCredenciaisInvalidas
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(f.Senha), []byte(senha)); err != nil {
		return "", nil, ErrCredenciaisInvalidas
	}

	now := s.now()
	claims := middleware.UserClaims{
		FuncionarioID: f.ID,
		Nome:          f.Nome,
		Cargo:         f.Cargo,
		Empresa:       f.Empresa,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", f.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return token, f, nil
}

// ActiveAccount reloads the account behind a token. Tokens issued before a
// deactivation stop answering here with ErrFuncionarioNotFound.
func (s *Service) ActiveAccount(ctx context.Context, funcionarioID int64) (*Funcionario, error) {
	return s.repo.ByID(ctx, funcionarioID)
}

// RequestReset emails a recovery link. Unknown emails succeed silently so
// the endpoint doesn't leak which addresses exist.
func (s *Service) RequestReset(ctx context.Context, empresaCode, email string) error {
	f, err := s.repo.ByEmail(ctx, empresaCode, email)
	if err != nil {
		if errors.Is(err, ErrFuncionarioNotFound) {
			s.logger.Info("reset requested for unknown email", "empresa", empresaCode)
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.repo.SaveResetToken(ctx, token, f.ID, s.now().Add(s.resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s?token=%s", s.resetBaseURL, token)
	msg := notify.EmailMessage{
		To:      f.Email,
		ToName:  f.Nome,
		Subject: "Recuperacao de senha",
		Body:    fmt.Sprintf("Ola %s,\n\nPara redefinir sua senha acesse: %s\n\nO link expira em %s.", f.Nome, link, s.resetTokenTTL),
	}
	if err := s.emails.Send(ctx, msg); err != nil {
		return fmt.Errorf("auth: send reset email: %w", err)
	}
	return nil
}

// ConfirmReset consumes the token and stores the new password hash.
func (s *Service) ConfirmReset(ctx context.Context, token, novaSenha string) error {
	if len(novaSenha) < 6 {
		return ErrSenhaFraca
	}
	funcionarioID, err := s.repo.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("auth: hash senha: %w", err)
	}
	return s.repo.UpdateSenha(ctx, funcionarioID, string(hash))
}
