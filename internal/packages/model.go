package packages

import (
	"errors"
	"strings"
	"time"
)

// Package kinds. Creditos grants a number of uses with an expiry; combo is a
// fixed service bundle consumed in a single visit.
const (
	TipoCombo    = "combo"
	TipoCreditos = "creditos"
)

// Client package statuses.
const (
	StatusAtivo    = "ativo"
	StatusUsado    = "usado"
	StatusExpirado = "expirado"
)

var (
	ErrPacoteNotFound        = errors.New("pacote não encontrado")
	ErrClientePacoteNotFound = errors.New("pacote do cliente não encontrado")
	ErrClienteNotFound       = errors.New("cliente não encontrado")
	ErrClienteMismatch       = errors.New("id_cliente não corresponde ao cliente da URL")
	ErrInvalidNome           = errors.New("nome é obrigatório")
	ErrInvalidTipo           = errors.New("tipo deve ser 'combo' ou 'creditos'")
	ErrCreditosFields        = errors.New("pacotes tipo 'creditos' precisam de validade_dias e max_usos")
	ErrComboFields           = errors.New("pacotes tipo 'combo' não devem ter validade_dias ou max_usos")
	ErrPacoteInativo         = errors.New("pacote inválido ou inativo")
	ErrSemCreditos           = errors.New("pacote sem créditos disponíveis")
)

// Pacote is a purchasable bundle from the shop's catalog.
type Pacote struct {
	ID           int64           `json:"id_pacote"`
	Nome         string          `json:"nome"`
	Descricao    *string         `json:"descricao,omitempty"`
	Tipo         string          `json:"tipo"`
	PrecoBase    float64         `json:"preco_base"`
	ValidadeDias *int            `json:"validade_dias,omitempty"`
	MaxUsos      *int            `json:"max_usos,omitempty"`
	Ativo        bool            `json:"ativo"`
	CreatedAt    time.Time       `json:"created_at"`
	Servicos     []PacoteServico `json:"servicos"`
}

// PacoteServico is a service included in a package.
type PacoteServico struct {
	ServicoID  int64   `json:"id_servico"`
	Nome       string  `json:"nome"`
	Preco      float64 `json:"preco"`
	Quantidade int     `json:"quantidade"`
}

// ClientePacote is a package assigned to a client, tracking remaining uses.
type ClientePacote struct {
	ID            int64           `json:"id_cliente_pacote"`
	ClienteID     int64           `json:"id_cliente"`
	PacoteID      int64           `json:"id_pacote"`
	Nome          string          `json:"nome"`
	Tipo          string          `json:"tipo"`
	UsosRestantes *int            `json:"usos_restantes,omitempty"`
	Status        string          `json:"status"`
	ExpiraEm      *time.Time      `json:"expira_em,omitempty"`
	Servicos      []PacoteServico `json:"servicos"`
}

// CreatePacoteRequest is the payload for defining a package.
type CreatePacoteRequest struct {
	Nome         string  `json:"nome"`
	Descricao    *string `json:"descricao"`
	Tipo         string  `json:"tipo"`
	PrecoBase    float64 `json:"preco_base"`
	ValidadeDias *int    `json:"validade_dias"`
	MaxUsos      *int    `json:"max_usos"`
	ServicosIDs  []int64 `json:"servicos_ids"`
}

// Validate enforces the tipo-specific field rules.
func (r *CreatePacoteRequest) Validate() error {
	if strings.TrimSpace(r.Nome) == "" {
		return ErrInvalidNome
	}
	switch r.Tipo {
	case TipoCreditos:
		if r.ValidadeDias == nil || r.MaxUsos == nil {
			return ErrCreditosFields
		}
	case TipoCombo:
		if r.ValidadeDias != nil || r.MaxUsos != nil {
			return ErrComboFields
		}
	default:
		return ErrInvalidTipo
	}
	return nil
}

// AssignRequest attaches a catalog package to a client.
type AssignRequest struct {
	ClienteID int64 `json:"id_cliente"`
	PacoteID  int64 `json:"id_pacote"`
}
