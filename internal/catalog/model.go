package catalog

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrServicoNotFound = errors.New("serviço não encontrado")
	ErrProdutoNotFound = errors.New("produto não encontrado")
	ErrInvalidNome     = errors.New("nome é obrigatório")
	ErrInvalidPreco    = errors.New("preço deve ser maior ou igual a zero")
)

// Servico is a bookable service from the shop's catalog.
type Servico struct {
	ID            int64     `json:"id_servico"`
	Nome          string    `json:"nome"`
	Descricao     *string   `json:"descricao,omitempty"`
	PrecoBase     float64   `json:"preco_base"`
	DuracaoPadrao *int      `json:"duracao_padrao,omitempty"`
	Ativo         bool      `json:"ativo"`
	CreatedAt     time.Time `json:"created_at"`
}

// Produto is a sellable item with stock.
type Produto struct {
	ID        int64     `json:"id_produto"`
	Nome      string    `json:"nome"`
	Descricao *string   `json:"descricao,omitempty"`
	Preco     float64   `json:"preco"`
	Estoque   int       `json:"estoque"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
}

// ServicoRequest is the create/update payload for services.
type ServicoRequest struct {
	Nome          string  `json:"nome"`
	Descricao     *string `json:"descricao"`
	PrecoBase     float64 `json:"preco_base"`
	DuracaoPadrao *int    `json:"duracao_padrao"`
}

func (r *ServicoRequest) Validate() error {
	if strings.TrimSpace(r.Nome) == "" {
		return ErrInvalidNome
	}
	if r.PrecoBase < 0 {
		return ErrInvalidPreco
	}
	return nil
}

// ProdutoRequest is the create/update payload for products.
type ProdutoRequest struct {
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
	Preco     float64 `json:"preco"`
	Estoque   int     `json:"estoque"`
}

func (r *ProdutoRequest) Validate() error {
	if strings.TrimSpace(r.Nome) == "" {
		return ErrInvalidNome
	}
	if r.Preco < 0 {
		return ErrInvalidPreco
	}
	return nil
}
