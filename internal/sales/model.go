package sales

import (
	"errors"
	"time"
)

// Sale statuses.
const (
	StatusPendente  = "pendente"
	StatusPago      = "pago"
	StatusCancelado = "cancelado"
)

var (
	ErrVendaNotFound       = errors.New("venda não encontrada")
	ErrMissingCliente      = errors.New("id_cliente é obrigatório")
	ErrMissingItens        = errors.New("venda precisa de ao menos um item")
	ErrItemSemReferencia   = errors.New("item precisa referenciar produto, serviço ou pacote")
	ErrEstoqueInsuficiente = errors.New("estoque insuficiente")
	ErrInvalidStatus       = errors.New("status inválido")
)

// Venda is a sale with its line items.
type Venda struct {
	ID             int64       `json:"id_venda"`
	ClienteID      int64       `json:"id_cliente"`
	FuncionarioID  int64       `json:"id_funcionario"`
	Total          float64     `json:"total"`
	FormaPagamento string      `json:"forma_pagamento"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	Itens          []VendaItem `json:"itens"`
}

// VendaItem is one line of a sale. Exactly one of the reference ids is set;
// the unit price is snapshotted at sale time.
type VendaItem struct {
	ID            int64   `json:"id_item"`
	ProdutoID     *int64  `json:"id_produto,omitempty"`
	ServicoID     *int64  `json:"id_servico,omitempty"`
	PacoteID      *int64  `json:"id_pacote,omitempty"`
	Quantidade    int     `json:"quantidade"`
	PrecoUnitario float64 `json:"preco_unitario"`
}

// CreateVendaRequest is the payload for registering a sale.
type CreateVendaRequest struct {
	ClienteID      int64              `json:"id_cliente"`
	FuncionarioID  int64              `json:"id_funcionario"`
	FormaPagamento string             `json:"forma_pagamento"`
	Itens          []VendaItemRequest `json:"itens"`
}

// VendaItemRequest is one requested line item.
type VendaItemRequest struct {
	ProdutoID  *int64 `json:"id_produto"`
	ServicoID  *int64 `json:"id_servico"`
	PacoteID   *int64 `json:"id_pacote"`
	Quantidade int    `json:"quantidade"`
}

// Validate checks structural rules before touching the database.
func (r *CreateVendaRequest) Validate() error {
	if r.ClienteID == 0 {
		return ErrMissingCliente
	}
	if len(r.Itens) == 0 {
		return ErrMissingItens
	}
	for _, item := range r.Itens {
		refs := 0
		for _, id := range []*int64{item.ProdutoID, item.ServicoID, item.PacoteID} {
			if id != nil {
				refs++
			}
		}
		if refs != 1 {
			return ErrItemSemReferencia
		}
	}
	return nil
}

// ValidStatus reports whether s is an accepted sale status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPendente, StatusPago, StatusCancelado:
		return true
	}
	return false
}
