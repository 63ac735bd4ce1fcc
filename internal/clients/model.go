package clients

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrClienteNotFound indicates the client does not exist or is inactive.
	ErrClienteNotFound = errors.New("cliente não encontrado")
	// ErrInvalidNome indicates a missing client name.
	ErrInvalidNome = errors.New("nome é obrigatório")
	// ErrMissingContato indicates neither phone nor email was provided.
	ErrMissingContato = errors.New("telefone ou email é obrigatório")
)

// Cliente represents a pet owner registered with the shop.
type Cliente struct {
	ID        int64      `json:"id_cliente"`
	Nome      string     `json:"nome"`
	CPF       *string    `json:"cpf,omitempty"`
	Telefone  string     `json:"telefone"`
	Email     string     `json:"email"`
	Endereco  Endereco   `json:"endereco"`
	Ativo     bool       `json:"ativo"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Endereco groups the optional address fields.
type Endereco struct {
	Rua         *string `json:"rua,omitempty"`
	Numero      *string `json:"numero,omitempty"`
	Complemento *string `json:"complemento,omitempty"`
	Bairro      *string `json:"bairro,omitempty"`
	Cidade      *string `json:"cidade,omitempty"`
	Estado      *string `json:"estado,omitempty"`
	CEP         *string `json:"cep,omitempty"`
}

// Pet belongs to exactly one Cliente.
type Pet struct {
	ID             int64      `json:"id_pet"`
	Nome           string     `json:"nome"`
	Especie        string     `json:"especie"`
	Raca           *string    `json:"raca,omitempty"`
	DataNascimento *time.Time `json:"data_nascimento,omitempty"`
	ClienteID      int64      `json:"id_cliente"`
	Ativo          bool       `json:"ativo"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreateClienteRequest is the payload for registering a client.
type CreateClienteRequest struct {
	Nome     string   `json:"nome"`
	CPF      *string  `json:"cpf"`
	Telefone string   `json:"telefone"`
	Email    string   `json:"email"`
	Endereco Endereco `json:"endereco"`
}

// Validate checks required fields before touching the database.
func (r *CreateClienteRequest) Validate() error {
	if strings.TrimSpace(r.Nome) == "" {
		return ErrInvalidNome
	}
	if strings.TrimSpace(r.Telefone) == "" && strings.TrimSpace(r.Email) == "" {
		return ErrMissingContato
	}
	return nil
}

// UpdateClienteRequest carries the mutable client fields; nil means unchanged.
type UpdateClienteRequest struct {
	Nome     *string   `json:"nome"`
	Telefone *string   `json:"telefone"`
	Email    *string   `json:"email"`
	Endereco *Endereco `json:"endereco"`
}
