package appointments

import (
	"errors"
	"time"
)

// DataHoraLayout is the wire format for appointment timestamps.
const DataHoraLayout = "2006-01-02 15:04:05"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var (
	ErrAgendamentoNotFound = errors.New("agendamento não encontrado")
	ErrInvalidStatus       = errors.New("status inválido")
	ErrInvalidDataHora     = errors.New("data_hora inválida, use YYYY-MM-DD HH:MM:SS")
	ErrMissingPet          = errors.New("id_pet é obrigatório")
	ErrMissingServico      = errors.New("id_servico é obrigatório")
	ErrMissingFuncionario  = errors.New("id_funcionario é obrigatório")
	ErrPetNotFound         = errors.New("pet não encontrado")
	ErrServicoNotFound     = errors.New("serviço não encontrado")
	ErrFuncionarioNotFound = errors.New("funcionário não encontrado")
	ErrInvalidMes          = errors.New("mês inválido (1-12)")
	ErrInvalidAno          = errors.New("ano inválido (2000-2100)")
)

// Status is the closed appointment status vocabulary. The legacy system wrote
// two spellings for the same states (capitalized present tense from the
// scheduling flow, lower-case past tense from imports); both remain valid on
// the wire and are deliberately not unified. See DESIGN.md.
type Status string

const (
	StatusAgendado   Status = "Agendado"
	StatusConfirmado Status = "Confirmado"
	StatusCancelado  Status = "Cancelado"
	StatusConcluido  Status = "Concluído"
	StatusPendente   Status = "Pendente"

	// Legacy lower-case variants still present in stored rows.
	StatusAgendadoLegacy   Status = "agendado"
	StatusConfirmadoLegacy Status = "confirmado"
	StatusCanceladoLegacy  Status = "cancelado"
	StatusConcluidoLegacy  Status = "concluido"
)

var validStatus = map[Status]struct{}{
	StatusAgendado:         {},
	StatusConfirmado:       {},
	StatusCancelado:        {},
	StatusConcluido:        {},
	StatusPendente:         {},
	StatusAgendadoLegacy:   {},
	StatusConfirmadoLegacy: {},
	StatusCanceladoLegacy:  {},
	StatusConcluidoLegacy:  {},
}

// ParseStatus validates a wire value against the closed set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := validStatus[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Agendamento is a scheduled service visit. Pet, client and service names are
// denormalized for display.
type Agendamento struct {
	ID              int64     `json:"id_agendamento"`
	DataHora        time.Time `json:"data_hora"`
	Status          Status    `json:"status"`
	DuracaoEstimada int       `json:"duracao_estimada"`
	Observacoes     *string   `json:"observacoes,omitempty"`
	PetID           int64     `json:"id_pet"`
	ServicoID       int64     `json:"id_servico"`
	FuncionarioID   int64     `json:"id_funcionario"`
	PetNome         string    `json:"pet_nome"`
	ClienteNome     string    `json:"cliente_nome"`
	ServicoNome     string    `json:"servico_nome"`
}

// DayCount is one cell of the monthly aggregate.
type DayCount struct {
	Dia   string `json:"dia"`
	Total int    `json:"total"`
}

// CreateRequest is the payload for booking an appointment.
type CreateRequest struct {
	PetID           int64   `json:"id_pet"`
	ServicoID       int64   `json:"id_servico"`
	FuncionarioID   int64   `json:"id_funcionario"`
	DataHora        string  `json:"data_hora"`
	DuracaoEstimada int     `json:"duracao_estimada"`
	Observacoes     *string `json:"observacoes"`
	ClientePacoteID *int64  `json:"id_cliente_pacote,omitempty"`
}

// Validate checks required fields and parses the timestamp.
func (r *CreateRequest) Validate() (time.Time, error) {
	if r.PetID == 0 {
		return time.Time{}, ErrMissingPet
	}
	if r.ServicoID == 0 {
		return time.Time{}, ErrMissingServico
	}
	if r.FuncionarioID == 0 {
		return time.Time{}, ErrMissingFuncionario
	}
	when, err := time.Parse(DataHoraLayout, r.DataHora)
	if err != nil {
		return time.Time{}, ErrInvalidDataHora
	}
	return when, nil
}

// ValidateCalendarPeriod bounds the aggregate query the same way the API
// contract does.
func ValidateCalendarPeriod(ano, mes int) error {
	if mes < 1 || mes > 12 {
		return ErrInvalidMes
	}
	if ano < 2000 || ano > 2100 {
		return ErrInvalidAno
	}
	return nil
}
