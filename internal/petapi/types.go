package petapi

// User is the identity behind the bearer token.
type User struct {
	FuncionarioID int64  `json:"id_funcionario"`
	Nome          string `json:"nome"`
	Cargo         string `json:"cargo"`
	Empresa       string `json:"empresa"`
}

// DayCount is one calendar day with its appointment total.
type DayCount struct {
	Dia   string `json:"dia"`
	Total int    `json:"total"`
}

// Appointment is one scheduled slot as returned by the listing endpoint.
type Appointment struct {
	ID              int64   `json:"id_agendamento"`
	PetID           int64   `json:"id_pet"`
	PetNome         string  `json:"pet_nome"`
	ClienteNome     string  `json:"cliente_nome"`
	ServicoID       int64   `json:"id_servico"`
	ServicoNome     string  `json:"servico_nome"`
	FuncionarioID   int64   `json:"id_funcionario"`
	DataHora        string  `json:"data_hora"`
	DuracaoEstimada int     `json:"duracao_estimada"`
	Status          string  `json:"status"`
	Observacoes     *string `json:"observacoes,omitempty"`
}

// Customer is one client record of the tenant.
type Customer struct {
	ID   int64  `json:"id_cliente"`
	Nome string `json:"nome"`
}

// Pet belongs to one client.
type Pet struct {
	ID        int64  `json:"id_pet"`
	ClienteID int64  `json:"id_cliente"`
	Nome      string `json:"nome"`
	Especie   string `json:"especie"`
	Raca      string `json:"raca"`
}

// Package is an active client package with its covered services.
type Package struct {
	ID            int64            `json:"id_cliente_pacote"`
	PacoteID      int64            `json:"id_pacote"`
	Nome          string           `json:"nome"`
	Tipo          string           `json:"tipo"`
	UsosRestantes *int             `json:"usos_restantes,omitempty"`
	Servicos      []PackageService `json:"servicos"`
}

// PackageService is one service covered by a package.
type PackageService struct {
	ServicoID int64  `json:"id_servico"`
	Nome      string `json:"nome"`
}

// Covers reports whether the package includes the given service.
func (p Package) Covers(servicoID int64) bool {
	for _, s := range p.Servicos {
		if s.ServicoID == servicoID {
			return true
		}
	}
	return false
}

// Service is one catalog entry.
type Service struct {
	ID            int64  `json:"id_servico"`
	Nome          string `json:"nome"`
	DuracaoPadrao *int   `json:"duracao_padrao,omitempty"`
}

// CreateAppointmentRequest is the booking payload.
type CreateAppointmentRequest struct {
	PetID           int64   `json:"id_pet"`
	ServicoID       int64   `json:"id_servico"`
	FuncionarioID   int64   `json:"id_funcionario"`
	DataHora        string  `json:"data_hora"`
	DuracaoEstimada int     `json:"duracao_estimada"`
	ClientePacoteID *int64  `json:"id_cliente_pacote,omitempty"`
	Observacoes     *string `json:"observacoes,omitempty"`
}

// CreateAppointmentResponse acknowledges a booking.
type CreateAppointmentResponse struct {
	AgendamentoID int64  `json:"id_agendamento"`
	Message       string `json:"message"`
}
