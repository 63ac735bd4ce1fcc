// Package agenda holds the state behind the appointments screen: month
// navigation, per-day aggregates, the selected day's listing and the
// new-appointment draft with its cascading selections.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patasoft/petshop-platform/internal/petapi"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// DefaultDuracao is the draft's starting estimated duration in minutes.
const DefaultDuracao = 45

var ErrDraftIncompleto = errors.New("agenda: preencha cliente, pet, servico e data/hora")

// API is the slice of the platform client the view-model consumes.
type API interface {
	Me(ctx context.Context) (*petapi.User, error)
	CalendarCounts(ctx context.Context, ano, mes int) ([]petapi.DayCount, error)
	AppointmentsByDate(ctx context.Context, data string) ([]petapi.Appointment, error)
	Clients(ctx context.Context) ([]petapi.Customer, error)
	Pets(ctx context.Context, clienteID int64) ([]petapi.Pet, error)
	ActivePackages(ctx context.Context, clienteID int64) ([]petapi.Package, error)
	Services(ctx context.Context) ([]petapi.Service, error)
	CreateAppointment(ctx context.Context, req petapi.CreateAppointmentRequest) (*petapi.CreateAppointmentResponse, error)
}

// Phase names the cascading-selection state of the draft.
type Phase int

const (
	NoClient Phase = iota
	ClientSelected
	PackageSelected
)

// Draft is the new-appointment form state.
type Draft struct {
	ClienteID       *int64
	PetID           *int64
	ClientePacoteID *int64
	ServicoID       *int64
	DataHora        string
	Duracao         int
	Observacoes     string
}

// ViewModel is the single source of truth for the appointments screen.
// Mutating methods are safe to call from multiple goroutines; each fetch
// slot carries a generation counter so responses that arrive after a newer
// request for the same slot are discarded.
type ViewModel struct {
	api    API
	logger *logging.Logger
	notify func(msg string)

	mu            sync.Mutex
	ano           int
	mes           int
	selectedDay   string
	funcionarioID int64

	dayCounts    map[string]int
	appointments []petapi.Appointment
	clients      []petapi.Customer
	services     []petapi.Service
	pets         []petapi.Pet
	packages     []petapi.Package

	draft Draft

	genCounts   uint64
	genDay      uint64
	genPets     uint64
	genPackages uint64
	genClients  uint64
	genServices uint64
}

// New starts at today's month with an empty draft. notify receives the
// user-facing messages; a nil notify drops them.
func New(api API, logger *logging.Logger, notify func(msg string)) *ViewModel {
	if logger == nil {
		logger = logging.Default()
	}
	if notify == nil {
		notify = func(string) {}
	}
	now := time.Now()
	return &ViewModel{
		api:       api,
		logger:    logger,
		notify:    notify,
		ano:       now.Year(),
		mes:       int(now.Month()),
		dayCounts: map[string]int{},
		draft:     Draft{Duracao: DefaultDuracao},
	}
}

// Load resolves the acting identity and then fetches the month aggregates,
// today's listing, the client list and the service catalog concurrently.
// Individual fetch failures degrade to empty data; only a failed identity
// lookup surfaces a notification, since nothing can be booked without it.
func (vm *ViewModel) Load(ctx context.Context) {
	me, err := vm.api.Me(ctx)
	if err != nil {
		vm.logger.Error("load identity", "error", err)
		vm.notify("Nao foi possivel carregar seus dados. Tente novamente.")
		return
	}
	vm.mu.Lock()
	vm.funcionarioID = me.FuncionarioID
	if vm.selectedDay == "" {
		now := time.Now()
		vm.selectedDay = now.Format("2006-01-02")
	}
	vm.mu.Unlock()

	vm.refreshAll(ctx)
}

func (vm *ViewModel) refreshAll(ctx context.Context) {
	vm.mu.Lock()
	ano, mes, day := vm.ano, vm.mes, vm.selectedDay
	vm.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); vm.fetchCounts(ctx, ano, mes) }()
	go func() { defer wg.Done(); vm.fetchDay(ctx, day) }()
	go func() { defer wg.Done(); vm.fetchClients(ctx) }()
	go func() { defer wg.Done(); vm.fetchServices(ctx) }()
	wg.Wait()
}

// ChangeMonth moves the view by delta months, rolling the year at the
// 1/12 boundary, and refreshes the aggregate map only. The selected day
// and its listing are left untouched.
func (vm *ViewModel) ChangeMonth(ctx context.Context, delta int) {
	vm.mu.Lock()
	vm.mes += delta
	for vm.mes < 1 {
		vm.mes += 12
		vm.ano--
	}
	for vm.mes > 12 {
		vm.mes -= 12
		vm.ano++
	}
	ano, mes := vm.ano, vm.mes
	vm.mu.Unlock()

	vm.fetchCounts(ctx, ano, mes)
}

// SelectDay picks a day of the displayed month and fetches its listing.
func (vm *ViewModel) SelectDay(ctx context.Context, dia int) {
	vm.mu.Lock()
	key := fmt.Sprintf("%04d-%02d-%02d", vm.ano, vm.mes, dia)
	vm.selectedDay = key
	vm.mu.Unlock()

	vm.fetchDay(ctx, key)
}

// CalendarGrid returns the cells of the 7-column month grid: one zero per
// weekday slot before day 1 (Sunday-first), then 1..N for the days of the
// displayed month.
func (vm *ViewModel) CalendarGrid() []int {
	vm.mu.Lock()
	ano, mes := vm.ano, vm.mes
	vm.mu.Unlock()

	first := time.Date(ano, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)
	blanks := int(first.Weekday())
	days := first.AddDate(0, 1, -1).Day()

	grid := make([]int, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		grid = append(grid, 0)
	}
	for d := 1; d <= days; d++ {
		grid = append(grid, d)
	}
	return grid
}

// SelectClient sets the draft's client. Pet and package selections are
// cleared immediately, before any fetch resolves, so no stale cross-client
// reference is ever observable. A nil id empties the dependent lists
// without touching the network.
func (vm *ViewModel) SelectClient(ctx context.Context, id *int64) {
	vm.mu.Lock()
	vm.draft.ClienteID = id
	vm.draft.PetID = nil
	vm.draft.ClientePacoteID = nil
	vm.pets = nil
	vm.packages = nil
	vm.genPets++
	vm.genPackages++
	vm.mu.Unlock()

	if id == nil {
		return
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); vm.fetchPets(ctx, *id) }()
	go func() { defer wg.Done(); vm.fetchPackages(ctx, *id) }()
	wg.Wait()
}

// SelectPet sets the draft's pet.
func (vm *ViewModel) SelectPet(id *int64) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft.PetID = id
}

// SelectPackage applies one of the client's active packages to the draft,
// restricting the service options to the package's set. A nil id restores
// the full catalog.
func (vm *ViewModel) SelectPackage(id *int64) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft.ClientePacoteID = id
	if id == nil {
		return
	}
	if sel := vm.draft.ServicoID; sel != nil {
		if pkg, ok := vm.packageByID(*id); ok && !pkg.Covers(*sel) {
			vm.draft.ServicoID = nil
		}
	}
}

// SelectService sets the draft's service and pre-fills the estimated
// duration from the catalog default when the service declares one.
func (vm *ViewModel) SelectService(id *int64) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft.ServicoID = id
	if id == nil {
		return
	}
	for _, s := range vm.services {
		if s.ID == *id && s.DuracaoPadrao != nil && *s.DuracaoPadrao > 0 {
			vm.draft.Duracao = *s.DuracaoPadrao
			return
		}
	}
}

// SetDataHora records the draft's date/time input. Both the HTML
// datetime-local format and the wire format are accepted.
func (vm *ViewModel) SetDataHora(v string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft.DataHora = v
}

// SetObservacoes records the draft's free-text note.
func (vm *ViewModel) SetObservacoes(v string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft.Observacoes = v
}

// SetDuracao overrides the estimated duration.
func (vm *ViewModel) SetDuracao(min int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if min > 0 {
		vm.draft.Duracao = min
	}
}

// Submit validates the draft and books the appointment. An incomplete
// draft is rejected before any network call. On success the draft resets
// and the initialization fetch set reloads; on failure the draft is kept
// so the user can correct and retry.
func (vm *ViewModel) Submit(ctx context.Context) error {
	vm.mu.Lock()
	d := vm.draft
	funcionarioID := vm.funcionarioID
	vm.mu.Unlock()

	if d.ClienteID == nil || d.PetID == nil || d.ServicoID == nil || funcionarioID == 0 || d.DataHora == "" {
		vm.notify("Preencha cliente, pet, servico e data/hora antes de agendar.")
		return ErrDraftIncompleto
	}

	dataHora, err := normalizeDataHora(d.DataHora)
	if err != nil {
		vm.notify("Data/hora invalida.")
		return err
	}

	req := petapi.CreateAppointmentRequest{
		PetID:           *d.PetID,
		ServicoID:       *d.ServicoID,
		FuncionarioID:   funcionarioID,
		DataHora:        dataHora,
		DuracaoEstimada: d.Duracao,
		ClientePacoteID: d.ClientePacoteID,
	}
	if d.Observacoes != "" {
		obs := d.Observacoes
		req.Observacoes = &obs
	}

	if _, err := vm.api.CreateAppointment(ctx, req); err != nil {
		vm.logger.Error("create appointment", "error", err)
		vm.notify(err.Error())
		return err
	}

	vm.mu.Lock()
	vm.draft = Draft{Duracao: DefaultDuracao}
	vm.pets = nil
	vm.packages = nil
	vm.mu.Unlock()

	vm.notify("Agendamento criado com sucesso")
	vm.refreshAll(ctx)
	return nil
}

// normalizeDataHora converts the input to the backend's wire format.
func normalizeDataHora(v string) (string, error) {
	layouts := []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02 15:04:05"), nil
		}
	}
	return "", fmt.Errorf("agenda: data/hora invalida: %q", v)
}

// fetchers; each compares its generation after the call and drops stale
// responses so rapid navigation can never regress the state.

func (vm *ViewModel) fetchCounts(ctx context.Context, ano, mes int) {
	vm.mu.Lock()
	vm.genCounts++
	gen := vm.genCounts
	vm.mu.Unlock()

	counts, err := vm.api.CalendarCounts(ctx, ano, mes)
	if err != nil {
		vm.logger.Error("fetch calendar counts", "error", err, "ano", ano, "mes", mes)
		counts = nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.genCounts != gen {
		return
	}
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Dia] = c.Total
	}
	vm.dayCounts = m
}

func (vm *ViewModel) fetchDay(ctx context.Context, day string) {
	vm.mu.Lock()
	vm.genDay++
	gen := vm.genDay
	vm.mu.Unlock()

	list, err := vm.api.AppointmentsByDate(ctx, day)
	if err != nil {
		vm.logger.Error("fetch day appointments", "error", err, "dia", day)
		list = nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.genDay != gen {
		return
	}
	vm.appointments = list
}

func (vm *ViewModel) fetchClients(ctx context.Context) {
	vm.mu.Lock()
	vm.genClients++
	gen := vm.genClients
	vm.mu.Unlock()

	list, err := vm.api.Clients(ctx)
	if err != nil {
		vm.logger.Error("fetch clients", "error", err)
		list = nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.genClients != gen {
		return
	}
	vm.clients = list
}

func (vm *ViewModel) fetchServices(ctx context.Context) {
	vm.mu.Lock()
	vm.genServices++
	gen := vm.genServices
	vm.mu.Unlock()

	list, err := vm.api.Services(ctx)
	if err != nil {
		vm.logger.Error("fetch services", "error", err)
		list = nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.genServices != gen {
		return
	}
	vm.services = list
}

func (vm *ViewModel) fetchPets(ctx context.Context, clienteID int64) {
	vm.mu.Lock()
	vm.genPets++
	gen := vm.genPets
	vm.mu.Unlock()

	list, err := vm.api.Pets(ctx, clienteID)
	if err != nil {
		vm.logger.Error("fetch pets", "error", err, "cliente", clienteID)
		list = nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.genPets != gen {
		return
	}
	vm.pets = list
}

func (vm *ViewModel) fetchPackages(ctx context.Context, clienteID int64) {
	vm.mu.Lock()
	vm.genPackages++
	gen := vm.genPackages
	vm.mu.Unlock()

	list, err := vm.api.ActivePackages(ctx, clienteID)
	if err != nil {
		vm.logger.Error("fetch packages", "error", err, "cliente", clienteID)
		list = nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.genPackages != gen {
		return
	}
	vm.packages = list
}

// read accessors; all return copies so callers can't race the lock.

func (vm *ViewModel) Month() (ano, mes int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.ano, vm.mes
}

func (vm *ViewModel) SelectedDay() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selectedDay
}

func (vm *ViewModel) DayCounts() map[string]int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	m := make(map[string]int, len(vm.dayCounts))
	for k, v := range vm.dayCounts {
		m[k] = v
	}
	return m
}

func (vm *ViewModel) Appointments() []petapi.Appointment {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]petapi.Appointment(nil), vm.appointments...)
}

func (vm *ViewModel) Clients() []petapi.Customer {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]petapi.Customer(nil), vm.clients...)
}

func (vm *ViewModel) Pets() []petapi.Pet {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]petapi.Pet(nil), vm.pets...)
}

func (vm *ViewModel) Packages() []petapi.Package {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]petapi.Package(nil), vm.packages...)
}

// ServiceOptions returns the selectable services: the full catalog, or the
// selected package's service set when one is applied.
func (vm *ViewModel) ServiceOptions() []petapi.Service {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.draft.ClientePacoteID == nil {
		return append([]petapi.Service(nil), vm.services...)
	}
	pkg, ok := vm.packageByID(*vm.draft.ClientePacoteID)
	if !ok {
		return append([]petapi.Service(nil), vm.services...)
	}
	var out []petapi.Service
	for _, s := range vm.services {
		if pkg.Covers(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

func (vm *ViewModel) Draft() Draft {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.draft
}

// Phase derives the cascading-selection state of the draft.
func (vm *ViewModel) Phase() Phase {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	switch {
	case vm.draft.ClienteID == nil:
		return NoClient
	case vm.draft.ClientePacoteID != nil:
		return PackageSelected
	default:
		return ClientSelected
	}
}

// packageByID looks up one of the loaded active packages. Caller holds mu.
func (vm *ViewModel) packageByID(id int64) (petapi.Package, bool) {
	for _, p := range vm.packages {
		if p.ID == id {
			return p, true
		}
	}
	return petapi.Package{}, false
}
