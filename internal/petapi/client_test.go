package petapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeSession struct {
	token   string
	empresa string
	expired []string
}

func (s *fakeSession) Token() string { return s.token }

func (s *fakeSession) Empresa() string { return s.empresa }

func (s *fakeSession) Unauthorized(msg string) { s.expired = append(s.expired, msg) }

func newTestClient(ts *httptest.Server) (*Client, *fakeSession) {
	sess := &fakeSession{token: "tok-1", empresa: "patas"}
	return NewClient(ts.URL, sess, nil), sess
}

func TestCalendarCounts_SendsCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Empresa"); got != "patas" {
			t.Errorf("X-Empresa = %q", got)
		}
		if r.URL.Path != "/agendamentos/calendario" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("ano") != "2026" || r.URL.Query().Get("mes") != "3" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]DayCount{{Dia: "2026-03-05", Total: 4}})
	}))
	defer ts.Close()

	c, _ := newTestClient(ts)
	counts, err := c.CalendarCounts(context.Background(), 2026, 3)
	if err != nil {
		t.Fatalf("CalendarCounts: %v", err)
	}
	if len(counts) != 1 || counts[0].Dia != "2026-03-05" || counts[0].Total != 4 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestUnauthorized_NotifiesSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"token expirado"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	c, sess := newTestClient(ts)
	_, err := c.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if len(sess.expired) != 1 || sess.expired[0] != "token expirado" {
		t.Errorf("expired = %v", sess.expired)
	}
}

func TestActivePackages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clientes/9/pacotes" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("status") != "ativo" {
			t.Errorf("status = %q", r.URL.Query().Get("status"))
		}
		usos := 3
		_ = json.NewEncoder(w).Encode([]Package{{
			ID: 11, PacoteID: 2, Nome: "Banho mensal", Tipo: "creditos",
			UsosRestantes: &usos, Servicos: []PackageService{{ServicoID: 5, Nome: "Banho"}, {ServicoID: 6, Nome: "Tosa"}},
		}})
	}))
	defer ts.Close()

	c, _ := newTestClient(ts)
	pkgs, err := c.ActivePackages(context.Background(), 9)
	if err != nil {
		t.Fatalf("ActivePackages: %v", err)
	}
	if len(pkgs) != 1 || !pkgs[0].Covers(5) || pkgs[0].Covers(7) {
		t.Errorf("pkgs = %+v", pkgs)
	}
}

func TestCreateAppointment_PostsPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.PetID != 3 || req.DataHora != "2026-03-05 14:30:00" {
			t.Errorf("req = %+v", req)
		}
		if req.ClientePacoteID != nil {
			t.Errorf("ClientePacoteID = %v, want nil", *req.ClientePacoteID)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateAppointmentResponse{AgendamentoID: 50, Message: "Agendamento criado com sucesso"})
	}))
	defer ts.Close()

	c, _ := newTestClient(ts)
	resp, err := c.CreateAppointment(context.Background(), CreateAppointmentRequest{
		PetID:           3,
		ServicoID:       5,
		FuncionarioID:   1,
		DataHora:        "2026-03-05 14:30:00",
		DuracaoEstimada: 45,
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if resp.AgendamentoID != 50 {
		t.Errorf("AgendamentoID = %d", resp.AgendamentoID)
	}
}

func TestAPIError_SurfacesMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"pacote sem creditos"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	c, sess := newTestClient(ts)
	_, err := c.CreateAppointment(context.Background(), CreateAppointmentRequest{PetID: 1, ServicoID: 1, FuncionarioID: 1, DataHora: "2026-03-05 14:30:00"})
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if len(sess.expired) != 0 {
		t.Errorf("session expired on non-401: %v", sess.expired)
	}
}
