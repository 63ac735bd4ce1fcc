package petapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patasoft/petshop-platform/pkg/logging"
)

const defaultTimeout = 20 * time.Second

var ErrUnauthorized = errors.New("petapi: nao autorizado")

// Session supplies per-request credentials and receives the expiry signal.
// Unauthorized is called once per rejected request; implementations decide
// how to surface it (typically by clearing the stored token).
type Session interface {
	Token() string
	Empresa() string
	Unauthorized(msg string)
}

// Client is a typed HTTP client for the platform API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	logger     *logging.Logger
}

func NewClient(baseURL string, session Session, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		session: session,
		logger:  logger,
	}
}

// Me returns the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalendarCounts returns per-day appointment totals for one month.
func (c *Client) CalendarCounts(ctx context.Context, ano, mes int) ([]DayCount, error) {
	q := url.Values{}
	q.Set("ano", fmt.Sprintf("%d", ano))
	q.Set("mes", fmt.Sprintf("%d", mes))
	var out []DayCount
	if err := c.do(ctx, http.MethodGet, "/agendamentos/calendario", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppointmentsByDate lists the appointments of one day. data uses the
// YYYY-MM-DD format.
func (c *Client) AppointmentsByDate(ctx context.Context, data string) ([]Appointment, error) {
	q := url.Values{}
	q.Set("data", data)
	var out []Appointment
	if err := c.do(ctx, http.MethodGet, "/agendamentos", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clients lists the tenant's customers.
func (c *Client) Clients(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := c.do(ctx, http.MethodGet, "/clientes", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pets lists the pets of one client.
func (c *Client) Pets(ctx context.Context, clienteID int64) ([]Pet, error) {
	var out []Pet
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/clientes/%d/pets", clienteID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActivePackages lists a client's packages that still have usable credits.
func (c *Client) ActivePackages(ctx context.Context, clienteID int64) ([]Package, error) {
	q := url.Values{}
	q.Set("status", "ativo")
	var out []Package
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/clientes/%d/pacotes", clienteID), q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Services lists the service catalog.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var out []Service
	if err := c.do(ctx, http.MethodGet, "/servicos", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointment books a new appointment.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*CreateAppointmentResponse, error) {
	var out CreateAppointmentResponse
	if err := c.do(ctx, http.MethodPost, "/agendamentos", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("petapi: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("petapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token())
	req.Header.Set("X-Empresa", c.session.Empresa())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("petapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		msg := apiError(resp.Body)
		c.session.Unauthorized(msg)
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("petapi: %s %s: status %d: %s", method, path, resp.StatusCode, apiError(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("petapi: decode response: %w", err)
	}
	return nil
}

// apiError extracts the error field of a JSON error body, falling back to
// the raw text.
func apiError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "sem detalhes"
	}
	var parsed struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	return string(raw)
}
