package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/patasoft/petshop-platform/internal/appointments"
	"github.com/patasoft/petshop-platform/internal/auth"
	"github.com/patasoft/petshop-platform/internal/catalog"
	"github.com/patasoft/petshop-platform/internal/clients"
	httpmiddleware "github.com/patasoft/petshop-platform/internal/http/middleware"
	"github.com/patasoft/petshop-platform/internal/kpis"
	"github.com/patasoft/petshop-platform/internal/packages"
	"github.com/patasoft/petshop-platform/internal/sales"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AuthHandler         *auth.Handler
	ClientsHandler      *clients.Handler
	CatalogHandler      *catalog.Handler
	PackagesHandler     *packages.Handler
	AppointmentsHandler *appointments.Handler
	SalesHandler        *sales.Handler
	KPIsHandler         *kpis.Handler
	EmpresaResolver     EmpresaResolver
	DefaultEmpresa      string
	JWTSecret           string
	MetricsHandler      http.Handler
	MetricsMiddleware   func(route string) func(http.Handler) http.Handler
	CORSAllowedOrigins  []string
}

// New wires every route of the API.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	instrument := cfg.MetricsMiddleware
	if instrument == nil {
		instrument = func(string) func(http.Handler) http.Handler {
			return func(next http.Handler) http.Handler { return next }
		}
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.With(instrument("/auth/login")).Post("/auth/login", cfg.AuthHandler.Login)
		public.Post("/auth/recuperar-senha", cfg.AuthHandler.RequestReset)
		public.Post("/auth/redefinir-senha", cfg.AuthHandler.ConfirmReset)
	})

	// Everything else requires a bearer token and a resolvable tenant.
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.BearerAuth(cfg.JWTSecret))
		private.Use(RequireEmpresa(cfg.EmpresaResolver, cfg.DefaultEmpresa, cfg.Logger))

		private.Get("/auth/me", cfg.AuthHandler.Me)

		private.Route("/clientes", func(rt chi.Router) {
			rt.Get("/", cfg.ClientsHandler.List)
			rt.Post("/", cfg.ClientsHandler.Create)
			rt.Get("/{id}", cfg.ClientsHandler.Get)
			rt.Put("/{id}", cfg.ClientsHandler.Update)
			rt.Delete("/{id}", cfg.ClientsHandler.Delete)
			rt.Get("/{id}/pets", cfg.ClientsHandler.Pets)
			rt.Get("/{id}/pacotes", cfg.PackagesHandler.ByCliente)
			rt.Post("/{id}/pacotes", cfg.PackagesHandler.Assign)
		})

		private.Route("/servicos", func(rt chi.Router) {
			rt.Get("/", cfg.CatalogHandler.ListServicos)
			rt.Post("/", cfg.CatalogHandler.CreateServico)
			rt.Put("/{id}", cfg.CatalogHandler.UpdateServico)
			rt.Delete("/{id}", cfg.CatalogHandler.DeleteServico)
		})

		private.Route("/produtos", func(rt chi.Router) {
			rt.Get("/", cfg.CatalogHandler.ListProdutos)
			rt.Post("/", cfg.CatalogHandler.CreateProduto)
			rt.Put("/{id}", cfg.CatalogHandler.UpdateProduto)
			rt.Delete("/{id}", cfg.CatalogHandler.DeleteProduto)
		})

		private.Route("/pacotes", func(rt chi.Router) {
			rt.Get("/", cfg.PackagesHandler.List)
			rt.Post("/", cfg.PackagesHandler.Create)
		})

		private.Route("/agendamentos", func(rt chi.Router) {
			rt.With(instrument("/agendamentos")).Get("/", cfg.AppointmentsHandler.ListByDate)
			rt.With(instrument("/agendamentos")).Post("/", cfg.AppointmentsHandler.Create)
			rt.With(instrument("/agendamentos/calendario")).Get("/calendario", cfg.AppointmentsHandler.Calendar)
			rt.Patch("/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
		})

		private.Route("/vendas", func(rt chi.Router) {
			rt.Get("/", cfg.SalesHandler.List)
			rt.Post("/", cfg.SalesHandler.Create)
			rt.Patch("/{id}/status", cfg.SalesHandler.UpdateStatus)
		})

		private.Get("/kpis/dashboard", cfg.KPIsHandler.Dashboard)
	})

	return r
}
