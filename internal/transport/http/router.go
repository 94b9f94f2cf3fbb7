package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otti-labs/otti-workspace/pkg/logger"
)

// RouterConfig carries everything the router needs beyond the services.
type RouterConfig struct {
	JWTSecret       []byte
	AllowedOrigins  string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Services groups the application services the router exposes.
type Services struct {
	Auth      LoginService
	Funnel    BoardService
	Inbox     InboxService
	Campaigns CampaignService
	Catalog   CatalogService
	Tenants   TenantService
	Dashboard KPIService
}

// NewRouter assembles the full HTTP surface. Everything under /tenants and
// /conversations requires a valid session; operators are fenced to their own
// tenant.
func NewRouter(svcs Services, cfg RouterConfig, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", HealthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.LoginRateLimit, cfg.LoginRateWindow))
		r.Post("/auth/login", HandleLogin(svcs.Auth))
	})

	r.Group(func(r chi.Router) {
		r.Use(Auth(cfg.JWTSecret))

		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Use(RequireTenantAccess)

			r.Get("/funnel", HandleFunnelBoard(svcs.Funnel))
			r.Get("/kpis", HandleTenantKPIs(svcs.Dashboard))

			r.Get("/settings", HandleTenantSettings(svcs.Tenants))
			r.Put("/settings/assistant", HandleUpdateAssistant(svcs.Tenants))
			r.Put("/settings/team-mode", HandleSetTeamMode(svcs.Tenants))
			r.Post("/bot/toggle", HandleToggleBot(svcs.Tenants))

			r.Get("/products", HandleListProducts(svcs.Catalog))
			r.Post("/products", HandleCreateProduct(svcs.Catalog))

			r.Get("/conversations", HandleRecentConversations(svcs.Inbox))

			r.Route("/inbox/{customerRef}", func(r chi.Router) {
				r.Post("/claim", HandleClaim(svcs.Inbox))
				r.Post("/release", HandleRelease(svcs.Inbox))
				r.Get("/can-respond", HandleCanRespond(svcs.Inbox))
				r.Put("/profile", HandleUpsertProfile(svcs.Inbox))
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Post("/preview", HandleCampaignPreview(svcs.Campaigns))
				r.Post("/send", HandleCampaignSend(svcs.Campaigns))
				r.Get("/", HandleCampaignHistory(svcs.Campaigns))
			})
		})

		// message history is addressed by conversation id; the row itself is
		// tenant-scoped in storage
		r.Get("/conversations/{conversationID}/messages", HandleMessageHistory(svcs.Inbox))
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}

func splitOrigins(raw string) []string {
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
