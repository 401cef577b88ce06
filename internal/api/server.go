package api

import (
	"context"

	"invoice-server/internal/config"
	"invoice-server/internal/logging"
	"invoice-server/internal/models"
	"invoice-server/internal/ratelimit"
	"invoice-server/internal/service"
	"invoice-server/internal/websocket"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
)

type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in service.LoginInput) (*service.Session, error)
	BeginPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, in service.ResetInput) error
}

type InvoiceService interface {
	Generate(ctx context.Context, userID uuid.UUID, in service.GenerateInput) (*service.GeneratedInvoice, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error)
	PDF(ctx context.Context, userID, id uuid.UUID) (*service.GeneratedInvoice, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Result, error)
}

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Accounts AccountService
	Invoices InvoiceService
	Hub      *websocket.Hub
	Limiter  RateLimiter
	Checks   map[string]HealthCheck
	Logger   logging.Logger
}

type Server struct {
	config   *config.Config
	accounts AccountService
	invoices InvoiceService
	wsHub    *websocket.Hub
	limiter  RateLimiter
	checks   map[string]HealthCheck
	log      logging.Logger
	upgrader gorillaws.Upgrader
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		config:   cfg,
		accounts: deps.Accounts,
		invoices: deps.Invoices,
		wsHub:    deps.Hub,
		limiter:  deps.Limiter,
		checks:   deps.Checks,
		log:      log,
		upgrader: websocket.NewUpgrader(cfg.App.AllowedOrigins),
	}
}

func (s *Server) isProduction() bool {
	return s.config != nil && s.config.App.IsProduction()
}
