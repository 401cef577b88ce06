package api

import (
	"context"
	"time"

	"invoice-server/internal/config"
	"invoice-server/internal/models"
	"invoice-server/internal/ratelimit"
	"invoice-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.Version = "1.2.3"
	cfg.App.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.JWT.Secret = testSecret
	cfg.JWT.TTL = time.Hour
	return cfg
}

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAccounts) Login(ctx context.Context, in service.LoginInput) (*service.Session, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*service.Session)
	return s, args.Error(1)
}

func (m *mockAccounts) BeginPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAccounts) CompletePasswordReset(ctx context.Context, in service.ResetInput) error {
	return m.Called(ctx, in).Error(0)
}

type mockInvoices struct {
	mock.Mock
}

func (m *mockInvoices) Generate(ctx context.Context, userID uuid.UUID, in service.GenerateInput) (*service.GeneratedInvoice, error) {
	args := m.Called(ctx, userID, in)
	g, _ := args.Get(0).(*service.GeneratedInvoice)
	return g, args.Error(1)
}

func (m *mockInvoices) List(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	args := m.Called(ctx, userID)
	l, _ := args.Get(0).([]models.Invoice)
	return l, args.Error(1)
}

func (m *mockInvoices) Get(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, userID, id)
	inv, _ := args.Get(0).(*models.Invoice)
	return inv, args.Error(1)
}

func (m *mockInvoices) PDF(ctx context.Context, userID, id uuid.UUID) (*service.GeneratedInvoice, error) {
	args := m.Called(ctx, userID, id)
	g, _ := args.Get(0).(*service.GeneratedInvoice)
	return g, args.Error(1)
}

type fakeLimiter struct {
	max  int
	hits map[string]int
	err  error
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (ratelimit.Result, error) {
	if l.err != nil {
		return ratelimit.Result{}, l.err
	}
	if l.hits == nil {
		l.hits = map[string]int{}
	}
	l.hits[key]++
	n := l.hits[key]
	remaining := l.max - n
	if remaining < 0 {
		remaining = 0
	}
	return ratelimit.Result{
		Allowed:   n <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetIn:   time.Minute,
	}, nil
}
