package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"invoice-server/internal/database"
	"invoice-server/internal/mailer"
	"invoice-server/internal/models"

	"github.com/google/uuid"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, arg database.CreateUserParams) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[arg.Email]; ok {
		return nil, database.ErrEmailTaken
	}
	u := &models.User{ID: uuid.New(), Name: arg.Name, Email: arg.Email, PasswordHash: arg.PasswordHash, CreatedAt: time.Now()}
	m.byEmail[arg.Email] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetResetToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == userID {
			u.ResetToken = &token
			u.ResetTokenExpiry = &expiresAt
			return nil
		}
	}
	return errors.New("no such user")
}

func (m *memUsers) ResetPasswordByToken(_ context.Context, token, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetTokenExpiry.After(time.Now()) {
			u.PasswordHash = passwordHash
			u.ResetToken = nil
			u.ResetTokenExpiry = nil
			return u.ID, nil
		}
	}
	return uuid.Nil, database.ErrResetTokenExpired
}

func (m *memUsers) get(email string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byEmail[email]
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingMailer) messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

type memInvoices struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*models.Invoice
	err      error
}

func newMemInvoices() *memInvoices {
	return &memInvoices{invoices: make(map[uuid.UUID]*models.Invoice)}
}

func (m *memInvoices) CreateInvoice(_ context.Context, arg database.CreateInvoiceParams) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	inv := &models.Invoice{
		ID: arg.ID, UserID: arg.UserID, Items: arg.Items,
		SubTotal: arg.SubTotal, Tax: arg.Tax, Total: arg.Total,
		CreatedAt: time.Now().Add(time.Duration(len(m.invoices)) * time.Millisecond),
	}
	m.invoices[inv.ID] = inv
	return inv, nil
}

func (m *memInvoices) GetInvoice(_ context.Context, id, userID uuid.UUID) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, nil
	}
	cp := *inv
	cp.Owner = &models.InvoiceOwner{Name: "Owner", Email: "owner@example.com"}
	return &cp, nil
}

func (m *memInvoices) ListInvoicesByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Invoice{}
	for _, inv := range m.invoices {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *stubRenderer) RenderPDF(_ context.Context, inv *models.Invoice) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-" + inv.ID.String()), nil
}

type publishedEvent struct {
	userID    uuid.UUID
	eventType string
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, userID uuid.UUID, eventType string, _ any) {
	p.events = append(p.events, publishedEvent{userID: userID, eventType: eventType})
}
