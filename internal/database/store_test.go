package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoice-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	mock  pgxmock.PgxPoolIface
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.mock = mock
	s.store = NewStore(mock)
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	require.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

var userColumns = []string{"id", "name", "email", "password_hash", "reset_token", "reset_token_expiry", "created_at"}

func (s *StoreTestSuite) TestCreateUser_Success() {
	id := uuid.New()
	now := time.Now()

	s.mock.ExpectQuery(`INSERT INTO users \(id, name, email, password_hash\)`).
		WithArgs(pgxmock.AnyArg(), "Asha", "asha@example.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(id, "Asha", "asha@example.com", "hash", now))

	user, err := s.store.CreateUser(s.ctx, CreateUserParams{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"})
	s.Require().NoError(err)
	s.Equal(id, user.ID)
	s.Equal("asha@example.com", user.Email)
	s.Equal(now, user.CreatedAt)
}

func (s *StoreTestSuite) TestCreateUser_DuplicateEmail() {
	s.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "Asha", "asha@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	user, err := s.store.CreateUser(s.ctx, CreateUserParams{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"})
	s.Nil(user)
	s.ErrorIs(err, ErrEmailTaken)
}

func (s *StoreTestSuite) TestGetUserByEmail() {
	id := uuid.New()
	token := "abc"
	expiry := time.Now().Add(time.Hour)

	s.mock.ExpectQuery(`SELECT id, name, email, password_hash, reset_token, reset_token_expiry, created_at\s+FROM users\s+WHERE email = \$1`).
		WithArgs("asha@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(id, "Asha", "asha@example.com", "hash", &token, &expiry, time.Now()))

	user, err := s.store.GetUserByEmail(s.ctx, "asha@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal(id, user.ID)
	s.Require().NotNil(user.ResetToken)
	s.Equal("abc", *user.ResetToken)
}

func (s *StoreTestSuite) TestGetUserByEmail_NotFound() {
	s.mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	user, err := s.store.GetUserByEmail(s.ctx, "nobody@example.com")
	s.NoError(err)
	s.Nil(user)
}

func (s *StoreTestSuite) TestSetResetToken() {
	id := uuid.New()
	expiry := time.Now().Add(time.Hour)

	s.mock.ExpectExec(`UPDATE users SET reset_token = \$1, reset_token_expiry = \$2 WHERE id = \$3`).
		WithArgs("tok", expiry, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	s.NoError(s.store.SetResetToken(s.ctx, id, "tok", expiry))
}

func (s *StoreTestSuite) TestResetPasswordByToken() {
	id := uuid.New()

	s.mock.ExpectQuery(`WHERE reset_token = \$2 AND reset_token_expiry > NOW\(\)`).
		WithArgs("newhash", "tok").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	got, err := s.store.ResetPasswordByToken(s.ctx, "tok", "newhash")
	s.Require().NoError(err)
	s.Equal(id, got)
}

func (s *StoreTestSuite) TestResetPasswordByToken_ExpiredOrUnknown() {
	s.mock.ExpectQuery(`UPDATE users`).
		WithArgs("newhash", "stale").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.store.ResetPasswordByToken(s.ctx, "stale", "newhash")
	s.ErrorIs(err, ErrResetTokenExpired)
}

func (s *StoreTestSuite) TestPurgeExpiredResetTokens() {
	s.mock.ExpectExec(`reset_token_expiry <= NOW\(\)`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := s.store.PurgeExpiredResetTokens(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(3, n)
}

func sampleItems() []models.LineItem {
	return []models.LineItem{
		{Name: "Widget", Quantity: 2, Rate: decimal.NewFromInt(100), Total: decimal.NewFromInt(200)},
		{Name: "Bolt", Quantity: 1, Rate: decimal.NewFromInt(50), Total: decimal.NewFromInt(50)},
	}
}

func (s *StoreTestSuite) TestCreateInvoice_CommitsInvoiceAndItems() {
	params := CreateInvoiceParams{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Items:    sampleItems(),
		SubTotal: decimal.NewFromInt(250),
		Tax:      decimal.NewFromInt(45),
		Total:    decimal.NewFromInt(295),
	}
	now := time.Now()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO invoices`).
		WithArgs(params.ID, params.UserID, params.SubTotal, params.Tax, params.Total).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "sub_total", "gst", "total", "created_at"}).
			AddRow(params.ID, params.UserID, params.SubTotal, params.Tax, params.Total, now))
	for i, item := range params.Items {
		s.mock.ExpectExec(`INSERT INTO invoice_items`).
			WithArgs(params.ID, i, item.Name, item.Quantity, item.Rate, item.Total).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	s.mock.ExpectCommit()

	inv, err := s.store.CreateInvoice(s.ctx, params)
	s.Require().NoError(err)
	s.Equal(params.ID, inv.ID)
	s.Len(inv.Items, 2)
	s.True(inv.Total.Equal(decimal.NewFromInt(295)))
	s.Equal(now, inv.CreatedAt)
}

func (s *StoreTestSuite) TestCreateInvoice_RollsBackOnItemFailure() {
	params := CreateInvoiceParams{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Items:    sampleItems()[:1],
		SubTotal: decimal.NewFromInt(200),
		Tax:      decimal.NewFromInt(36),
		Total:    decimal.NewFromInt(236),
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO invoices`).
		WithArgs(params.ID, params.UserID, params.SubTotal, params.Tax, params.Total).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "sub_total", "gst", "total", "created_at"}).
			AddRow(params.ID, params.UserID, params.SubTotal, params.Tax, params.Total, time.Now()))
	s.mock.ExpectExec(`INSERT INTO invoice_items`).
		WithArgs(params.ID, 0, "Widget", 2, params.Items[0].Rate, params.Items[0].Total).
		WillReturnError(errors.New("disk full"))
	s.mock.ExpectRollback()

	inv, err := s.store.CreateInvoice(s.ctx, params)
	s.Nil(inv)
	s.EqualError(err, "disk full")
}

func (s *StoreTestSuite) TestGetInvoice_WithOwnerAndItems() {
	id := uuid.New()
	userID := uuid.New()
	now := time.Now()

	s.mock.ExpectQuery(`FROM invoices i\s+JOIN users u ON u.id = i.user_id`).
		WithArgs(id, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "sub_total", "gst", "total", "created_at", "name", "email"}).
			AddRow(id, userID, decimal.NewFromInt(200), decimal.NewFromInt(36), decimal.NewFromInt(236), now, "Asha", "asha@example.com"))
	s.mock.ExpectQuery(`FROM invoice_items\s+WHERE invoice_id = ANY\(\$1\)`).
		WithArgs([]uuid.UUID{id}).
		WillReturnRows(pgxmock.NewRows([]string{"invoice_id", "name", "qty", "rate", "total"}).
			AddRow(id, "Widget", 2, decimal.NewFromInt(100), decimal.NewFromInt(200)))

	inv, err := s.store.GetInvoice(s.ctx, id, userID)
	s.Require().NoError(err)
	s.Require().NotNil(inv)
	s.Require().NotNil(inv.Owner)
	s.Equal("Asha", inv.Owner.Name)
	s.Require().Len(inv.Items, 1)
	s.Equal("Widget", inv.Items[0].Name)
}

func (s *StoreTestSuite) TestGetInvoice_NotOwned() {
	id := uuid.New()
	userID := uuid.New()

	s.mock.ExpectQuery(`FROM invoices i`).
		WithArgs(id, userID).
		WillReturnError(pgx.ErrNoRows)

	inv, err := s.store.GetInvoice(s.ctx, id, userID)
	s.NoError(err)
	s.Nil(inv)
}

func (s *StoreTestSuite) TestListInvoicesByUser_GroupsItems() {
	userID := uuid.New()
	newer, older := uuid.New(), uuid.New()
	now := time.Now()

	s.mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT \$2`).
		WithArgs(userID, DefaultInvoiceListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "sub_total", "gst", "total", "created_at"}).
			AddRow(newer, userID, decimal.NewFromInt(200), decimal.NewFromInt(36), decimal.NewFromInt(236), now).
			AddRow(older, userID, decimal.NewFromInt(50), decimal.NewFromInt(9), decimal.NewFromInt(59), now.Add(-time.Hour)))
	s.mock.ExpectQuery(`FROM invoice_items`).
		WithArgs([]uuid.UUID{newer, older}).
		WillReturnRows(pgxmock.NewRows([]string{"invoice_id", "name", "qty", "rate", "total"}).
			AddRow(newer, "Widget", 2, decimal.NewFromInt(100), decimal.NewFromInt(200)).
			AddRow(older, "Bolt", 1, decimal.NewFromInt(50), decimal.NewFromInt(50)))

	invoices, err := s.store.ListInvoicesByUser(s.ctx, userID, 0)
	s.Require().NoError(err)
	s.Require().Len(invoices, 2)
	s.Equal(newer, invoices[0].ID)
	s.Equal("Widget", invoices[0].Items[0].Name)
	s.Equal("Bolt", invoices[1].Items[0].Name)
}

func (s *StoreTestSuite) TestListInvoicesByUser_Empty() {
	userID := uuid.New()

	s.mock.ExpectQuery(`FROM invoices`).
		WithArgs(userID, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "sub_total", "gst", "total", "created_at"}))

	invoices, err := s.store.ListInvoicesByUser(s.ctx, userID, 10)
	s.Require().NoError(err)
	s.NotNil(invoices)
	s.Empty(invoices)
}

func (s *StoreTestSuite) TestPing() {
	s.mock.ExpectPing()
	s.NoError(s.store.Ping(s.ctx))
}
