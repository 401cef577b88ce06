package database

import (
	"context"
	"errors"
	"invoice-server/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, created_at
	`
	var user models.User
	err := q.db.QueryRow(ctx, query, uuid.New(), arg.Name, arg.Email, arg.PasswordHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, reset_token, reset_token_expiry, created_at
		FROM users
		WHERE email = $1
	`
	return q.scanUser(q.db.QueryRow(ctx, query, email))
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, reset_token, reset_token_expiry, created_at
		FROM users
		WHERE id = $1
	`
	return q.scanUser(q.db.QueryRow(ctx, query, id))
}

func (q *Queries) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SetResetToken overwrites any previously issued token for the user.
func (q *Queries) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`
	_, err := q.db.Exec(ctx, query, token, expiresAt, userID)
	return err
}

// ResetPasswordByToken consumes an unexpired token and stores the new hash in
// one statement, so a token can be redeemed at most once.
func (q *Queries) ResetPasswordByToken(ctx context.Context, token, passwordHash string) (uuid.UUID, error) {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL
		WHERE reset_token = $2 AND reset_token_expiry > NOW()
		RETURNING id
	`
	var id uuid.UUID
	err := q.db.QueryRow(ctx, query, passwordHash, token).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrResetTokenExpired
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (q *Queries) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	query := `
		UPDATE users
		SET reset_token = NULL, reset_token_expiry = NULL
		WHERE reset_token IS NOT NULL AND reset_token_expiry <= NOW()
	`
	res, err := q.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
