package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"invoice-server/internal/auth"
	"invoice-server/internal/database"
	"invoice-server/internal/logging"
	"invoice-server/internal/mailer"
	"invoice-server/internal/models"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const (
	ResetTokenLength = 40
	ResetTokenTTL    = time.Hour
	resetAlphabet    = "0123456789abcdef"
)

type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ResetPasswordByToken(ctx context.Context, token, passwordHash string) (uuid.UUID, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type AccountConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	FrontendURL string
}

type AccountService struct {
	users UserStore
	mail  Mailer
	log   logging.Logger
	cfg   AccountConfig

	// Compared against on unknown emails so both failure paths cost one
	// bcrypt run.
	dummyHash string

	newToken func() string
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewAccountService(users UserStore, mail Mailer, log logging.Logger, cfg AccountConfig) (*AccountService, error) {
	gen, err := nanoid.CustomASCII(resetAlphabet, ResetTokenLength)
	if err != nil {
		return nil, fmt.Errorf("reset token generator: %w", err)
	}
	dummy, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	if log == nil {
		log = logging.Nop()
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &AccountService{
		users:     users,
		mail:      mail,
		log:       log,
		cfg:       cfg,
		dummyHash: dummy,
		newToken:  gen,
		now:       time.Now,
	}, nil
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, database.CreateUserParams{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Authenticate fails with ErrInvalidCredentials for both unknown emails and
// wrong passwords.
func (s *AccountService) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		auth.CheckPasswordHash(in.Password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPasswordHash(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

type Session struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Token string    `json:"token"`
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.Authenticate(ctx, in)
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateJWT(user, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{ID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}

// ResetLink is the frontend page a reset token is redeemed on.
func (s *AccountService) ResetLink(token string) string {
	return s.cfg.FrontendURL + "/reset/" + token
}

// BeginPasswordReset never reports whether the account exists. The reset
// email goes out in the background so response time does not leak it either.
func (s *AccountService) BeginPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		s.log.Debug(ctx, "password reset requested for unknown email")
		return nil
	}

	token := s.newToken()
	if err := s.users.SetResetToken(ctx, user.ID, token, s.now().Add(ResetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.ResetLink(token)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sendResetMail(context.WithoutCancel(ctx), user.Email, link)
	}()
	return nil
}

func (s *AccountService) sendResetMail(ctx context.Context, to, link string) {
	if s.mail == nil {
		s.log.Warn(ctx, "no mail transport configured, password reset link", "email", to, "link", link)
		return
	}
	err := s.mail.Send(ctx, mailer.Message{
		To:      to,
		Subject: "Password reset",
		HTML:    fmt.Sprintf(`<p>Click the link to reset your password:</p><p><a href="%s">%s</a></p>`, link, link),
		Text:    "Reset your password: " + link,
	})
	if err != nil {
		s.log.Error(ctx, "failed to send reset email", "error", err)
		s.log.Warn(ctx, "password reset link", "email", to, "link", link)
		return
	}
	s.log.Info(ctx, "password reset email sent", "email", to)
}

type ResetInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *AccountService) CompletePasswordReset(ctx context.Context, in ResetInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.ResetPasswordByToken(ctx, in.Token, hash)
	if err != nil {
		if errors.Is(err, database.ErrResetTokenExpired) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info(ctx, "password reset completed", "user_id", userID)
	return nil
}

// Wait blocks until every reset email dispatch has finished.
func (s *AccountService) Wait() {
	s.wg.Wait()
}
