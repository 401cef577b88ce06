package api

import (
	"encoding/json"
	"net/http"

	"invoice-server/internal/service"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name" example:"Asha Rao"`
	Email    string `json:"email" example:"asha@example.com"`
	Password string `json:"password" example:"secret123"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name" example:"Asha Rao"`
	Email string    `json:"email" example:"asha@example.com"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"asha@example.com"`
	Password string `json:"password" example:"secret123"`
}

type LoginResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name" example:"Asha Rao"`
	Email string    `json:"email" example:"asha@example.com"`
	Token string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"asha@example.com"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b"`
	Password string `json:"password" example:"newsecret123"`
}

const forgotPasswordMessage = "If an account exists, a reset link has been sent"

// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Account details"
// @Success      201              {object}  UserResponse
// @Failure      400              {object}  ValidationErrorResponse
// @Failure      409              {object}  MessageResponse "Email already registered"
// @Failure      500              {object}  ErrorResponse
// @Router       /auth/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.accounts.Register(r.Context(), service.RegisterInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

// @Summary      Log in
// @Description  Exchanges email and password for a bearer token valid for one day.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Credentials"
// @Success      200           {object}  LoginResponse
// @Failure      400           {object}  ValidationErrorResponse
// @Failure      401           {object}  MessageResponse "Invalid credentials"
// @Failure      500           {object}  ErrorResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.accounts.Login(r.Context(), service.LoginInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse(*session))
}

// @Summary      Request a password reset
// @Description  Always answers 200 so callers cannot probe which emails are registered.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        forgotPasswordRequest  body      ForgotPasswordRequest  true  "Account email"
// @Success      200                    {object}  MessageResponse
// @Router       /auth/forgot [post]
func (s *Server) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		if err := s.accounts.BeginPasswordReset(r.Context(), req.Email); err != nil {
			s.log.Error(r.Context(), "password reset request failed", "error", err)
		}
	}

	writeMessage(w, http.StatusOK, forgotPasswordMessage)
}

// @Summary      Reset a password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        resetPasswordRequest  body      ResetPasswordRequest  true  "Reset token and new password"
// @Success      200                   {object}  MessageResponse
// @Failure      400                   {object}  MessageResponse "Invalid or expired token"
// @Failure      500                   {object}  ErrorResponse
// @Router       /auth/reset [post]
func (s *Server) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.CompletePasswordReset(r.Context(), service.ResetInput(req)); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successful")
}
