package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoice-server/internal/service"
)

type MessageResponse struct {
	Message string `json:"message" example:"Password reset successful"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Route not found"`
}

type ValidationErrorResponse struct {
	Message string               `json:"message" example:"Validation failed"`
	Errors  []service.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeError maps service errors onto HTTP responses. Anything unrecognised
// is a 500 whose details are hidden in production.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Message: "Validation failed", Errors: verr.Errors})
	case errors.As(err, &maxBytes):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrInvalidResetToken):
		writeMessage(w, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, service.ErrInvoiceNotFound):
		writeMessage(w, http.StatusNotFound, "Invoice not found")
	default:
		s.log.Error(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeInternal(w, err.Error())
	}
}

func (s *Server) writeInternal(w http.ResponseWriter, detail string) {
	message := "Internal Server Error"
	if !s.isProduction() && detail != "" {
		message = detail
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: message})
}

// decodeJSON reads the request body into dst. Malformed bodies come back as a
// ValidationError.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return service.NewValidationError("body", "Invalid request body")
	}
	return nil
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Route not found"})
}
