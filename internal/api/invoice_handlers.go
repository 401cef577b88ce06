package api

import (
	"net/http"
	"strconv"

	"invoice-server/internal/invoice"
	"invoice-server/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type GenerateInvoiceRequest struct {
	Items []service.ItemInput `json:"items"`
}

func writePDF(w http.ResponseWriter, out *service.GeneratedInvoice) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+invoice.Filename(out.Invoice.ID))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.PDF)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.PDF)
}

// @Summary      Generate an invoice
// @Description  Stores the invoice, applies 18% GST and returns the rendered A4 PDF.
// @Tags         invoices
// @Accept       json
// @Produce      application/pdf
// @Param        generateInvoiceRequest  body      GenerateInvoiceRequest  true  "Line items"
// @Success      200                     {file}    binary
// @Failure      400                     {object}  ValidationErrorResponse
// @Failure      401                     {object}  MessageResponse
// @Failure      500                     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/generate [post]
func (s *Server) GenerateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req GenerateInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.invoices.Generate(r.Context(), claims.UserID, service.GenerateInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writePDF(w, out)
}

// @Summary      List invoices
// @Description  Returns the caller's 50 most recent invoices, newest first.
// @Tags         invoices
// @Produce      json
// @Success      200  {array}   models.Invoice
// @Failure      401  {object}  MessageResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /invoice [get]
func (s *Server) ListInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	invoices, err := s.invoices.List(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, invoices)
}

func invoiceIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "invoiceId"))
	if err != nil {
		return uuid.Nil, service.ErrInvoiceNotFound
	}
	return id, nil
}

// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        invoiceId  path      string  true  "Invoice ID"
// @Success      200        {object}  models.Invoice
// @Failure      401        {object}  MessageResponse
// @Failure      404        {object}  MessageResponse
// @Security     BearerAuth
// @Router       /invoice/{invoiceId} [get]
func (s *Server) GetInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	id, err := invoiceIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	inv, err := s.invoices.Get(r.Context(), claims.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

// @Summary      Download an invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        invoiceId  path      string  true  "Invoice ID"
// @Success      200        {file}    binary
// @Failure      401        {object}  MessageResponse
// @Failure      404        {object}  MessageResponse
// @Security     BearerAuth
// @Router       /invoice/{invoiceId}/pdf [get]
func (s *Server) DownloadInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	id, err := invoiceIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.invoices.PDF(r.Context(), claims.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writePDF(w, out)
}
