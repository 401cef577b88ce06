package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"invoice-server/internal/database"
	"invoice-server/internal/invoice"
	"invoice-server/internal/logging"
	"invoice-server/internal/models"
	"invoice-server/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventInvoiceCreated = "invoice.created"

type InvoiceStore interface {
	CreateInvoice(ctx context.Context, arg database.CreateInvoiceParams) (*models.Invoice, error)
	GetInvoice(ctx context.Context, id, userID uuid.UUID) (*models.Invoice, error)
	ListInvoicesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Invoice, error)
}

type Renderer interface {
	RenderPDF(ctx context.Context, inv *models.Invoice) ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, eventType string, payload any)
}

type InvoiceService struct {
	store    InvoiceStore
	renderer Renderer
	archive  storage.Storage
	events   Publisher
	log      logging.Logger
}

// NewInvoiceService wires the invoice pipeline. archive and events are
// optional.
func NewInvoiceService(store InvoiceStore, renderer Renderer, archive storage.Storage, events Publisher, log logging.Logger) *InvoiceService {
	if log == nil {
		log = logging.Nop()
	}
	return &InvoiceService{
		store:    store,
		renderer: renderer,
		archive:  archive,
		events:   events,
		log:      log,
	}
}

// Bounds follow the invoice_items columns: VARCHAR(255) names and INT quantities.
type ItemInput struct {
	Name string          `json:"name" validate:"notblank,max=255"`
	Qty  int             `json:"qty" validate:"gt=0,lte=2147483647"`
	Rate decimal.Decimal `json:"rate" swaggertype:"number"`
}

type GenerateInput struct {
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

func (in GenerateInput) validate() error {
	err := validateStruct(in)
	var verr *ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}
	if verr == nil {
		verr = &ValidationError{}
	}
	for i, item := range in.Items {
		field := fmt.Sprintf("items[%d].rate", i)
		switch {
		case !item.Rate.IsPositive():
			verr.Errors = append(verr.Errors, FieldError{Field: field, Message: "must be greater than 0"})
		case !invoice.IsCents(item.Rate):
			verr.Errors = append(verr.Errors, FieldError{Field: field, Message: "must have at most 2 decimal places"})
		case item.Rate.GreaterThan(invoice.MaxAmount):
			verr.Errors = append(verr.Errors, FieldError{Field: field, Message: "is too large"})
		}
	}
	if len(verr.Errors) > 0 {
		return verr
	}

	// Every stored amount must fit its NUMERIC(14,2) column; Total is the largest.
	if totals := invoice.ComputeTotals(in.lineItems()); totals.Total.GreaterThan(invoice.MaxAmount) {
		return NewValidationError("items", "invoice total is too large")
	}
	return nil
}

func (in GenerateInput) lineItems() []models.LineItem {
	items := make([]models.LineItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = models.LineItem{Name: it.Name, Quantity: it.Qty, Rate: it.Rate}
	}
	return items
}

type GeneratedInvoice struct {
	Invoice *models.Invoice
	PDF     []byte
}

// Generate persists the invoice, renders it and returns the PDF bytes.
func (s *InvoiceService) Generate(ctx context.Context, userID uuid.UUID, in GenerateInput) (*GeneratedInvoice, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	totals := invoice.ComputeTotals(in.lineItems())

	created, err := s.store.CreateInvoice(ctx, database.CreateInvoiceParams{
		ID:       uuid.New(),
		UserID:   userID,
		Items:    totals.Items,
		SubTotal: totals.SubTotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	inv, err := s.store.GetInvoice(ctx, created.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("reload invoice: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}

	pdf, err := s.renderer.RenderPDF(ctx, inv)
	if err != nil {
		return nil, err
	}

	s.archivePDF(ctx, inv.ID, pdf)
	if s.events != nil {
		s.events.Publish(ctx, userID, EventInvoiceCreated, inv)
	}

	s.log.Info(ctx, "invoice generated", "invoice_id", inv.ID, "user_id", userID, "items", len(inv.Items), "total", inv.Total.StringFixed(2))
	return &GeneratedInvoice{Invoice: inv, PDF: pdf}, nil
}

var pdfMagic = []byte("%PDF-")

func archiveKey(id uuid.UUID) string {
	return id.String() + ".pdf"
}

func (s *InvoiceService) archivePDF(ctx context.Context, id uuid.UUID, pdf []byte) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Save(ctx, archiveKey(id), bytes.NewReader(pdf), int64(len(pdf))); err != nil {
		s.log.Warn(ctx, "failed to archive invoice pdf", "invoice_id", id, "error", err)
	}
}

func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	invoices, err := s.store.ListInvoicesByUser(ctx, userID, database.DefaultInvoiceListLimit)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (s *InvoiceService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// PDF serves the archived document when there is one and re-renders the
// invoice otherwise.
func (s *InvoiceService) PDF(ctx context.Context, userID, id uuid.UUID) (*GeneratedInvoice, error) {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		pdf, err := s.loadArchived(ctx, id)
		switch {
		case err == nil && bytes.HasPrefix(pdf, pdfMagic):
			return &GeneratedInvoice{Invoice: inv, PDF: pdf}, nil
		case err == nil:
			s.log.Warn(ctx, "archived invoice pdf is corrupt, re-rendering", "invoice_id", id, "bytes", len(pdf))
			if err := s.archive.Delete(ctx, archiveKey(id)); err != nil {
				s.log.Warn(ctx, "failed to delete corrupt invoice pdf", "invoice_id", id, "error", err)
			}
		case !errors.Is(err, storage.ErrNotFound):
			s.log.Warn(ctx, "failed to read archived invoice pdf", "invoice_id", id, "error", err)
		}
	}

	pdf, err := s.renderer.RenderPDF(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.archivePDF(ctx, id, pdf)
	return &GeneratedInvoice{Invoice: inv, PDF: pdf}, nil
}

func (s *InvoiceService) loadArchived(ctx context.Context, id uuid.UUID) ([]byte, error) {
	rc, err := s.archive.Get(ctx, archiveKey(id))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
