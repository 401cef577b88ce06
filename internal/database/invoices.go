package database

import (
	"context"
	"errors"
	"invoice-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const DefaultInvoiceListLimit = 50

type CreateInvoiceParams struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Items    []models.LineItem
	SubTotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func (q *Queries) InsertInvoice(ctx context.Context, arg CreateInvoiceParams) (*models.Invoice, error) {
	query := `
		INSERT INTO invoices (id, user_id, sub_total, gst, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, sub_total, gst, total, created_at
	`
	var inv models.Invoice
	err := q.db.QueryRow(ctx, query, arg.ID, arg.UserID, arg.SubTotal, arg.Tax, arg.Total).Scan(
		&inv.ID,
		&inv.UserID,
		&inv.SubTotal,
		&inv.Tax,
		&inv.Total,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (q *Queries) InsertInvoiceItem(ctx context.Context, invoiceID uuid.UUID, position int, item models.LineItem) error {
	query := `
		INSERT INTO invoice_items (invoice_id, position, name, qty, rate, total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.db.Exec(ctx, query, invoiceID, position, item.Name, item.Quantity, item.Rate, item.Total)
	return err
}

// CreateInvoice stores the invoice row and all of its items atomically.
func (s *Store) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (*models.Invoice, error) {
	var created *models.Invoice
	err := s.ExecTx(ctx, func(q *Queries) error {
		inv, err := q.InsertInvoice(ctx, arg)
		if err != nil {
			return err
		}
		for i, item := range arg.Items {
			if err := q.InsertInvoiceItem(ctx, inv.ID, i, item); err != nil {
				return err
			}
		}
		inv.Items = append([]models.LineItem(nil), arg.Items...)
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetInvoice returns the invoice joined with its owner, or nil when it does
// not exist or belongs to someone else.
func (q *Queries) GetInvoice(ctx context.Context, id, userID uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT i.id, i.user_id, i.sub_total, i.gst, i.total, i.created_at, u.name, u.email
		FROM invoices i
		JOIN users u ON u.id = i.user_id
		WHERE i.id = $1 AND i.user_id = $2
	`
	var inv models.Invoice
	var owner models.InvoiceOwner
	err := q.db.QueryRow(ctx, query, id, userID).Scan(
		&inv.ID,
		&inv.UserID,
		&inv.SubTotal,
		&inv.Tax,
		&inv.Total,
		&inv.CreatedAt,
		&owner.Name,
		&owner.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	inv.Owner = &owner

	items, err := q.listItems(ctx, []uuid.UUID{inv.ID})
	if err != nil {
		return nil, err
	}
	inv.Items = items[inv.ID]
	if inv.Items == nil {
		inv.Items = []models.LineItem{}
	}
	return &inv, nil
}

func (q *Queries) ListInvoicesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = DefaultInvoiceListLimit
	}
	query := `
		SELECT id, user_id, sub_total, gst, total, created_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := q.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		err := rows.Scan(
			&inv.ID,
			&inv.UserID,
			&inv.SubTotal,
			&inv.Tax,
			&inv.Total,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if invoices == nil {
		return []models.Invoice{}, nil
	}

	ids := make([]uuid.UUID, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}
	items, err := q.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Items = items[invoices[i].ID]
		if invoices[i].Items == nil {
			invoices[i].Items = []models.LineItem{}
		}
	}

	return invoices, nil
}

func (q *Queries) listItems(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID][]models.LineItem, error) {
	query := `
		SELECT invoice_id, name, qty, rate, total
		FROM invoice_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position
	`
	rows, err := q.db.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.LineItem, len(invoiceIDs))
	for rows.Next() {
		var invoiceID uuid.UUID
		var item models.LineItem
		if err := rows.Scan(&invoiceID, &item.Name, &item.Quantity, &item.Rate, &item.Total); err != nil {
			return nil, err
		}
		items[invoiceID] = append(items[invoiceID], item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
