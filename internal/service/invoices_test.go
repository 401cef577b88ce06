package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"invoice-server/internal/models"
	"invoice-server/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateInput(items ...ItemInput) GenerateInput {
	return GenerateInput{Items: items}
}

func widget() ItemInput {
	return ItemInput{Name: "Widget", Qty: 2, Rate: decimal.NewFromInt(100)}
}

func TestGenerateComputesPersistsAndRenders(t *testing.T) {
	store := newMemInvoices()
	renderer := &stubRenderer{}
	events := &recordingPublisher{}
	svc := NewInvoiceService(store, renderer, nil, events, nil)
	userID := uuid.New()

	out, err := svc.Generate(context.Background(), userID, generateInput(widget()))
	require.NoError(t, err)

	assert.Equal(t, "200", out.Invoice.SubTotal.String())
	assert.Equal(t, "36", out.Invoice.Tax.String())
	assert.Equal(t, "236", out.Invoice.Total.String())
	assert.Equal(t, "200", out.Invoice.Items[0].Total.String())
	require.NotNil(t, out.Invoice.Owner)
	assert.Equal(t, "%PDF-"+out.Invoice.ID.String(), string(out.PDF))
	assert.Equal(t, 1, renderer.calls)

	require.Len(t, events.events, 1)
	assert.Equal(t, publishedEvent{userID: userID, eventType: EventInvoiceCreated}, events.events[0])
}

func TestGenerateValidation(t *testing.T) {
	svc := NewInvoiceService(newMemInvoices(), &stubRenderer{}, nil, nil, nil)

	cases := map[string]GenerateInput{
		"no items":                 generateInput(),
		"blank name":               generateInput(ItemInput{Name: "  ", Qty: 1, Rate: decimal.NewFromInt(1)}),
		"zero qty":                 generateInput(ItemInput{Name: "A", Qty: 0, Rate: decimal.NewFromInt(1)}),
		"zero rate":                generateInput(ItemInput{Name: "A", Qty: 1, Rate: decimal.Zero}),
		"neg rate":                 generateInput(ItemInput{Name: "A", Qty: 1, Rate: decimal.NewFromInt(-5)}),
		"sub-cent rate":            generateInput(ItemInput{Name: "Nut", Qty: 7, Rate: decimal.RequireFromString("1.333")}),
		"long name":                generateInput(ItemInput{Name: strings.Repeat("n", 256), Qty: 1, Rate: decimal.NewFromInt(1)}),
		"qty overflows int column": generateInput(ItemInput{Name: "A", Qty: 3000000000, Rate: decimal.NewFromInt(1)}),
		"rate too large":           generateInput(ItemInput{Name: "A", Qty: 1, Rate: decimal.RequireFromString("1e13")}),
		"total too large":          generateInput(ItemInput{Name: "A", Qty: 1000, Rate: decimal.RequireFromString("999999999999")}),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), uuid.New(), in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.NotEmpty(t, verr.Errors)
		})
	}
}

func TestGenerateAcceptsBoundaryItems(t *testing.T) {
	svc := NewInvoiceService(newMemInvoices(), &stubRenderer{}, nil, nil, nil)

	_, err := svc.Generate(context.Background(), uuid.New(), generateInput(
		ItemInput{Name: strings.Repeat("n", 255), Qty: 1, Rate: decimal.RequireFromString("1.330")},
		ItemInput{Name: "Bulk", Qty: 2147483647, Rate: decimal.RequireFromString("0.01")},
	))
	require.NoError(t, err)
}

func TestGenerateLineTotalsMatchRates(t *testing.T) {
	store := newMemInvoices()
	svc := NewInvoiceService(store, &stubRenderer{}, nil, nil, nil)
	userID := uuid.New()

	out, err := svc.Generate(context.Background(), userID, generateInput(
		ItemInput{Name: "Nut", Qty: 7, Rate: decimal.RequireFromString("1.33")},
		ItemInput{Name: "Bolt", Qty: 3, Rate: decimal.RequireFromString("0.99")},
	))
	require.NoError(t, err)

	reloaded, err := svc.Get(context.Background(), userID, out.Invoice.ID)
	require.NoError(t, err)

	for _, inv := range []*models.Invoice{out.Invoice, reloaded} {
		for _, it := range inv.Items {
			assert.True(t, it.Total.Equal(it.Rate.Mul(decimal.NewFromInt(int64(it.Quantity)))), it.Name)
		}
		assert.Equal(t, "9.31", inv.Items[0].Total.StringFixed(2))
		assert.True(t, inv.Total.Equal(inv.SubTotal.Add(inv.Tax)))
	}
}

func TestGenerateRateErrorNamesTheItem(t *testing.T) {
	svc := NewInvoiceService(newMemInvoices(), &stubRenderer{}, nil, nil, nil)

	_, err := svc.Generate(context.Background(), uuid.New(), generateInput(widget(), ItemInput{Name: "B", Qty: 1}))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "items[1].rate", verr.Errors[0].Field)
}

func TestGenerateSurfacesRenderFailure(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("chrome crashed")}
	svc := NewInvoiceService(newMemInvoices(), renderer, nil, nil, nil)

	_, err := svc.Generate(context.Background(), uuid.New(), generateInput(widget()))
	assert.EqualError(t, err, "chrome crashed")
}

func TestGenerateArchivesPDF(t *testing.T) {
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	renderer := &stubRenderer{}
	svc := NewInvoiceService(newMemInvoices(), renderer, archive, nil, nil)
	userID := uuid.New()

	out, err := svc.Generate(context.Background(), userID, generateInput(widget()))
	require.NoError(t, err)

	again, err := svc.PDF(context.Background(), userID, out.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, out.PDF, again.PDF)
	assert.Equal(t, 1, renderer.calls, "archived pdf must be served without re-rendering")
}

type deleteCountingStorage struct {
	storage.Storage
	deletes []string
}

func (d *deleteCountingStorage) Delete(ctx context.Context, id string) error {
	d.deletes = append(d.deletes, id)
	return d.Storage.Delete(ctx, id)
}

func TestPDFReplacesCorruptArchive(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	archive := &deleteCountingStorage{Storage: local}
	renderer := &stubRenderer{}
	svc := NewInvoiceService(newMemInvoices(), renderer, archive, nil, nil)
	userID := uuid.New()
	ctx := context.Background()

	out, err := svc.Generate(ctx, userID, generateInput(widget()))
	require.NoError(t, err)

	garbage := []byte("<html>not a pdf</html>")
	require.NoError(t, archive.Save(ctx, archiveKey(out.Invoice.ID), bytes.NewReader(garbage), int64(len(garbage))))

	again, err := svc.PDF(ctx, userID, out.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, out.PDF, again.PDF)
	assert.Equal(t, 2, renderer.calls)
	assert.Equal(t, []string{archiveKey(out.Invoice.ID)}, archive.deletes)

	rc, err := archive.Get(ctx, archiveKey(out.Invoice.ID))
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, out.PDF, stored)
}

func TestPDFRerendersWithoutArchive(t *testing.T) {
	renderer := &stubRenderer{}
	svc := NewInvoiceService(newMemInvoices(), renderer, nil, nil, nil)
	userID := uuid.New()

	out, err := svc.Generate(context.Background(), userID, generateInput(widget()))
	require.NoError(t, err)

	again, err := svc.PDF(context.Background(), userID, out.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, out.PDF, again.PDF)
	assert.Equal(t, 2, renderer.calls)
}

func TestGetIsOwnerOnly(t *testing.T) {
	svc := NewInvoiceService(newMemInvoices(), &stubRenderer{}, nil, nil, nil)
	owner := uuid.New()

	out, err := svc.Generate(context.Background(), owner, generateInput(widget()))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), owner, out.Invoice.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), out.Invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	_, err = svc.PDF(context.Background(), uuid.New(), out.Invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestListReturnsOnlyCallersInvoices(t *testing.T) {
	svc := NewInvoiceService(newMemInvoices(), &stubRenderer{}, nil, nil, nil)
	me, other := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Generate(context.Background(), me, generateInput(widget()))
		require.NoError(t, err)
	}
	_, err := svc.Generate(context.Background(), other, generateInput(widget()))
	require.NoError(t, err)

	list, err := svc.List(context.Background(), me)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	empty, err := svc.List(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
