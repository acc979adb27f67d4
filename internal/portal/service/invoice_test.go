package service

import (
	"context"
	"testing"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, ctx, st)

	newService := func() *InvoiceService {
		return &InvoiceService{
			Store:  st,
			Access: &AccessService{Store: st},
			Mailer: NopMailer{},
			PDF:    NewInvoicePDF("Halcyon Studio"),
		}
	}

	t.Run("creates invoice with line items and a share code", func(t *testing.T) {
		svc := newService()

		created, err := svc.Create(ctx, CreateInvoiceInput{
			Number:      "INV-2026-0001",
			ClientName:  "Acme Co",
			ClientEmail: "billing@acme.test",
			Currency:    "USD",
			DueDate:     time.Now().Add(14 * 24 * time.Hour),
			Items: []LineItemInput{
				{Description: "Design sprint", Quantity: 2, UnitPriceCents: 150000},
				{Description: "Hosting setup", Quantity: 1, UnitPriceCents: 20000},
			},
			CreatedBy: user.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, created.Code)
		require.Equal(t, domain.KindInvoice, created.Code.Resource.Kind)

		got, err := svc.Get(ctx, created.Invoice.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		require.Equal(t, "Design sprint", got.Items[0].Description)
		require.Equal(t, int64(320000), got.TotalCents())
		require.True(t, got.UpdatedAt.Equal(got.CreatedAt))
	})

	t.Run("rejects duplicate invoice numbers", func(t *testing.T) {
		svc := newService()

		in := CreateInvoiceInput{
			Number:     "INV-2026-0002",
			ClientName: "Acme Co",
			DueDate:    time.Now().Add(24 * time.Hour),
			Items:      []LineItemInput{{Description: "Retainer", Quantity: 1, UnitPriceCents: 50000}},
			CreatedBy:  user.ID,
		}
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)

		_, err = svc.Create(ctx, in)
		require.ErrorIs(t, err, ErrDuplicateNumber)
	})

	t.Run("rejects an invoice without items", func(t *testing.T) {
		svc := newService()
		_, err := svc.Create(ctx, CreateInvoiceInput{
			Number:     "INV-2026-0003",
			ClientName: "Acme Co",
			DueDate:    time.Now().Add(24 * time.Hour),
			CreatedBy:  user.ID,
		})
		require.ErrorIs(t, err, ErrInvalidInvoice)
	})

	t.Run("code issue failure does not fail the create", func(t *testing.T) {
		broken := &brokenCodesStore{Store: st}
		svc := &InvoiceService{
			Store:  broken,
			Access: &AccessService{Store: broken},
			Mailer: NopMailer{},
		}

		created, err := svc.Create(ctx, CreateInvoiceInput{
			Number:     "INV-2026-0004",
			ClientName: "Acme Co",
			DueDate:    time.Now().Add(24 * time.Hour),
			Items:      []LineItemInput{{Description: "Audit", Quantity: 1, UnitPriceCents: 90000}},
			CreatedBy:  user.ID,
		})
		require.NoError(t, err)
		require.Nil(t, created.Code)

		got, err := st.Invoices().GetInvoiceByID(ctx, created.Invoice.ID)
		require.NoError(t, err)
		require.Equal(t, "INV-2026-0004", got.Number)
	})
}

func TestInvoiceLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, ctx, st)

	access := &AccessService{Store: st}
	svc := &InvoiceService{
		Store:  st,
		Access: access,
		Mailer: NopMailer{},
		PDF:    NewInvoicePDF("Halcyon Studio"),
	}

	created, err := svc.Create(ctx, CreateInvoiceInput{
		Number:     "INV-2026-0100",
		ClientName: "Acme Co",
		Currency:   "USD",
		DueDate:    time.Now().Add(30 * 24 * time.Hour),
		Items:      []LineItemInput{{Description: "Development", Quantity: 10, UnitPriceCents: 12000}},
		CreatedBy:  user.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Code)

	t.Run("status transitions", func(t *testing.T) {
		require.NoError(t, svc.UpdateStatus(ctx, created.Invoice.ID, domain.InvoiceSent))
		require.NoError(t, svc.UpdateStatus(ctx, created.Invoice.ID, domain.InvoicePaid))

		got, err := svc.Get(ctx, created.Invoice.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvoicePaid, got.Status)

		require.ErrorIs(t, svc.UpdateStatus(ctx, created.Invoice.ID, "overdue"), ErrInvalidInvoice)
		require.ErrorIs(t, svc.UpdateStatus(ctx, idx.New(), domain.InvoicePaid), ErrInvoiceNotFound)
	})

	t.Run("renders a pdf", func(t *testing.T) {
		pdf, err := svc.RenderPDF(ctx, created.Invoice.ID)
		require.NoError(t, err)
		require.True(t, len(pdf) > 4)
		require.Equal(t, "%PDF", string(pdf[:4]))
	})

	t.Run("pdf for a missing invoice reports not found", func(t *testing.T) {
		_, err := svc.RenderPDF(ctx, idx.New())
		require.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	t.Run("delete removes invoice, items and codes", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, created.Invoice.ID))

		_, err := svc.Get(ctx, created.Invoice.ID)
		require.ErrorIs(t, err, ErrInvoiceNotFound)

		_, err = access.Validate(ctx, created.Code.Code)
		require.ErrorIs(t, err, ErrCodeNotFound)
	})
}
