package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

var (
	ErrInvalidInvoice  = errors.New("invalid invoice")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrDuplicateNumber = errors.New("invoice number already in use")
)

// InvoiceService owns invoice CRUD (including nested line items) and the
// access-code side effects of it.
type InvoiceService struct {
	Store  store.Store
	Access *AccessService
	Mailer Mailer
	PDF    *InvoicePDF
}

type CreateInvoiceInput struct {
	Number      string
	ClientName  string
	ClientEmail string
	Currency    string
	DueDate     time.Time
	Items       []LineItemInput
	CreatedBy   idx.ID
}

type LineItemInput struct {
	Description    string
	Quantity       int64
	UnitPriceCents int64
}

// CreatedInvoice bundles a freshly created invoice with its share code.
// Code is nil when issuing failed; the invoice itself is still created.
type CreatedInvoice struct {
	Invoice domain.Invoice
	Code    *domain.AccessCode
}

// Create persists a new invoice and its line items atomically, then mints a
// share code for it. As with proposals, code issuance failure is non-fatal
// and only logged.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (CreatedInvoice, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if in.Number == "" || in.ClientName == "" || len(in.Items) == 0 {
		return CreatedInvoice{}, ErrInvalidInvoice
	}
	for _, item := range in.Items {
		if item.Description == "" || item.Quantity <= 0 {
			return CreatedInvoice{}, ErrInvalidInvoice
		}
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	invoice := domain.Invoice{
		ID:          idx.New(),
		Number:      in.Number,
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		Currency:    currency,
		Status:      domain.InvoiceDraft,
		DueDate:     in.DueDate,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	invoice.UpdatedAt = invoice.CreatedAt
	for i, item := range in.Items {
		invoice.Items = append(invoice.Items, domain.LineItem{
			ID:             idx.New(),
			InvoiceID:      invoice.ID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			Position:       i,
		})
	}

	// 2. Persist header and line items in one transaction.
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invoices().CreateInvoice(ctx, invoice); err != nil {
			return err
		}
		for _, item := range invoice.Items {
			if err := tx.Invoices().CreateLineItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return CreatedInvoice{}, ErrDuplicateNumber
		}
		log.Error("failed to create invoice", slog.Any("error", err))
		return CreatedInvoice{}, err
	}

	// 3. Mint the share code. Failure is non-fatal.
	result := CreatedInvoice{Invoice: invoice}
	code, err := s.Access.Issue(ctx,
		domain.ResourceRef{Kind: domain.KindInvoice, ID: invoice.ID},
		invoice.ClientName,
	)
	if err != nil {
		log.Warn("invoice created but access code issuing failed",
			slog.String("invoice_id", invoice.ID.String()),
			slog.Any("error", err),
		)
		return result, nil
	}
	result.Code = &code

	// 4. Email the code to the client when we can. Also non-fatal.
	if s.Mailer != nil && invoice.ClientEmail != "" {
		if err := s.Mailer.SendAccessCode(invoice.ClientEmail, invoice.ClientName,
			domain.KindInvoice, code.Code, code.ExpiresAt); err != nil {
			log.Warn("failed to email access code",
				slog.String("invoice_id", invoice.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	log.Info("invoice created",
		slog.String("invoice_id", invoice.ID.String()),
		slog.String("number", invoice.Number),
		slog.Int64("total_cents", invoice.TotalCents()),
	)
	return result, nil
}

// Get returns an invoice with its line items.
func (s *InvoiceService) Get(ctx context.Context, id idx.ID) (domain.Invoice, error) {
	inv, err := s.Store.Invoices().GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invoice{}, ErrInvoiceNotFound
		}
		return domain.Invoice{}, err
	}
	return inv, nil
}

// List returns all invoices (without line items), newest first.
func (s *InvoiceService) List(ctx context.Context) ([]domain.Invoice, error) {
	return s.Store.Invoices().ListInvoices(ctx)
}

// UpdateStatus transitions an invoice's status.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id idx.ID, status string) error {
	switch status {
	case domain.InvoiceDraft, domain.InvoiceSent, domain.InvoicePaid, domain.InvoiceVoid:
	default:
		return ErrInvalidInvoice
	}
	err := s.Store.Invoices().UpdateInvoiceStatus(ctx, id, status)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvoiceNotFound
	}
	return err
}

// Delete removes an invoice, its line items and every access code bound to it.
func (s *InvoiceService) Delete(ctx context.Context, id idx.ID) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ref := domain.ResourceRef{Kind: domain.KindInvoice, ID: id}
		if err := tx.AccessCodes().DeleteAccessCodesForResource(ctx, ref); err != nil {
			return err
		}
		return tx.Invoices().DeleteInvoice(ctx, id)
	})
	if err != nil {
		log.Error("failed to delete invoice",
			slog.String("invoice_id", id.String()),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("invoice deleted", slog.String("invoice_id", id.String()))
	return nil
}

// RenderPDF produces a printable PDF for an invoice.
func (s *InvoiceService) RenderPDF(ctx context.Context, id idx.ID) ([]byte, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.PDF == nil {
		return nil, errors.New("pdf rendering is not configured")
	}
	return s.PDF.Render(inv)
}
