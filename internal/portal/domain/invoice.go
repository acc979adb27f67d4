package domain

import (
	"time"

	"github.com/halcyonstudio/portal/pkg/idx"
)

// Invoice statuses.
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
	InvoiceVoid  = "void"
)

type Invoice struct {
	ID          idx.ID
	Number      string // human-facing invoice number, e.g. "INV-2026-0042"
	ClientName  string
	ClientEmail string
	Currency    string // ISO 4217, e.g. "USD"
	Status      string
	DueDate     time.Time
	Items       []LineItem
	CreatedBy   idx.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type LineItem struct {
	ID             idx.ID
	InvoiceID      idx.ID
	Description    string
	Quantity       int64
	UnitPriceCents int64
	Position       int
}

// TotalCents sums quantity times unit price over all line items.
func (inv Invoice) TotalCents() int64 {
	var total int64
	for _, item := range inv.Items {
		total += item.Quantity * item.UnitPriceCents
	}
	return total
}
