package sqlite

import (
	"context"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/pkg/idx"
)

type invoicesRepo struct {
	db dbtx
}

const invoiceColumns = `id, number, client_name, client_email, currency, status, due_date, created_by, created_at, updated_at`

func (r *invoicesRepo) CreateInvoice(ctx context.Context, inv domain.Invoice) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = inv.CreatedAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (id, number, client_name, client_email, currency, status, due_date, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID.String(), inv.Number, inv.ClientName, inv.ClientEmail, inv.Currency,
		inv.Status, inv.DueDate.UTC(), inv.CreatedBy.String(), inv.CreatedAt, inv.UpdatedAt)
	return mapConflict(err)
}

func (r *invoicesRepo) CreateLineItem(ctx context.Context, item domain.LineItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO line_items (id, invoice_id, description, quantity, unit_price_cents, position)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID.String(), item.InvoiceID.String(), item.Description,
		item.Quantity, item.UnitPriceCents, item.Position)
	return mapConflict(err)
}

func (r *invoicesRepo) GetInvoiceByID(ctx context.Context, id idx.ID) (domain.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id.String())
	inv, err := scanInvoice(row)
	if err != nil {
		return domain.Invoice{}, err
	}

	items, err := r.listLineItems(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.Items = items
	return inv, nil
}

func (r *invoicesRepo) listLineItems(ctx context.Context, invoiceID idx.ID) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, invoice_id, description, quantity, unit_price_cents, position
		 FROM line_items WHERE invoice_id = ? ORDER BY position`, invoiceID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var (
			item  domain.LineItem
			id    string
			invID string
		)
		if err := rows.Scan(&id, &invID, &item.Description, &item.Quantity,
			&item.UnitPriceCents, &item.Position); err != nil {
			return nil, err
		}
		item.ID = idx.ID(id)
		item.InvoiceID = idx.ID(invID)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *invoicesRepo) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invoicesRepo) UpdateInvoiceStatus(ctx context.Context, id idx.ID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id.String())
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *invoicesRepo) DeleteInvoice(ctx context.Context, id idx.ID) error {
	// line_items cascade per schema
	_, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id.String())
	return err
}

func scanInvoice(row rowScanner) (domain.Invoice, error) {
	var (
		inv       domain.Invoice
		id        string
		createdBy string
	)
	err := row.Scan(&id, &inv.Number, &inv.ClientName, &inv.ClientEmail, &inv.Currency,
		&inv.Status, &inv.DueDate, &createdBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invoice{}, mapNotFound(err)
	}
	inv.ID = idx.ID(id)
	inv.CreatedBy = idx.ID(createdBy)
	return inv, nil
}
