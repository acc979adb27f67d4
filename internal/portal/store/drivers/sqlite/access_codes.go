package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/pkg/idx"
)

type accessCodesRepo struct {
	db dbtx
}

func (r *accessCodesRepo) CreateAccessCode(ctx context.Context, c domain.AccessCode) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	// Split the tagged reference into the two nullable FK columns. This is
	// the only place (besides scanning) where the loose-union shape leaks.
	var proposalID, invoiceID sql.NullString
	switch c.Resource.Kind {
	case domain.KindProposal:
		proposalID = mapStringNull(c.Resource.ID.String())
	case domain.KindInvoice:
		invoiceID = mapStringNull(c.Resource.ID.String())
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_codes (id, code, proposal_id, invoice_id, client_name, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Code, proposalID, invoiceID, c.ClientName,
		c.ExpiresAt.UTC(), c.CreatedAt)
	return mapConflict(err)
}

func (r *accessCodesRepo) GetAccessCodeByCode(ctx context.Context, code string) (domain.AccessCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, proposal_id, invoice_id, client_name, expires_at, created_at
		 FROM access_codes WHERE code = ?`, code)

	var (
		c                     domain.AccessCode
		id                    string
		proposalID, invoiceID sql.NullString
	)
	err := row.Scan(&id, &c.Code, &proposalID, &invoiceID, &c.ClientName,
		&c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.AccessCode{}, mapNotFound(err)
	}

	c.ID = idx.ID(id)
	switch {
	case proposalID.Valid:
		c.Resource = domain.ResourceRef{Kind: domain.KindProposal, ID: idx.ID(proposalID.String)}
	case invoiceID.Valid:
		c.Resource = domain.ResourceRef{Kind: domain.KindInvoice, ID: idx.ID(invoiceID.String)}
	}
	// Neither set should be impossible per schema CHECK; the service treats
	// a zero Resource as a corrupt record rather than trusting that.
	return c, nil
}

func (r *accessCodesRepo) DeleteAccessCode(ctx context.Context, id idx.ID) error {
	// Intentionally not an error when the row is already gone: lazy expiry
	// may race with a concurrent validation or an explicit revoke.
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_codes WHERE id = ?`, id.String())
	return err
}

func (r *accessCodesRepo) DeleteAccessCodesForResource(ctx context.Context, ref domain.ResourceRef) error {
	var column string
	switch ref.Kind {
	case domain.KindProposal:
		column = "proposal_id"
	case domain.KindInvoice:
		column = "invoice_id"
	default:
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM access_codes WHERE `+column+` = ?`, ref.ID.String())
	return err
}
