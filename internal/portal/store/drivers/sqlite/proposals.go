package sqlite

import (
	"context"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/pkg/idx"
)

type proposalsRepo struct {
	db dbtx
}

const proposalColumns = `id, title, client_name, client_email, body, amount_cents, status, created_by, created_at, updated_at`

func (r *proposalsRepo) CreateProposal(ctx context.Context, p domain.Proposal) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO proposals (id, title, client_name, client_email, body, amount_cents, status, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Title, p.ClientName, p.ClientEmail, p.Body,
		p.AmountCents, p.Status, p.CreatedBy.String(), p.CreatedAt, p.UpdatedAt)
	return mapConflict(err)
}

func (r *proposalsRepo) GetProposalByID(ctx context.Context, id idx.ID) (domain.Proposal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id.String())
	return scanProposal(row)
}

func (r *proposalsRepo) ListProposals(ctx context.Context) ([]domain.Proposal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *proposalsRepo) UpdateProposalStatus(ctx context.Context, id idx.ID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id.String())
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *proposalsRepo) DeleteProposal(ctx context.Context, id idx.ID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = ?`, id.String())
	return err
}

func scanProposal(row rowScanner) (domain.Proposal, error) {
	var (
		p         domain.Proposal
		id        string
		createdBy string
	)
	err := row.Scan(&id, &p.Title, &p.ClientName, &p.ClientEmail, &p.Body,
		&p.AmountCents, &p.Status, &createdBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Proposal{}, mapNotFound(err)
	}
	p.ID = idx.ID(id)
	p.CreatedBy = idx.ID(createdBy)
	return p, nil
}
