package service

import (
	"context"
	"testing"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/store/drivers/sqlite"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, ctx context.Context, st *sqlite.Store) domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New(),
		Email:        idx.New().String() + "@halcyon.test",
		Name:         "Test Staff",
		PasswordHash: "argon2id:dummy",
		Role:         domain.RoleStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))
	return user
}

func seedProposal(t *testing.T, ctx context.Context, st *sqlite.Store, createdBy idx.ID) domain.Proposal {
	t.Helper()

	now := time.Now().UTC()
	proposal := domain.Proposal{
		ID:          idx.New(),
		Title:       "Website redesign",
		ClientName:  "Acme Co",
		ClientEmail: "billing@acme.test",
		Body:        "## Scope\nFull redesign.",
		AmountCents: 450000,
		Status:      domain.ProposalDraft,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Proposals().CreateProposal(ctx, proposal))
	return proposal
}

func seedInvoice(t *testing.T, ctx context.Context, st *sqlite.Store, createdBy idx.ID) domain.Invoice {
	t.Helper()

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:          idx.New(),
		Number:      "INV-" + idx.New().String()[:10],
		ClientName:  "Acme Co",
		ClientEmail: "billing@acme.test",
		Currency:    "USD",
		Status:      domain.InvoiceDraft,
		DueDate:     now.Add(14 * 24 * time.Hour),
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Invoices().CreateInvoice(ctx, invoice))
	return invoice
}
