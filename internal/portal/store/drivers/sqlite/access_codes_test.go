package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStoreWithFixtures(t *testing.T) (*Store, domain.Proposal, domain.Invoice) {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	ctx := context.Background()
	now := time.Now().UTC()

	user := domain.User{
		ID:           idx.New(),
		Email:        "staff@halcyon.test",
		Name:         "Test Staff",
		PasswordHash: "argon2id:dummy",
		Role:         domain.RoleStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))

	proposal := domain.Proposal{
		ID:         idx.New(),
		Title:      "Website redesign",
		ClientName: "Acme Co",
		Status:     domain.ProposalDraft,
		CreatedBy:  user.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, st.Proposals().CreateProposal(ctx, proposal))

	invoice := domain.Invoice{
		ID:         idx.New(),
		Number:     "INV-2026-0001",
		ClientName: "Acme Co",
		Currency:   "USD",
		Status:     domain.InvoiceDraft,
		DueDate:    now.Add(14 * 24 * time.Hour),
		CreatedBy:  user.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, st.Invoices().CreateInvoice(ctx, invoice))

	return st, proposal, invoice
}

func TestAccessCodesResourceMapping(t *testing.T) {
	ctx := context.Background()
	st, proposal, invoice := newStoreWithFixtures(t)

	t.Run("proposal reference round-trips through the proposal column", func(t *testing.T) {
		record := domain.AccessCode{
			ID:        idx.New(),
			Code:      "Ab3dEf7h",
			Resource:  domain.ResourceRef{Kind: domain.KindProposal, ID: proposal.ID},
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, st.AccessCodes().CreateAccessCode(ctx, record))

		got, err := st.AccessCodes().GetAccessCodeByCode(ctx, record.Code)
		require.NoError(t, err)
		require.Equal(t, domain.KindProposal, got.Resource.Kind)
		require.Equal(t, proposal.ID, got.Resource.ID)
	})

	t.Run("invoice reference round-trips through the invoice column", func(t *testing.T) {
		record := domain.AccessCode{
			ID:        idx.New(),
			Code:      "Zx9yWv1u",
			Resource:  domain.ResourceRef{Kind: domain.KindInvoice, ID: invoice.ID},
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, st.AccessCodes().CreateAccessCode(ctx, record))

		got, err := st.AccessCodes().GetAccessCodeByCode(ctx, record.Code)
		require.NoError(t, err)
		require.Equal(t, domain.KindInvoice, got.Resource.Kind)
		require.Equal(t, invoice.ID, got.Resource.ID)
	})

	t.Run("duplicate code surfaces as ErrAlreadyExists", func(t *testing.T) {
		record := domain.AccessCode{
			ID:        idx.New(),
			Code:      "DupCode1",
			Resource:  domain.ResourceRef{Kind: domain.KindProposal, ID: proposal.ID},
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, st.AccessCodes().CreateAccessCode(ctx, record))

		dup := record
		dup.ID = idx.New()
		require.ErrorIs(t, st.AccessCodes().CreateAccessCode(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("a record violating exactly-one-reference is rejected by the schema", func(t *testing.T) {
		// Bypass the repo mapping and try to insert a row with both columns
		// set; the CHECK constraint refuses it.
		_, err := st.db.ExecContext(ctx,
			`INSERT INTO access_codes (id, code, proposal_id, invoice_id, client_name, expires_at, created_at)
			 VALUES (?, ?, ?, ?, '', ?, ?)`,
			idx.New().String(), "BothCols", proposal.ID.String(), invoice.ID.String(),
			time.Now().UTC().Add(time.Hour), time.Now().UTC())
		require.Error(t, err)
	})

	t.Run("deleting the resource cascades to its codes", func(t *testing.T) {
		record := domain.AccessCode{
			ID:        idx.New(),
			Code:      "CascadeX",
			Resource:  domain.ResourceRef{Kind: domain.KindInvoice, ID: invoice.ID},
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, st.AccessCodes().CreateAccessCode(ctx, record))

		require.NoError(t, st.Invoices().DeleteInvoice(ctx, invoice.ID))

		_, err := st.AccessCodes().GetAccessCodeByCode(ctx, record.Code)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete by resource removes only that resource's codes", func(t *testing.T) {
		first := domain.AccessCode{
			ID:        idx.New(),
			Code:      "KeepMe12",
			Resource:  domain.ResourceRef{Kind: domain.KindProposal, ID: proposal.ID},
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, st.AccessCodes().CreateAccessCode(ctx, first))

		ref := domain.ResourceRef{Kind: domain.KindProposal, ID: proposal.ID}
		require.NoError(t, st.AccessCodes().DeleteAccessCodesForResource(ctx, ref))

		_, err := st.AccessCodes().GetAccessCodeByCode(ctx, first.Code)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAccessCodesDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newStoreWithFixtures(t)

	id := idx.New()
	require.NoError(t, st.AccessCodes().DeleteAccessCode(ctx, id))
	require.NoError(t, st.AccessCodes().DeleteAccessCode(ctx, id))
}
