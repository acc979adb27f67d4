package http

import (
	"context"
	"testing"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/internal/portal/store/drivers/sqlite"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *sqlite.Store
	access   *service.AccessService
	proposal *service.ProposalService
	invoice  *service.InvoiceService
	user     domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
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

	access := &service.AccessService{Store: st}
	return &testEnv{
		store:  st,
		access: access,
		proposal: &service.ProposalService{
			Store:  st,
			Access: access,
			Mailer: service.NopMailer{},
		},
		invoice: &service.InvoiceService{
			Store:  st,
			Access: access,
			Mailer: service.NopMailer{},
			PDF:    service.NewInvoicePDF("Halcyon Studio"),
		},
		user: user,
	}
}

func (e *testEnv) createProposal(t *testing.T) service.CreatedProposal {
	t.Helper()

	created, err := e.proposal.Create(context.Background(), service.CreateProposalInput{
		Title:      "Website redesign",
		ClientName: "Acme Co",
		CreatedBy:  e.user.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Code)
	return created
}

func (e *testEnv) createInvoice(t *testing.T) service.CreatedInvoice {
	t.Helper()

	created, err := e.invoice.Create(context.Background(), service.CreateInvoiceInput{
		Number:     "INV-" + idx.New().String()[:10],
		ClientName: "Acme Co",
		Currency:   "USD",
		DueDate:    time.Now().Add(14 * 24 * time.Hour),
		Items: []service.LineItemInput{
			{Description: "Design sprint", Quantity: 1, UnitPriceCents: 150000},
		},
		CreatedBy: e.user.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Code)
	return created
}
