package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/internal/portal/store/drivers/sqlite"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures sent codes for assertions.
type recordingMailer struct {
	to    []string
	codes []string
}

func (m *recordingMailer) SendAccessCode(to, clientName string, kind domain.ResourceKind, code string, expiresAt time.Time) error {
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	return nil
}

// brokenCodesStore wraps a real store but fails every access code insert, to
// exercise the non-fatal issue path on resource creation.
type brokenCodesStore struct {
	*sqlite.Store
}

func (s *brokenCodesStore) AccessCodes() store.AccessCodes {
	return brokenCodesRepo{}
}

type brokenCodesRepo struct{}

func (brokenCodesRepo) CreateAccessCode(context.Context, domain.AccessCode) error {
	return errors.New("disk full")
}

func (brokenCodesRepo) GetAccessCodeByCode(context.Context, string) (domain.AccessCode, error) {
	return domain.AccessCode{}, store.ErrNotFound
}

func (brokenCodesRepo) DeleteAccessCode(context.Context, idx.ID) error { return nil }

func (brokenCodesRepo) DeleteAccessCodesForResource(context.Context, domain.ResourceRef) error {
	return nil
}

func TestCreateProposal(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, ctx, st)

	t.Run("creates proposal with a share code and mails it", func(t *testing.T) {
		mailer := &recordingMailer{}
		svc := &ProposalService{
			Store:  st,
			Access: &AccessService{Store: st},
			Mailer: mailer,
		}

		created, err := svc.Create(ctx, CreateProposalInput{
			Title:       "Brand refresh",
			ClientName:  "Acme Co",
			ClientEmail: "billing@acme.test",
			AmountCents: 120000,
			CreatedBy:   user.ID,
		})
		require.NoError(t, err)
		require.Equal(t, domain.ProposalDraft, created.Proposal.Status)
		require.NotNil(t, created.Code)
		require.Equal(t, domain.KindProposal, created.Code.Resource.Kind)
		require.Equal(t, created.Proposal.ID, created.Code.Resource.ID)

		// The code works immediately.
		ref, err := svc.Access.Validate(ctx, created.Code.Code)
		require.NoError(t, err)
		require.Equal(t, created.Proposal.ID, ref.ID)

		// And the client got it by mail.
		require.Equal(t, []string{"billing@acme.test"}, mailer.to)
		require.Equal(t, []string{created.Code.Code}, mailer.codes)

		// A fresh row carries the same created and updated instants.
		got, err := st.Proposals().GetProposalByID(ctx, created.Proposal.ID)
		require.NoError(t, err)
		require.True(t, got.UpdatedAt.Equal(got.CreatedAt))
	})

	t.Run("skips mail when client email is empty", func(t *testing.T) {
		mailer := &recordingMailer{}
		svc := &ProposalService{
			Store:  st,
			Access: &AccessService{Store: st},
			Mailer: mailer,
		}

		created, err := svc.Create(ctx, CreateProposalInput{
			Title:      "No email",
			ClientName: "Acme Co",
			CreatedBy:  user.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, created.Code)
		require.Empty(t, mailer.to)
	})

	t.Run("code issue failure does not fail the create", func(t *testing.T) {
		broken := &brokenCodesStore{Store: st}
		svc := &ProposalService{
			Store:  broken,
			Access: &AccessService{Store: broken},
			Mailer: NopMailer{},
		}

		created, err := svc.Create(ctx, CreateProposalInput{
			Title:      "Resilient",
			ClientName: "Acme Co",
			CreatedBy:  user.ID,
		})
		require.NoError(t, err)
		require.Nil(t, created.Code)

		// The proposal itself is persisted.
		got, err := st.Proposals().GetProposalByID(ctx, created.Proposal.ID)
		require.NoError(t, err)
		require.Equal(t, "Resilient", got.Title)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		svc := &ProposalService{Store: st, Access: &AccessService{Store: st}}
		_, err := svc.Create(ctx, CreateProposalInput{ClientName: "Acme Co", CreatedBy: user.ID})
		require.ErrorIs(t, err, ErrInvalidProposal)
	})
}

func TestProposalLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, ctx, st)

	access := &AccessService{Store: st}
	svc := &ProposalService{Store: st, Access: access, Mailer: NopMailer{}}

	created, err := svc.Create(ctx, CreateProposalInput{
		Title:      "Lifecycle",
		ClientName: "Acme Co",
		CreatedBy:  user.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Code)

	t.Run("status transitions", func(t *testing.T) {
		require.NoError(t, svc.UpdateStatus(ctx, created.Proposal.ID, domain.ProposalSent))

		got, err := svc.Get(ctx, created.Proposal.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ProposalSent, got.Status)

		require.ErrorIs(t, svc.UpdateStatus(ctx, created.Proposal.ID, "archived"), ErrInvalidProposal)
		require.ErrorIs(t, svc.UpdateStatus(ctx, idx.New(), domain.ProposalSent), ErrProposalNotFound)
	})

	t.Run("delete revokes every bound code", func(t *testing.T) {
		// A second code for the same proposal to prove the cascade is total.
		extra, err := access.Issue(ctx,
			domain.ResourceRef{Kind: domain.KindProposal, ID: created.Proposal.ID}, "Acme Co")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, created.Proposal.ID))

		_, err = svc.Get(ctx, created.Proposal.ID)
		require.ErrorIs(t, err, ErrProposalNotFound)

		_, err = access.Validate(ctx, created.Code.Code)
		require.ErrorIs(t, err, ErrCodeNotFound)
		_, err = access.Validate(ctx, extra.Code)
		require.ErrorIs(t, err, ErrCodeNotFound)
	})
}
