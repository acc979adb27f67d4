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
	ErrInvalidProposal  = errors.New("invalid proposal")
	ErrProposalNotFound = errors.New("proposal not found")
)

// ProposalService owns proposal CRUD and the access-code side effects of it.
type ProposalService struct {
	Store  store.Store
	Access *AccessService
	Mailer Mailer
}

type CreateProposalInput struct {
	Title       string
	ClientName  string
	ClientEmail string
	Body        string
	AmountCents int64
	CreatedBy   idx.ID
}

// CreatedProposal bundles a freshly created proposal with its share code.
// Code is nil when issuing failed; the proposal itself is still created.
type CreatedProposal struct {
	Proposal domain.Proposal
	Code     *domain.AccessCode
}

// Create persists a new proposal and mints a share code for it.
//
// Code issuance is deliberately non-fatal: the proposal is the primary
// resource, and a storage hiccup on the code table should not roll it back.
// The failure is logged for operators and the response carries a nil code;
// staff can re-share later.
func (s *ProposalService) Create(ctx context.Context, in CreateProposalInput) (CreatedProposal, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if in.Title == "" || in.ClientName == "" {
		return CreatedProposal{}, ErrInvalidProposal
	}

	// 2. Persist the proposal.
	proposal := domain.Proposal{
		ID:          idx.New(),
		Title:       in.Title,
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		Body:        in.Body,
		AmountCents: in.AmountCents,
		Status:      domain.ProposalDraft,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	proposal.UpdatedAt = proposal.CreatedAt
	if err := s.Store.Proposals().CreateProposal(ctx, proposal); err != nil {
		log.Error("failed to create proposal", slog.Any("error", err))
		return CreatedProposal{}, err
	}

	// 3. Mint the share code. Failure is non-fatal.
	result := CreatedProposal{Proposal: proposal}
	code, err := s.Access.Issue(ctx,
		domain.ResourceRef{Kind: domain.KindProposal, ID: proposal.ID},
		proposal.ClientName,
	)
	if err != nil {
		log.Warn("proposal created but access code issuing failed",
			slog.String("proposal_id", proposal.ID.String()),
			slog.Any("error", err),
		)
		return result, nil
	}
	result.Code = &code

	// 4. Email the code to the client when we can. Also non-fatal.
	s.mailCode(ctx, proposal.ClientEmail, proposal.ClientName, domain.KindProposal, code)

	log.Info("proposal created",
		slog.String("proposal_id", proposal.ID.String()),
		slog.String("client", proposal.ClientName),
	)
	return result, nil
}

func (s *ProposalService) mailCode(ctx context.Context, email, clientName string, kind domain.ResourceKind, code domain.AccessCode) {
	if s.Mailer == nil || email == "" {
		return
	}
	if err := s.Mailer.SendAccessCode(email, clientName, kind, code.Code, code.ExpiresAt); err != nil {
		slogx.FromContext(ctx).Warn("failed to email access code",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
}

// Get returns a proposal by id.
func (s *ProposalService) Get(ctx context.Context, id idx.ID) (domain.Proposal, error) {
	p, err := s.Store.Proposals().GetProposalByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Proposal{}, ErrProposalNotFound
		}
		return domain.Proposal{}, err
	}
	return p, nil
}

// List returns all proposals, newest first.
func (s *ProposalService) List(ctx context.Context) ([]domain.Proposal, error) {
	return s.Store.Proposals().ListProposals(ctx)
}

// UpdateStatus transitions a proposal's status.
func (s *ProposalService) UpdateStatus(ctx context.Context, id idx.ID, status string) error {
	switch status {
	case domain.ProposalDraft, domain.ProposalSent, domain.ProposalAccepted, domain.ProposalDeclined:
	default:
		return ErrInvalidProposal
	}
	err := s.Store.Proposals().UpdateProposalStatus(ctx, id, status)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProposalNotFound
	}
	return err
}

// Delete removes a proposal together with every access code bound to it, so
// no orphaned code survives to fail confusingly at next use.
func (s *ProposalService) Delete(ctx context.Context, id idx.ID) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ref := domain.ResourceRef{Kind: domain.KindProposal, ID: id}
		if err := tx.AccessCodes().DeleteAccessCodesForResource(ctx, ref); err != nil {
			return err
		}
		return tx.Proposals().DeleteProposal(ctx, id)
	})
	if err != nil {
		log.Error("failed to delete proposal",
			slog.String("proposal_id", id.String()),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("proposal deleted", slog.String("proposal_id", id.String()))
	return nil
}
