package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/pkg/codes"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

var (
	ErrCodeRequired = errors.New("access code is required")
	ErrCodeNotFound = errors.New("access code not found")
	ErrCodeExpired  = errors.New("access code has expired")
	ErrCodeCorrupt  = errors.New("access code record is corrupt")
	ErrInvalidRef   = errors.New("invalid resource reference")
)

// DefaultCodeValidity is how long an issued code grants access.
const DefaultCodeValidity = 24 * time.Hour

// issueAttempts bounds the uniqueness retry loop. A collision in a 62^8
// space is astronomically unlikely; retrying keeps it impossible for one
// code to resolve ambiguously if it ever happens.
const issueAttempts = 3

// AccessService owns the lifecycle of the bearer codes that gate the public
// proposal/invoice viewers: issuing, validating and revoking them.
//
// A code has three states: active (now < expires_at), expired (discovered
// past expiry on a validation attempt, deleted as a side effect) and deleted
// (terminal; also reachable directly from active via Revoke). There is no
// consumed state; validating an active code does not invalidate it, so a
// client can revisit a shared link until the code naturally expires.
type AccessService struct {
	Store store.Store

	// Validity overrides DefaultCodeValidity when positive.
	Validity time.Duration
}

func (s *AccessService) validity() time.Duration {
	if s.Validity > 0 {
		return s.Validity
	}
	return DefaultCodeValidity
}

// Issue mints a new access code bound to exactly one resource and persists
// it. The returned record includes the raw code for out-of-band sharing.
func (s *AccessService) Issue(ctx context.Context, ref domain.ResourceRef, clientName string) (domain.AccessCode, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the reference is a well-formed tagged variant.
	if ref.ID.IsZero() || (ref.Kind != domain.KindProposal && ref.Kind != domain.KindInvoice) {
		return domain.AccessCode{}, ErrInvalidRef
	}

	now := time.Now().UTC()

	// 2. Generate and insert, retrying on the (theoretical) code collision.
	// The code column is UNIQUE, so a duplicate surfaces as ErrAlreadyExists.
	var lastErr error
	for attempt := 0; attempt < issueAttempts; attempt++ {
		code, err := codes.Generate()
		if err != nil {
			return domain.AccessCode{}, err
		}

		record := domain.AccessCode{
			ID:         idx.New(),
			Code:       code,
			Resource:   ref,
			ClientName: clientName,
			ExpiresAt:  now.Add(s.validity()),
			CreatedAt:  now,
		}

		err = s.Store.AccessCodes().CreateAccessCode(ctx, record)
		if err == nil {
			log.Debug("access code issued",
				slog.String("code_id", record.ID.String()),
				slog.String("kind", string(ref.Kind)),
				slog.String("resource_id", ref.ID.String()),
				slog.Time("expires_at", record.ExpiresAt),
			)
			return record, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			log.Error("failed to persist access code", slog.Any("error", err))
			return domain.AccessCode{}, err
		}

		log.Warn("access code collision, regenerating",
			slog.Int("attempt", attempt+1),
		)
		lastErr = err
	}
	return domain.AccessCode{}, lastErr
}

// Validate resolves a presented code to the resource it is bound to.
//
// Expiry is enforced lazily: a record discovered past its expiry is deleted
// here and reported as ErrCodeExpired; there is no background sweep. A
// successful validation is non-destructive, the code stays valid until
// expiry. Persistence failures are returned as-is so callers never confuse a
// storage outage with an invalid code.
func (s *AccessService) Validate(ctx context.Context, code string) (domain.ResourceRef, error) {
	log := slogx.FromContext(ctx)

	// 1. Reject empty input before touching storage.
	if code == "" {
		return domain.ResourceRef{}, ErrCodeRequired
	}

	// 2. Exact, case-sensitive lookup. No in-memory caching: each validation
	// re-reads the current record so expiry is always judged against the
	// stored truth.
	record, err := s.Store.AccessCodes().GetAccessCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ResourceRef{}, ErrCodeNotFound
		}
		log.Error("failed to fetch access code", slog.Any("error", err))
		return domain.ResourceRef{}, err
	}

	// 3. Lazy expiry: delete on discovery, then report expired. The delete
	// is idempotent, so concurrent validations of the same dead code cannot
	// trip over each other.
	if record.Expired(time.Now().UTC()) {
		if err := s.Store.AccessCodes().DeleteAccessCode(ctx, record.ID); err != nil {
			log.Error("failed to delete expired access code",
				slog.String("code_id", record.ID.String()),
				slog.Any("error", err),
			)
		}
		log.Info("expired access code presented",
			slog.String("code_id", record.ID.String()),
			slog.Time("expired_at", record.ExpiresAt),
		)
		return domain.ResourceRef{}, ErrCodeExpired
	}

	// 4. A record with no resource reference means a producer bug; surface
	// it loudly rather than guessing.
	if record.Resource.ID.IsZero() {
		log.Error("access code record has no resource reference",
			slog.String("code_id", record.ID.String()),
		)
		return domain.ResourceRef{}, ErrCodeCorrupt
	}

	return record.Resource, nil
}

// Revoke removes a code record by id. Revoking an already-deleted code is
// not an error.
func (s *AccessService) Revoke(ctx context.Context, id idx.ID) error {
	return s.Store.AccessCodes().DeleteAccessCode(ctx, id)
}

// RevokeForResource removes every code bound to a resource. Called when the
// resource itself is deleted so no dangling code survives to fail confusingly
// at next use.
func (s *AccessService) RevokeForResource(ctx context.Context, ref domain.ResourceRef) error {
	return s.Store.AccessCodes().DeleteAccessCodesForResource(ctx, ref)
}
