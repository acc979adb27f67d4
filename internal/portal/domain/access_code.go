package domain

import (
	"time"

	"github.com/halcyonstudio/portal/pkg/idx"
)

// ResourceKind tags which shareable resource an access code is bound to.
type ResourceKind string

const (
	KindProposal ResourceKind = "proposal"
	KindInvoice  ResourceKind = "invoice"
)

// ResourceRef is a tagged reference to exactly one shareable resource.
// The persistence layer maps it to two mutually-exclusive nullable columns;
// everywhere above that boundary the reference is this single value.
type ResourceRef struct {
	Kind ResourceKind
	ID   idx.ID
}

// AccessCode is a short-lived bearer code granting read access to the bound
// resource. Possession of an unexpired code is sufficient; the code is not
// tied to any session and is reusable until it expires.
type AccessCode struct {
	ID         idx.ID
	Code       string
	Resource   ResourceRef
	ClientName string // display label copied from the resource at issue time
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c AccessCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
