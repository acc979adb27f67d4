package domain

import (
	"time"

	"github.com/halcyonstudio/portal/pkg/idx"
)

// Proposal statuses.
const (
	ProposalDraft    = "draft"
	ProposalSent     = "sent"
	ProposalAccepted = "accepted"
	ProposalDeclined = "declined"
)

type Proposal struct {
	ID          idx.ID
	Title       string
	ClientName  string
	ClientEmail string // optional; used for emailing the share code
	Body        string // markdown
	AmountCents int64
	Status      string
	CreatedBy   idx.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
