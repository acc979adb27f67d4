package store

import (
	"context"
	"errors"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Proposals() Proposals
	Invoices() Invoices
	Assets() Assets
	AccessCodes() AccessCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step writes (invoice + line items,
	// resource delete + code revocation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id idx.ID) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users (drives first-admin bootstrap).
	IsEmpty(ctx context.Context) (bool, error)
}

type Proposals interface {
	// CreateProposal inserts a new proposal.
	CreateProposal(ctx context.Context, p domain.Proposal) error

	// GetProposalByID returns a proposal by id.
	GetProposalByID(ctx context.Context, id idx.ID) (domain.Proposal, error)

	// ListProposals returns all proposals, newest first.
	ListProposals(ctx context.Context) ([]domain.Proposal, error)

	// UpdateProposalStatus sets the status and bumps updated_at.
	UpdateProposalStatus(ctx context.Context, id idx.ID, status string) error

	// DeleteProposal removes a proposal. The caller is responsible for
	// revoking any access codes bound to it in the same transaction.
	DeleteProposal(ctx context.Context, id idx.ID) error
}

type Invoices interface {
	// CreateInvoice inserts an invoice header row. Line items are inserted
	// separately via CreateLineItem so the whole write can share one tx.
	CreateInvoice(ctx context.Context, inv domain.Invoice) error

	// CreateLineItem inserts a single line item for an invoice.
	CreateLineItem(ctx context.Context, item domain.LineItem) error

	// GetInvoiceByID returns an invoice with its line items, ordered by position.
	GetInvoiceByID(ctx context.Context, id idx.ID) (domain.Invoice, error)

	// ListInvoices returns all invoices (without line items), newest first.
	ListInvoices(ctx context.Context) ([]domain.Invoice, error)

	// UpdateInvoiceStatus sets the status and bumps updated_at.
	UpdateInvoiceStatus(ctx context.Context, id idx.ID, status string) error

	// DeleteInvoice removes an invoice; line items cascade per schema.
	DeleteInvoice(ctx context.Context, id idx.ID) error
}

type Assets interface {
	// CreateAsset inserts an uploaded-file metadata record.
	CreateAsset(ctx context.Context, a domain.Asset) error

	// GetAssetByID returns a single metadata record.
	GetAssetByID(ctx context.Context, id idx.ID) (domain.Asset, error)

	// ListAssetsByClient returns all asset records for a client, newest first.
	ListAssetsByClient(ctx context.Context, clientName string) ([]domain.Asset, error)

	// DeleteAsset removes a metadata record. Blob removal is the caller's job.
	DeleteAsset(ctx context.Context, id idx.ID) error
}

type AccessCodes interface {
	// CreateAccessCode writes a new code record. Returns ErrAlreadyExists if
	// the generated code collides with a live one (codes are UNIQUE).
	CreateAccessCode(ctx context.Context, c domain.AccessCode) error

	// GetAccessCodeByCode returns the record whose code equals the input
	// exactly (case-sensitive). Expiry is NOT filtered here: the service
	// needs expired records so it can delete them lazily.
	GetAccessCodeByCode(ctx context.Context, code string) (domain.AccessCode, error)

	// DeleteAccessCode removes a record by id. Deleting a non-existent id is
	// not an error: lazy expiry may race with itself or with a revoke.
	DeleteAccessCode(ctx context.Context, id idx.ID) error

	// DeleteAccessCodesForResource removes every code bound to a resource,
	// used when the resource itself is deleted.
	DeleteAccessCodesForResource(ctx context.Context, ref domain.ResourceRef) error
}
