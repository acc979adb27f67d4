package http

import (
	"context"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/pkg/httpx"
	"github.com/halcyonstudio/portal/pkg/idx"
)

// userIDFromCtx returns the authenticated staff member's ID, or idx.Zero when
// the token subject is missing or malformed. Handlers behind AuthnMiddleware
// can treat a zero ID as "unknown" rather than failing the request.
func userIDFromCtx(ctx context.Context) idx.ID {
	sub, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok {
		return idx.Zero
	}
	id, err := idx.Parse(sub)
	if err != nil {
		return idx.Zero
	}
	return id
}

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type ValidateCodeRequest struct {
	Code string `json:"code"`
}

// ValidateCodeResponse routes an external viewer to the resource a valid
// code is bound to.
type ValidateCodeResponse struct {
	Success bool   `json:"success"`
	Type    string `json:"type"` // "proposal" | "invoice"
	ID      string `json:"id"`
}

// AccessCodeResponse is embedded in create responses so staff can share the
// code out-of-band. Null when issuing failed.
type AccessCodeResponse struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

func newAccessCodeResponse(code *domain.AccessCode) *AccessCodeResponse {
	if code == nil {
		return nil
	}
	return &AccessCodeResponse{
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt.Unix(),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type CreateProposalRequest struct {
	Title       string `json:"title"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email,omitempty"`
	Body        string `json:"body,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
}

type ProposalResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	ClientName  string              `json:"client_name"`
	ClientEmail string              `json:"client_email,omitempty"`
	Body        string              `json:"body,omitempty"`
	AmountCents int64               `json:"amount_cents"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	OTP         *AccessCodeResponse `json:"otp,omitempty"`
}

func newProposalResponse(p domain.Proposal, code *domain.AccessCode) ProposalResponse {
	return ProposalResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		ClientName:  p.ClientName,
		ClientEmail: p.ClientEmail,
		Body:        p.Body,
		AmountCents: p.AmountCents,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		OTP:         newAccessCodeResponse(code),
	}
}

type CreateInvoiceRequest struct {
	Number      string             `json:"number"`
	ClientName  string             `json:"client_name"`
	ClientEmail string             `json:"client_email,omitempty"`
	Currency    string             `json:"currency,omitempty"`
	DueDate     time.Time          `json:"due_date"`
	Items       []LineItemRequest  `json:"items"`
}

type LineItemRequest struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type InvoiceResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	ClientName  string              `json:"client_name"`
	ClientEmail string              `json:"client_email,omitempty"`
	Currency    string              `json:"currency"`
	Status      string              `json:"status"`
	DueDate     time.Time           `json:"due_date"`
	TotalCents  int64               `json:"total_cents"`
	Items       []LineItemResponse  `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	OTP         *AccessCodeResponse `json:"otp,omitempty"`
}

type LineItemResponse struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

func newInvoiceResponse(inv domain.Invoice, code *domain.AccessCode) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.ID.String(),
		Number:      inv.Number,
		ClientName:  inv.ClientName,
		ClientEmail: inv.ClientEmail,
		Currency:    inv.Currency,
		Status:      inv.Status,
		DueDate:     inv.DueDate,
		TotalCents:  inv.TotalCents(),
		CreatedAt:   inv.CreatedAt,
		OTP:         newAccessCodeResponse(code),
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, LineItemResponse{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return resp
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateAssetRequest struct {
	ClientName  string `json:"client_name"`
	FileName    string `json:"file_name"`
	StoragePath string `json:"storage_path"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

type AssetResponse struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	FileName    string    `json:"file_name"`
	StoragePath string    `json:"storage_path"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

func newAssetResponse(a domain.Asset) AssetResponse {
	return AssetResponse{
		ID:          a.ID.String(),
		ClientName:  a.ClientName,
		FileName:    a.FileName,
		StoragePath: a.StoragePath,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		CreatedAt:   a.CreatedAt,
	}
}

// HealthResponse is shared by the liveness and readiness probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
