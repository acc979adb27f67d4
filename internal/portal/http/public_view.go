package http

import (
	"errors"
	"net/http"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/pkg/httpx"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

// PublicViewHandler serves the read-only proposal and invoice views behind a
// valid access code. The code travels as a query parameter so the share link
// stays a plain URL.
type PublicViewHandler struct {
	AccessService   *service.AccessService
	ProposalService *service.ProposalService
	InvoiceService  *service.InvoiceService
}

// HandleProposal godoc
//
//	@Summary		Public Proposal View Endpoint
//	@Description	Fetch a proposal using a valid access code bound to it
//	@Tags			Public
//	@Produce		json
//	@Param			id		path		string				true	"Proposal ID"
//	@Param			code	query		string				true	"Access code"
//	@Success		200		{object}	ProposalResponse	"proposal"
//	@Failure		400		{object}	ErrorResponse		"error, error_description"
//	@Failure		401		{object}	ErrorResponse		"error, error_description"
//	@Failure		410		{object}	ErrorResponse		"error, error_description"
//	@Failure		500		{object}	ErrorResponse		"error, error_description"
//	@Router			/v1/public/proposals/{id} [get].
func (h *PublicViewHandler) HandleProposal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ref, ok := h.authorize(w, r, domain.KindProposal)
	if !ok {
		return
	}

	proposal, err := h.ProposalService.Get(ctx, ref.ID)
	if err != nil {
		// The code pointed at a proposal that no longer exists. Treat it the
		// same as an unknown code rather than leaking the distinction.
		if errors.Is(err, service.ErrProposalNotFound) {
			writeUnknownCode(w)
			return
		}
		log.Error("failed to load proposal for public view", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newProposalResponse(proposal, nil))
}

// HandleInvoice godoc
//
//	@Summary		Public Invoice View Endpoint
//	@Description	Fetch an invoice using a valid access code bound to it
//	@Tags			Public
//	@Produce		json
//	@Param			id		path		string			true	"Invoice ID"
//	@Param			code	query		string			true	"Access code"
//	@Success		200		{object}	InvoiceResponse	"invoice"
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		401		{object}	ErrorResponse	"error, error_description"
//	@Failure		410		{object}	ErrorResponse	"error, error_description"
//	@Failure		500		{object}	ErrorResponse	"error, error_description"
//	@Router			/v1/public/invoices/{id} [get].
func (h *PublicViewHandler) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ref, ok := h.authorize(w, r, domain.KindInvoice)
	if !ok {
		return
	}

	invoice, err := h.InvoiceService.Get(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			writeUnknownCode(w)
			return
		}
		log.Error("failed to load invoice for public view", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newInvoiceResponse(invoice, nil))
}

// authorize validates the code from the query string and checks it is bound
// to the resource named in the path. On failure it writes the response and
// returns ok=false.
func (h *PublicViewHandler) authorize(w http.ResponseWriter, r *http.Request, kind domain.ResourceKind) (domain.ResourceRef, bool) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid resource id",
		})
		return domain.ResourceRef{}, false
	}

	ref, err := h.AccessService.Validate(ctx, r.URL.Query().Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeRequired):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "code is required",
			})
		case errors.Is(err, service.ErrCodeNotFound):
			writeUnknownCode(w)
		case errors.Is(err, service.ErrCodeExpired):
			httpx.WriteJSON(w, http.StatusGone, ErrorResponse{
				Error:            "code_expired",
				ErrorDescription: "Access code has expired",
			})
		default:
			log.Error("failed to validate access code", "err", err)
			writeServerError(w)
		}
		return domain.ResourceRef{}, false
	}

	// A valid code only opens the resource it was minted for.
	if ref.Kind != kind || ref.ID != id {
		writeUnknownCode(w)
		return domain.ResourceRef{}, false
	}

	return ref, true
}

func writeUnknownCode(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:            "invalid_code",
		ErrorDescription: "Access code is not recognised",
	})
}

func writeServerError(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:            "server_error",
		ErrorDescription: "Internal server error",
	})
}
