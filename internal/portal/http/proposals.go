package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/pkg/httpx"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

type ProposalsHandler struct {
	ProposalService *service.ProposalService
}

// HandleCreate godoc
//
//	@Summary		Create Proposal Endpoint
//	@Description	Create a proposal and mint a share code for it
//	@Description	The otp field is null when code issuing failed; the proposal itself is still created
//	@Tags			Proposals
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProposalRequest	true	"Proposal fields"
//	@Success		201		{object}	ProposalResponse		"proposal with otp"
//	@Failure		400		{object}	ErrorResponse			"error, error_description"
//	@Failure		500		{object}	ErrorResponse			"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/proposals [post].
func (h *ProposalsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	created, err := h.ProposalService.Create(ctx, service.CreateProposalInput{
		Title:       req.Title,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Body:        req.Body,
		AmountCents: req.AmountCents,
		CreatedBy:   userIDFromCtx(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProposal):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "title and client_name are required",
			})
		default:
			log.Error("failed to create proposal", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to create proposal",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newProposalResponse(created.Proposal, created.Code))
}

// HandleList godoc
//
//	@Summary		List Proposals Endpoint
//	@Description	List all proposals, newest first
//	@Tags			Proposals
//	@Produce		json
//	@Success		200	{array}		ProposalResponse	"proposals"
//	@Failure		500	{object}	ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/proposals [get].
func (h *ProposalsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	proposals, err := h.ProposalService.List(ctx)
	if err != nil {
		log.Error("failed to list proposals", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list proposals",
		})
		return
	}

	resp := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		resp = append(resp, newProposalResponse(p, nil))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get Proposal Endpoint
//	@Description	Fetch a single proposal by its ID
//	@Tags			Proposals
//	@Produce		json
//	@Param			id	path		string				true	"Proposal ID"
//	@Success		200	{object}	ProposalResponse	"proposal"
//	@Failure		400	{object}	ErrorResponse		"error, error_description"
//	@Failure		404	{object}	ErrorResponse		"error, error_description"
//	@Failure		500	{object}	ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/proposals/{id} [get].
func (h *ProposalsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	proposal, err := h.ProposalService.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProposalNotFound):
			writeNotFound(w, "Proposal not found")
		default:
			log.Error("failed to get proposal", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newProposalResponse(proposal, nil))
}

// HandleUpdateStatus godoc
//
//	@Summary		Update Proposal Status Endpoint
//	@Description	Transition a proposal between draft, sent, accepted and declined
//	@Tags			Proposals
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string				true	"Proposal ID"
//	@Param			request	body	UpdateStatusRequest	true	"New status"
//	@Success		204		"status updated"
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		404		{object}	ErrorResponse	"error, error_description"
//	@Failure		500		{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/proposals/{id}/status [patch].
func (h *ProposalsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	if err := h.ProposalService.UpdateStatus(ctx, id, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProposal):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "Unknown proposal status",
			})
		case errors.Is(err, service.ErrProposalNotFound):
			writeNotFound(w, "Proposal not found")
		default:
			log.Error("failed to update proposal status", "err", err)
			writeServerError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete Proposal Endpoint
//	@Description	Delete a proposal together with every access code bound to it
//	@Tags			Proposals
//	@Produce		json
//	@Param			id	path	string	true	"Proposal ID"
//	@Success		204	"proposal deleted"
//	@Failure		400	{object}	ErrorResponse	"error, error_description"
//	@Failure		500	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/proposals/{id} [delete].
func (h *ProposalsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.ProposalService.Delete(ctx, id); err != nil {
		log.Error("failed to delete proposal", "err", err)
		writeServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (idx.ID, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid resource id",
		})
		return idx.Zero, false
	}
	return id, true
}

func writeNotFound(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{
		Error:            "not_found",
		ErrorDescription: desc,
	})
}
