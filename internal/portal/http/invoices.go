package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/pkg/httpx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

type InvoicesHandler struct {
	InvoiceService *service.InvoiceService
}

// HandleCreate godoc
//
//	@Summary		Create Invoice Endpoint
//	@Description	Create an invoice with its line items and mint a share code for it
//	@Description	The otp field is null when code issuing failed; the invoice itself is still created
//	@Tags			Invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateInvoiceRequest	true	"Invoice fields and line items"
//	@Success		201		{object}	InvoiceResponse			"invoice with otp"
//	@Failure		400		{object}	ErrorResponse			"error, error_description"
//	@Failure		409		{object}	ErrorResponse			"error, error_description"
//	@Failure		500		{object}	ErrorResponse			"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invoices [post].
func (h *InvoicesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	in := service.CreateInvoiceInput{
		Number:      req.Number,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Currency:    req.Currency,
		DueDate:     req.DueDate,
		CreatedBy:   userIDFromCtx(ctx),
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.LineItemInput{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	created, err := h.InvoiceService.Create(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvoice):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "number, client_name and at least one item are required",
			})
		case errors.Is(err, service.ErrDuplicateNumber):
			httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
				Error:            "duplicate_number",
				ErrorDescription: "Invoice number is already in use",
			})
		default:
			log.Error("failed to create invoice", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to create invoice",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newInvoiceResponse(created.Invoice, created.Code))
}

// HandleList godoc
//
//	@Summary		List Invoices Endpoint
//	@Description	List all invoices without line items, newest first
//	@Tags			Invoices
//	@Produce		json
//	@Success		200	{array}		InvoiceResponse	"invoices"
//	@Failure		500	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invoices [get].
func (h *InvoicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	invoices, err := h.InvoiceService.List(ctx)
	if err != nil {
		log.Error("failed to list invoices", "err", err)
		writeServerError(w)
		return
	}

	resp := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, newInvoiceResponse(inv, nil))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get Invoice Endpoint
//	@Description	Fetch a single invoice with its line items
//	@Tags			Invoices
//	@Produce		json
//	@Param			id	path		string			true	"Invoice ID"
//	@Success		200	{object}	InvoiceResponse	"invoice"
//	@Failure		400	{object}	ErrorResponse	"error, error_description"
//	@Failure		404	{object}	ErrorResponse	"error, error_description"
//	@Failure		500	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invoices/{id} [get].
func (h *InvoicesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	invoice, err := h.InvoiceService.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			writeNotFound(w, "Invoice not found")
		default:
			log.Error("failed to get invoice", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newInvoiceResponse(invoice, nil))
}

// HandleUpdateStatus godoc
//
//	@Summary		Update Invoice Status Endpoint
//	@Description	Transition an invoice between draft, sent, paid and void
//	@Tags			Invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string				true	"Invoice ID"
//	@Param			request	body	UpdateStatusRequest	true	"New status"
//	@Success		204		"status updated"
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		404		{object}	ErrorResponse	"error, error_description"
//	@Failure		500		{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invoices/{id}/status [patch].
func (h *InvoicesHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	if err := h.InvoiceService.UpdateStatus(ctx, id, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvoice):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "Unknown invoice status",
			})
		case errors.Is(err, service.ErrInvoiceNotFound):
			writeNotFound(w, "Invoice not found")
		default:
			log.Error("failed to update invoice status", "err", err)
			writeServerError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete Invoice Endpoint
//	@Description	Delete an invoice, its line items and every access code bound to it
//	@Tags			Invoices
//	@Produce		json
//	@Param			id	path	string	true	"Invoice ID"
//	@Success		204	"invoice deleted"
//	@Failure		400	{object}	ErrorResponse	"error, error_description"
//	@Failure		500	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invoices/{id} [delete].
func (h *InvoicesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.InvoiceService.Delete(ctx, id); err != nil {
		log.Error("failed to delete invoice", "err", err)
		writeServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandlePDF godoc
//
//	@Summary		Invoice PDF Endpoint
//	@Description	Render an invoice as a printable PDF
//	@Tags			Invoices
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Invoice ID"
//	@Success		200	{file}		binary	"invoice PDF"
//	@Failure		400	{object}	ErrorResponse	"error, error_description"
//	@Failure		404	{object}	ErrorResponse	"error, error_description"
//	@Failure		500	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invoices/{id}/pdf [get].
func (h *InvoicesHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	pdf, err := h.InvoiceService.RenderPDF(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			writeNotFound(w, "Invoice not found")
		default:
			log.Error("failed to render invoice pdf", "err", err)
			writeServerError(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+id.String()+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
