package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/pkg/httpx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

type AccessValidateHandler struct {
	AccessService *service.AccessService
}

// ServeHTTP godoc
//
//	@Summary		Validate Access Code Endpoint
//	@Description	Validate a shared access code and resolve the proposal or invoice it grants access to
//	@Description	Codes are reusable until they expire; expired codes are removed on first use after expiry
//	@Tags			Access
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ValidateCodeRequest		true	"Access code to validate"
//	@Success		200		{object}	ValidateCodeResponse	"success, type, id"
//	@Failure		400		{object}	ErrorResponse			"error, error_description"
//	@Failure		401		{object}	ErrorResponse			"error, error_description"
//	@Failure		410		{object}	ErrorResponse			"error, error_description"
//	@Failure		500		{object}	ErrorResponse			"error, error_description"
//	@Router			/v1/access/validate [post].
func (h *AccessValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// Parse the JSON body
	var req ValidateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	// Validate the code against the store
	ref, err := h.AccessService.Validate(ctx, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeRequired):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "code is required",
			})
		case errors.Is(err, service.ErrCodeNotFound):
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:            "invalid_code",
				ErrorDescription: "Access code is not recognised",
			})
		case errors.Is(err, service.ErrCodeExpired):
			httpx.WriteJSON(w, http.StatusGone, ErrorResponse{
				Error:            "code_expired",
				ErrorDescription: "Access code has expired",
			})
		default:
			log.Error("failed to validate access code", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to validate access code",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ValidateCodeResponse{
		Success: true,
		Type:    string(ref.Kind),
		ID:      ref.ID.String(),
	})
}
