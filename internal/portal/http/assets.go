package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/pkg/httpx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

type AssetsHandler struct {
	AssetService *service.AssetService
}

// HandleCreate godoc
//
//	@Summary		Register Asset Endpoint
//	@Description	Record metadata for a file already uploaded to blob storage
//	@Tags			Assets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAssetRequest	true	"Asset metadata"
//	@Success		201		{object}	AssetResponse		"asset"
//	@Failure		400		{object}	ErrorResponse		"error, error_description"
//	@Failure		500		{object}	ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/assets [post].
func (h *AssetsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	asset, err := h.AssetService.Create(ctx, service.CreateAssetInput{
		ClientName:  req.ClientName,
		FileName:    req.FileName,
		StoragePath: req.StoragePath,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		UploadedBy:  userIDFromCtx(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAsset):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "client_name, file_name and storage_path are required",
			})
		default:
			log.Error("failed to register asset", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newAssetResponse(asset))
}

// HandleList godoc
//
//	@Summary		List Assets Endpoint
//	@Description	List asset records for a client, newest first
//	@Tags			Assets
//	@Produce		json
//	@Param			client	query		string			true	"Client name"
//	@Success		200		{array}		AssetResponse	"assets"
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		500		{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/assets [get].
func (h *AssetsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientName := r.URL.Query().Get("client")
	if clientName == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "client query parameter is required",
		})
		return
	}

	assets, err := h.AssetService.ListByClient(ctx, clientName)
	if err != nil {
		log.Error("failed to list assets", "err", err)
		writeServerError(w)
		return
	}

	resp := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		resp = append(resp, newAssetResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleDelete godoc
//
//	@Summary		Delete Asset Endpoint
//	@Description	Delete an asset record and best-effort remove its blob
//	@Tags			Assets
//	@Produce		json
//	@Param			id	path	string	true	"Asset ID"
//	@Success		204	"asset deleted"
//	@Failure		400	{object}	ErrorResponse	"error, error_description"
//	@Failure		404	{object}	ErrorResponse	"error, error_description"
//	@Failure		500	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/assets/{id} [delete].
func (h *AssetsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.AssetService.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, service.ErrAssetNotFound):
			writeNotFound(w, "Asset not found")
		default:
			log.Error("failed to delete asset", "err", err)
			writeServerError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
