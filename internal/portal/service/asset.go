package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

var (
	ErrInvalidAsset  = errors.New("invalid asset")
	ErrAssetNotFound = errors.New("asset not found")
)

// BlobStore is the thin view of external blob storage this service needs.
// The portal keeps only metadata; bytes are uploaded directly to storage by
// the client flow and removed through this interface when a record goes.
type BlobStore interface {
	Remove(ctx context.Context, path string) error
}

// AssetService tracks uploaded-file metadata for client onboarding.
type AssetService struct {
	Store store.Store
	Blobs BlobStore // optional; nil means no storage cleanup
}

type CreateAssetInput struct {
	ClientName  string
	FileName    string
	StoragePath string
	ContentType string
	SizeBytes   int64
	UploadedBy  idx.ID
}

func (s *AssetService) Create(ctx context.Context, in CreateAssetInput) (domain.Asset, error) {
	if in.ClientName == "" || in.FileName == "" || in.StoragePath == "" {
		return domain.Asset{}, ErrInvalidAsset
	}

	asset := domain.Asset{
		ID:          idx.New(),
		ClientName:  in.ClientName,
		FileName:    in.FileName,
		StoragePath: in.StoragePath,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		UploadedBy:  in.UploadedBy,
	}
	if err := s.Store.Assets().CreateAsset(ctx, asset); err != nil {
		return domain.Asset{}, err
	}
	return asset, nil
}

func (s *AssetService) ListByClient(ctx context.Context, clientName string) ([]domain.Asset, error) {
	return s.Store.Assets().ListAssetsByClient(ctx, clientName)
}

// Delete removes the metadata record and best-effort removes the blob.
// A storage failure after the record is gone is logged, not returned: the
// record is the source of truth and a stray blob is only wasted space.
func (s *AssetService) Delete(ctx context.Context, id idx.ID) error {
	log := slogx.FromContext(ctx)

	asset, err := s.Store.Assets().GetAssetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAssetNotFound
		}
		return err
	}

	if err := s.Store.Assets().DeleteAsset(ctx, id); err != nil {
		return err
	}

	if s.Blobs != nil && asset.StoragePath != "" {
		if err := s.Blobs.Remove(ctx, asset.StoragePath); err != nil {
			log.Warn("failed to remove blob for deleted asset",
				slog.String("asset_id", id.String()),
				slog.String("path", asset.StoragePath),
				slog.Any("error", err),
			)
		}
	}
	return nil
}
