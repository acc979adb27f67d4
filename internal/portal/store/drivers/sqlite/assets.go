package sqlite

import (
	"context"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/pkg/idx"
)

type assetsRepo struct {
	db dbtx
}

func (r *assetsRepo) CreateAsset(ctx context.Context, a domain.Asset) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, client_name, file_name, storage_path, content_type, size_bytes, uploaded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.ClientName, a.FileName, a.StoragePath,
		a.ContentType, a.SizeBytes, a.UploadedBy.String(), a.CreatedAt)
	return mapConflict(err)
}

func (r *assetsRepo) GetAssetByID(ctx context.Context, id idx.ID) (domain.Asset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_name, file_name, storage_path, content_type, size_bytes, uploaded_by, created_at
		 FROM assets WHERE id = ?`, id.String())

	var (
		a          domain.Asset
		rawID      string
		uploadedBy string
	)
	err := row.Scan(&rawID, &a.ClientName, &a.FileName, &a.StoragePath,
		&a.ContentType, &a.SizeBytes, &uploadedBy, &a.CreatedAt)
	if err != nil {
		return domain.Asset{}, mapNotFound(err)
	}
	a.ID = idx.ID(rawID)
	a.UploadedBy = idx.ID(uploadedBy)
	return a, nil
}

func (r *assetsRepo) ListAssetsByClient(ctx context.Context, clientName string) ([]domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_name, file_name, storage_path, content_type, size_bytes, uploaded_by, created_at
		 FROM assets WHERE client_name = ? ORDER BY id DESC`, clientName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Asset
	for rows.Next() {
		var (
			a          domain.Asset
			id         string
			uploadedBy string
		)
		if err := rows.Scan(&id, &a.ClientName, &a.FileName, &a.StoragePath,
			&a.ContentType, &a.SizeBytes, &uploadedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ID = idx.ID(id)
		a.UploadedBy = idx.ID(uploadedBy)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *assetsRepo) DeleteAsset(ctx context.Context, id idx.ID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id.String())
	return err
}
