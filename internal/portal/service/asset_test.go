package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingBlobStore remembers removed paths and can be told to fail.
type recordingBlobStore struct {
	removed []string
	fail    bool
}

func (b *recordingBlobStore) Remove(_ context.Context, path string) error {
	if b.fail {
		return errors.New("bucket unreachable")
	}
	b.removed = append(b.removed, path)
	return nil
}

func TestAssets(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, ctx, st)

	blobs := &recordingBlobStore{}
	svc := &AssetService{Store: st, Blobs: blobs}

	t.Run("create and list by client", func(t *testing.T) {
		first, err := svc.Create(ctx, CreateAssetInput{
			ClientName:  "Acme Co",
			FileName:    "logo.svg",
			StoragePath: "clients/acme/logo.svg",
			ContentType: "image/svg+xml",
			SizeBytes:   2048,
			UploadedBy:  user.ID,
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, CreateAssetInput{
			ClientName:  "Acme Co",
			FileName:    "brief.pdf",
			StoragePath: "clients/acme/brief.pdf",
			UploadedBy:  user.ID,
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, CreateAssetInput{
			ClientName:  "Other LLC",
			FileName:    "contract.pdf",
			StoragePath: "clients/other/contract.pdf",
			UploadedBy:  user.ID,
		})
		require.NoError(t, err)

		assets, err := svc.ListByClient(ctx, "Acme Co")
		require.NoError(t, err)
		require.Len(t, assets, 2)

		require.Equal(t, "logo.svg", first.FileName)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateAssetInput{ClientName: "Acme Co", UploadedBy: user.ID})
		require.ErrorIs(t, err, ErrInvalidAsset)
	})

	t.Run("delete removes record and blob", func(t *testing.T) {
		asset, err := svc.Create(ctx, CreateAssetInput{
			ClientName:  "Acme Co",
			FileName:    "moodboard.png",
			StoragePath: "clients/acme/moodboard.png",
			UploadedBy:  user.ID,
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, asset.ID))
		require.Contains(t, blobs.removed, "clients/acme/moodboard.png")

		require.ErrorIs(t, svc.Delete(ctx, asset.ID), ErrAssetNotFound)
	})

	t.Run("blob removal failure does not fail the delete", func(t *testing.T) {
		asset, err := svc.Create(ctx, CreateAssetInput{
			ClientName:  "Acme Co",
			FileName:    "palette.ase",
			StoragePath: "clients/acme/palette.ase",
			UploadedBy:  user.ID,
		})
		require.NoError(t, err)

		blobs.fail = true
		defer func() { blobs.fail = false }()

		require.NoError(t, svc.Delete(ctx, asset.ID))

		_, err = svc.ListByClient(ctx, "missing")
		require.NoError(t, err)
	})
}
