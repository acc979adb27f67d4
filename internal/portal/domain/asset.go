package domain

import (
	"time"

	"github.com/halcyonstudio/portal/pkg/idx"
)

// Asset is the metadata record for a client-uploaded file. The bytes live in
// external blob storage; StoragePath is the key there.
type Asset struct {
	ID          idx.ID
	ClientName  string
	FileName    string
	StoragePath string
	ContentType string
	SizeBytes   int64
	UploadedBy  idx.ID
	CreatedAt   time.Time
}
