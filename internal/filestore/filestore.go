package filestore

import (
	"context"

	"compilex/model"
)

// FileStore is the external binary-storage collaborator. Uploads hold
// only the returned reference; bytes never land in the database.
type FileStore interface {
	Upload(ctx context.Context, data []byte, originalName, mimeType string) (model.FileRef, error)
	Destroy(ctx context.Context, ref model.FileRef) error
}
