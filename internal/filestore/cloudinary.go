package filestore

import (
	"bytes"
	"context"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"compilex/model"
)

const uploadFolder = "compilex_uploads"

// CloudinaryStore stores files in Cloudinary. Images go up as images,
// everything else as raw so office documents and PDFs survive untouched.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(url string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld}, nil
}

func resourceType(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return "image"
	}
	return "raw"
}

func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, originalName, mimeType string) (model.FileRef, error) {
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       uploadFolder,
		ResourceType: resourceType(mimeType),
	})
	if err != nil {
		return model.FileRef{}, err
	}
	return model.FileRef{
		OriginalName: originalName,
		MimeType:     mimeType,
		URL:          res.SecureURL,
		PublicID:     res.PublicID,
		Format:       res.Format,
		Bytes:        int64(res.Bytes),
	}, nil
}

func (s *CloudinaryStore) Destroy(ctx context.Context, ref model.FileRef) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     ref.PublicID,
		ResourceType: resourceType(ref.MimeType),
	})
	return err
}
