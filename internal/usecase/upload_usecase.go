package usecase

import (
	"bytes"
	"context"
	"io"

	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/storage"
	"marketplace-backend/pkg/utils"
)

// Upload folders. Identity documents are private and only reachable via signed URLs.
const (
	FolderProducts = "products"
	FolderEvidence = "evidence"
	FolderIdentity = "identity"
)

var uploadFolders = map[string]bool{FolderProducts: true, FolderEvidence: true, FolderIdentity: true}

type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type UploadUsecase struct {
	store storage.Storage
}

func NewUploadUsecase(store storage.Storage) *UploadUsecase {
	return &UploadUsecase{store: store}
}

// Upload stores one file. Images are re-encoded to WebP; PDFs pass through.
func (u *UploadUsecase) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (*UploadResult, error) {
	if !uploadFolders[folder] {
		return nil, apperr.FieldErr("folder", "Thư mục tải lên không hợp lệ")
	}

	var (
		body []byte
		err  error
	)
	switch {
	case utils.IsImage(contentType):
		opts := utils.DocumentImage
		if folder == FolderProducts {
			opts = utils.ProductImage
		}
		body, contentType, err = utils.ProcessImage(r, filename, opts)
		if err != nil {
			return nil, apperr.FieldErr("file", "Không đọc được ảnh")
		}
	case contentType == "application/pdf":
		body, err = io.ReadAll(r)
		if err != nil {
			return nil, apperr.Wrap(err)
		}
	default:
		return nil, apperr.FieldErr("file", "Chỉ hỗ trợ ảnh hoặc PDF")
	}

	key := storage.NewKey(folder, contentType)
	url, err := u.store.Put(ctx, key, bytes.NewReader(body), contentType)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("key", key).Msg("Upload failed")
		return nil, apperr.Wrap(err)
	}
	res := &UploadResult{Key: key, ContentType: contentType, Size: len(body)}
	if folder != FolderIdentity {
		res.URL = url
	}
	return res, nil
}

// Remove deletes a previously uploaded public file.
func (u *UploadUsecase) Remove(ctx context.Context, fileURL string) error {
	if err := u.store.Delete(ctx, fileURL); err != nil {
		return apperr.InvalidErr("Không xóa được tệp", nil)
	}
	return nil
}
