package v1

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"marketplace-backend/internal/usecase"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/utils"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".pdf":  true,
}

type UploadHandler struct {
	uc            *usecase.UploadUsecase
	maxUploadSize int64
}

func NewUploadHandler(uc *usecase.UploadUsecase, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		uc:            uc,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// POST /api/v1/upload?folder=products|evidence|identity (multipart "file")
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, apperr.FieldErr("file", "Tệp quá lớn"))
			return
		}
		log.Warn().Err(err).Msg("Upload: invalid multipart form")
		utils.WriteError(w, apperr.FieldErr("file", "Tệp không hợp lệ"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, apperr.FieldErr("file", "Vui lòng chọn tệp"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteError(w, apperr.FieldErr("file", "Chỉ hỗ trợ ảnh hoặc PDF"))
		return
	}

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = usecase.FolderProducts
	}
	contentType := header.Header.Get("Content-Type")
	log.Debug().Str("file", header.Filename).Str("content_type", contentType).Int64("size", header.Size).Msg("Upload received")

	res, err := h.uc.Upload(r.Context(), folder, header.Filename, contentType, file)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Tải lên thành công", res, nil)
}
