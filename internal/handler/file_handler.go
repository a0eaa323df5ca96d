package handler

import (
	"context"
	"net/http"
	"time"

	"resumevault/internal/auth"
)

// fileService описывает выдачу presigned-ссылок на ключи пользователя
type fileService interface {
	PresignedURL(ctx context.Context, userID, key string, expirySeconds int) (string, time.Duration, error)
	UploadURL(ctx context.Context, userID, filename, contentType string) (string, string, error)
}

type FileHandler struct {
	fileService fileService
}

func NewFileHandler(fileService fileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

type presignedURLRequest struct {
	Key           string `json:"key" validate:"required"`
	ExpirySeconds int    `json:"expiry_seconds,omitempty" validate:"omitempty,min=1"`
}

type presignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignedURL выдает ссылку на произвольный ключ пользователя, например
// для предпросмотра. Срок жизни ограничен сверху на сервисном уровне
func (h *FileHandler) PresignedURL(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req presignedURLRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, expiry, err := h.fileService.PresignedURL(r.Context(), userID, req.Key, req.ExpirySeconds)
	if err != nil {
		writeServiceError(w, "PresignedURL", err)
		return
	}

	writeJSON(w, http.StatusOK, presignedURLResponse{
		URL:       url,
		ExpiresIn: int(expiry.Seconds()),
	})
}

type uploadURLRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

type uploadURLResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadURL выдает presigned PUT для прямой загрузки клиентом. После
// загрузки клиент обязан вызвать /resumes/upload/complete
func (h *FileHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req uploadURLRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, key, err := h.fileService.UploadURL(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		writeServiceError(w, "UploadURL", err)
		return
	}

	writeJSON(w, http.StatusOK, uploadURLResponse{URL: url, Key: key})
}
