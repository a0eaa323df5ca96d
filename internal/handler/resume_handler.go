package handler

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"resumevault/internal/auth"
	"resumevault/internal/domain"
)

// maxUploadForm задает лимит multipart-формы, чуть больше лимита файла
const maxUploadForm = 12 << 20

// resumeService описывает, что хендлеру нужно от сервисного слоя
type resumeService interface {
	Create(ctx context.Context, userID string, email *string, title string, content *string) (*domain.Resume, error)
	Upload(ctx context.Context, userID string, email *string, header *multipart.FileHeader, file multipart.File, title string) (*domain.Resume, error)
	RegisterUpload(ctx context.Context, userID string, email *string, key, title string) (*domain.Resume, error)
	ReplaceFile(ctx context.Context, userID string, id uuid.UUID, newKey string, changeReason *string) (*domain.Resume, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*domain.Resume, error)
	List(ctx context.Context, userID string) ([]domain.Resume, error)
	GetHistory(ctx context.Context, userID string, id uuid.UUID) ([]domain.ResumeHistory, error)
	SoftDelete(ctx context.Context, userID string, id uuid.UUID) error
	Download(ctx context.Context, userID string, id uuid.UUID) (string, time.Duration, error)
}

type ResumeHandler struct {
	resumeService resumeService
}

func NewResumeHandler(resumeService resumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService}
}

type createResumeRequest struct {
	Title   string  `json:"title" validate:"required,min=1,max=255"`
	Content *string `json:"content,omitempty"`
}

// CreateResume создает резюме без файла
func (h *ResumeHandler) CreateResume(w http.ResponseWriter, r *http.Request) {
	user, err := auth.VerifySession(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createResumeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resume, err := h.resumeService.Create(r.Context(), user.ID, emailOf(user), req.Title, req.Content)
	if err != nil {
		writeServiceError(w, "CreateResume", err)
		return
	}

	writeJSON(w, http.StatusCreated, resume)
}

// ListResumes возвращает активные резюме пользователя
func (h *ResumeHandler) ListResumes(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resumes, err := h.resumeService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "ListResumes", err)
		return
	}

	writeJSON(w, http.StatusOK, resumes)
}

func (h *ResumeHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resume id")
		return
	}

	resume, err := h.resumeService.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "GetResume", err)
		return
	}

	writeJSON(w, http.StatusOK, resume)
}

func (h *ResumeHandler) DeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resume id")
		return
	}

	if err := h.resumeService.SoftDelete(r.Context(), userID, id); err != nil {
		writeServiceError(w, "DeleteResume", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadResume обрабатывает загрузку файла резюме через сервер
func (h *ResumeHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	user, err := auth.VerifySession(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadForm); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	fileHeader := files[0]

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[UploadResume] Error opening file: %v", err)
		writeError(w, http.StatusBadRequest, "Failed to process file")
		return
	}
	defer file.Close()

	title := r.FormValue("title")

	resume, err := h.resumeService.Upload(r.Context(), user.ID, emailOf(user), fileHeader, file, title)
	if err != nil {
		writeServiceError(w, "UploadResume", err)
		return
	}

	writeJSON(w, http.StatusCreated, resume)
}

type completeUploadRequest struct {
	Key   string `json:"key" validate:"required"`
	Title string `json:"title,omitempty"`
}

// CompleteUpload регистрирует файл, загруженный напрямую по presigned PUT
func (h *ResumeHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	user, err := auth.VerifySession(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req completeUploadRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resume, err := h.resumeService.RegisterUpload(r.Context(), user.ID, emailOf(user), req.Key, req.Title)
	if err != nil {
		writeServiceError(w, "CompleteUpload", err)
		return
	}

	writeJSON(w, http.StatusCreated, resume)
}

type replaceFileRequest struct {
	Key          string  `json:"key" validate:"required"`
	ChangeReason *string `json:"change_reason,omitempty"`
}

// ReplaceFile заменяет файл резюме с записью в историю
func (h *ResumeHandler) ReplaceFile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resume id")
		return
	}

	var req replaceFileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resume, err := h.resumeService.ReplaceFile(r.Context(), userID, id, req.Key, req.ChangeReason)
	if err != nil {
		writeServiceError(w, "ReplaceFile", err)
		return
	}

	writeJSON(w, http.StatusOK, resume)
}

// GetHistory возвращает снимки прошлых версий резюме
func (h *ResumeHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resume id")
		return
	}

	history, err := h.resumeService.GetHistory(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "GetHistory", err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

type downloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// DownloadResume выдает короткоживущую ссылку на скачивание
func (h *ResumeHandler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resume id")
		return
	}

	url, expiry, err := h.resumeService.Download(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "DownloadResume", err)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{URL: url, ExpiresIn: int(expiry.Seconds())})
}

func emailOf(user *auth.UserInfo) *string {
	if user.Email == "" {
		return nil
	}
	email := user.Email
	return &email
}
