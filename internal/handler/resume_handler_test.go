package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resumevault/internal/auth"
	"resumevault/internal/domain"
	"resumevault/internal/service"
)

// startAuthStub поднимает заглушку сервиса аутентификации и подключает
// к ней глобальный auth-клиент. Токен вида "token-{userId}" валиден
func startAuthStub(t *testing.T) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if !strings.HasPrefix(token, "token-") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userID := strings.TrimPrefix(token, "token-")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"user":{"id":%q,"email":"%s@example.com"}}`, userID, userID)
	}))
	t.Cleanup(srv.Close)

	auth.InitClient(auth.NewClient(srv.URL))
}

// fakeResumeService отвечает заранее заданными значениями
type fakeResumeService struct {
	resume  *domain.Resume
	history []domain.ResumeHistory
	url     string
	err     error

	lastUserID string
	lastKey    string
}

func (f *fakeResumeService) Create(ctx context.Context, userID string, email *string, title string, content *string) (*domain.Resume, error) {
	f.lastUserID = userID
	return f.resume, f.err
}

func (f *fakeResumeService) Upload(ctx context.Context, userID string, email *string, header *multipart.FileHeader, file multipart.File, title string) (*domain.Resume, error) {
	f.lastUserID = userID
	return f.resume, f.err
}

func (f *fakeResumeService) RegisterUpload(ctx context.Context, userID string, email *string, key, title string) (*domain.Resume, error) {
	f.lastUserID = userID
	f.lastKey = key
	return f.resume, f.err
}

func (f *fakeResumeService) ReplaceFile(ctx context.Context, userID string, id uuid.UUID, newKey string, changeReason *string) (*domain.Resume, error) {
	f.lastUserID = userID
	f.lastKey = newKey
	return f.resume, f.err
}

func (f *fakeResumeService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.Resume, error) {
	f.lastUserID = userID
	return f.resume, f.err
}

func (f *fakeResumeService) List(ctx context.Context, userID string) ([]domain.Resume, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	if f.resume == nil {
		return []domain.Resume{}, nil
	}
	return []domain.Resume{*f.resume}, nil
}

func (f *fakeResumeService) GetHistory(ctx context.Context, userID string, id uuid.UUID) ([]domain.ResumeHistory, error) {
	f.lastUserID = userID
	return f.history, f.err
}

func (f *fakeResumeService) SoftDelete(ctx context.Context, userID string, id uuid.UUID) error {
	f.lastUserID = userID
	return f.err
}

func (f *fakeResumeService) Download(ctx context.Context, userID string, id uuid.UUID) (string, time.Duration, error) {
	f.lastUserID = userID
	return f.url, 5 * time.Minute, f.err
}

func newRouter(h *ResumeHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/v1/resumes", h.CreateResume)
	r.Get("/v1/resumes", h.ListResumes)
	r.Get("/v1/resumes/{id}", h.GetResume)
	r.Delete("/v1/resumes/{id}", h.DeleteResume)
	r.Post("/v1/resumes/upload/complete", h.CompleteUpload)
	r.Put("/v1/resumes/{id}/file", h.ReplaceFile)
	r.Get("/v1/resumes/{id}/history", h.GetHistory)
	r.Get("/v1/resumes/{id}/download", h.DownloadResume)
	return r
}

func testResume(userID string) *domain.Resume {
	key := "resumes/" + userID + "/123-cv.pdf"
	return &domain.Resume{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    "CV",
		FileKey:  &key,
		Version:  1,
		IsActive: true,
	}
}

func TestCreateResume_Unauthorized(t *testing.T) {
	startAuthStub(t)
	router := newRouter(NewResumeHandler(&fakeResumeService{}))

	body := bytes.NewBufferString(`{"title":"CV"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Невалидный токен тоже дает 401
	req = httptest.NewRequest(http.MethodPost, "/v1/resumes", bytes.NewBufferString(`{"title":"CV"}`))
	req.Header.Set("Authorization", "garbage")
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateResume_ValidationError(t *testing.T) {
	startAuthStub(t)
	router := newRouter(NewResumeHandler(&fakeResumeService{}))

	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateResume_Success(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{resume: testResume("user-1")}
	router := newRouter(NewResumeHandler(svc))

	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", bytes.NewBufferString(`{"title":"CV"}`))
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", svc.lastUserID)

	var got domain.Resume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Version)
}

func TestGetResume_InvalidID(t *testing.T) {
	startAuthStub(t)
	router := newRouter(NewResumeHandler(&fakeResumeService{}))

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/not-a-uuid", nil)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResume_NotFound(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{err: service.ErrResumeNotFound}
	router := newRouter(NewResumeHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceFile_ForeignKeyMapsToForbidden(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{err: service.ErrForbiddenKey}
	router := newRouter(NewResumeHandler(svc))

	body := bytes.NewBufferString(`{"key":"resumes/user-2/123-cv.pdf"}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/resumes/"+uuid.NewString()+"/file", body)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReplaceFile_ConcurrentModificationMapsToConflict(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{err: service.ErrReplaceConflict}
	router := newRouter(NewResumeHandler(svc))

	body := bytes.NewBufferString(`{"key":"resumes/user-1/456-cv.pdf"}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/resumes/"+uuid.NewString()+"/file", body)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCompleteUpload_MissingKey(t *testing.T) {
	startAuthStub(t)
	router := newRouter(NewResumeHandler(&fakeResumeService{}))

	req := httptest.NewRequest(http.MethodPost, "/v1/resumes/upload/complete", bytes.NewBufferString(`{"title":"CV"}`))
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteUpload_MissingObjectMapsToBadRequest(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{err: service.ErrUploadNotFound}
	router := newRouter(NewResumeHandler(svc))

	body := bytes.NewBufferString(`{"key":"resumes/user-1/123-cv.pdf"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/resumes/upload/complete", body)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadResume_ResponseShape(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{url: "https://storage.local/resumes/user-1/123-cv.pdf?expires=300"}
	router := newRouter(NewResumeHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/"+uuid.NewString()+"/download", nil)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got downloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, svc.url, got.URL)
	assert.Equal(t, 300, got.ExpiresIn)
}

func TestDownloadResume_NoFile(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{err: service.ErrNoFile}
	router := newRouter(NewResumeHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/"+uuid.NewString()+"/download", nil)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnexpectedErrorHidesDetails(t *testing.T) {
	startAuthStub(t)
	svc := &fakeResumeService{err: errors.New("pq: connection refused")}
	router := newRouter(NewResumeHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes", nil)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestListResumes_Empty(t *testing.T) {
	startAuthStub(t)
	router := newRouter(NewResumeHandler(&fakeResumeService{}))

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes", nil)
	req.Header.Set("Authorization", "token-user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
