package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"resumevault/internal/domain"
	"resumevault/internal/repository"
	"resumevault/internal/service/s3"
)

// fakeStore реализует repository.Store в памяти, потокобезопасно
type fakeStore struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	resumes map[uuid.UUID]*domain.Resume
	history []domain.ResumeHistory

	createCalls int
	failCreate  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*domain.User),
		resumes: make(map[uuid.UUID]*domain.Resume),
	}
}

func (f *fakeStore) CreateResume(ctx context.Context, resume *domain.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.failCreate != nil {
		return f.failCreate
	}

	now := time.Now()
	resume.CreatedAt = now
	resume.UpdatedAt = now

	copied := *resume
	f.resumes[resume.ID] = &copied
	return nil
}

func (f *fakeStore) GetResume(ctx context.Context, id uuid.UUID, userID string) (*domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	resume, ok := f.resumes[id]
	if !ok || resume.UserID != userID || !resume.IsActive {
		return nil, repository.ErrNotFound
	}

	copied := *resume
	return &copied, nil
}

func (f *fakeStore) ListResumes(ctx context.Context, userID string) ([]domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Resume
	for _, resume := range f.resumes {
		if resume.UserID == userID && resume.IsActive {
			out = append(out, *resume)
		}
	}
	return out, nil
}

func (f *fakeStore) ReplaceResumeFile(ctx context.Context, resume *domain.Resume, snapshot *domain.ResumeHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.resumes[resume.ID]
	if !ok || stored.UserID != resume.UserID || !stored.IsActive {
		return repository.ErrNotFound
	}

	// Та же защита от гонки, что и в реальных реализациях: обновление
	// проходит только если версия не ушла вперед со времени snapshot-а
	if stored.Version != snapshot.Version {
		return repository.ErrVersionConflict
	}

	// История пишется до обновления записи
	snapshot.CreatedAt = time.Now()
	f.history = append(f.history, *snapshot)

	stored.FileKey = resume.FileKey
	stored.Version = resume.Version
	stored.UpdatedAt = time.Now()
	resume.UpdatedAt = stored.UpdatedAt
	return nil
}

func (f *fakeStore) GetResumeHistory(ctx context.Context, resumeID uuid.UUID, userID string) ([]domain.ResumeHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.ResumeHistory
	for _, h := range f.history {
		if h.ResumeID == resumeID && h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveFeedback(ctx context.Context, id uuid.UUID, userID string, feedback string, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	resume, ok := f.resumes[id]
	if !ok || resume.UserID != userID || !resume.IsActive {
		return repository.ErrNotFound
	}

	resume.AIFeedback = &feedback
	resume.Score = &score
	return nil
}

func (f *fakeStore) SoftDeleteResume(ctx context.Context, id uuid.UUID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	resume, ok := f.resumes[id]
	if !ok || resume.UserID != userID || !resume.IsActive {
		return repository.ErrNotFound
	}

	resume.IsActive = false
	return nil
}

func (f *fakeStore) EnsureUser(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.users[user.ID]; ok {
		if user.Email != nil {
			existing.Email = user.Email
		}
		return nil
	}

	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeStore) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// fakeStorage реализует s3.Storage в памяти
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeStorage) UploadFile(key string, data io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, data); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	f.types[key] = contentType
	return nil
}

func (f *fakeStorage) UploadBytes(key string, data []byte, contentType string) error {
	return f.UploadFile(key, bytes.NewReader(data), contentType)
}

func (f *fakeStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) GetObjectInfo(ctx context.Context, key string) (*s3.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}

	return &s3.ObjectInfo{
		Key:         key,
		SizeBytes:   int64(len(data)),
		ContentType: f.types[key],
	}, nil
}

func (f *fakeStorage) DownloadObject(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string, limit int32) ([]s3.ObjectInfo, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []s3.ObjectInfo
	for key, data := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, s3.ObjectInfo{Key: key, SizeBytes: int64(len(data))})
		}
	}
	return out, false, nil
}

func (f *fakeStorage) DeleteObject(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.local/%s?expires=%d", key, int(expiry.Seconds())), nil
}

func (f *fakeStorage) PresignPut(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.local/%s?put=1&expires=%d", key, int(expiry.Seconds())), nil
}
