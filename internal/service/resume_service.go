package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"resumevault/internal/domain"
	"resumevault/internal/extract"
	"resumevault/internal/repository"
	"resumevault/internal/service/s3"
)

// Определение констант для работы с файлами резюме
const (
	maxFileSize = 10 * 1024 * 1024 // 10MB максимальный размер резюме

	downloadURLExpiry = 5 * time.Minute  // короткая ссылка на скачивание
	uploadURLExpiry   = 15 * time.Minute // ссылка на прямую загрузку
	presignDefaultTTL = 1 * time.Hour
	presignMaxTTL     = 24 * time.Hour
)

// Определение пользовательских ошибок
var (
	ErrFileTooLarge    = errors.New("file size exceeds maximum allowed size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrResumeNotFound  = errors.New("resume not found")
	ErrNoFile          = errors.New("resume has no uploaded file")
	ErrUploadNotFound  = errors.New("uploaded object not found in storage")
	ErrReplaceConflict = errors.New("resume was modified concurrently")
)

// allowedMIMETypes содержит разрешенные типы резюме: PDF, DOC, DOCX
var allowedMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// ResumeService реализует жизненный цикл файла резюме: загрузку,
// регистрацию прямой загрузки, замену с историей и выдачу ссылок
type ResumeService struct {
	store   repository.Store
	storage s3.Storage
}

func NewResumeService(store repository.Store, storage s3.Storage) *ResumeService {
	return &ResumeService{
		store:   store,
		storage: storage,
	}
}

// Create создает запись резюме без файла
func (s *ResumeService) Create(ctx context.Context, userID string, email *string, title string, content *string) (*domain.Resume, error) {
	if userID == "" || title == "" {
		return nil, fmt.Errorf("%w: missing required parameters", ErrInvalidFile)
	}

	if err := s.store.EnsureUser(ctx, &domain.User{ID: userID, Email: email}); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	resume := &domain.Resume{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		Content:  content,
		Version:  1,
		IsActive: true,
	}

	if err := s.store.CreateResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}

	return resume, nil
}

// Upload принимает файл резюме, кладет его в хранилище и создает
// запись метаданных
func (s *ResumeService) Upload(
	ctx context.Context,
	userID string,
	email *string,
	header *multipart.FileHeader,
	file multipart.File,
	title string,
) (*domain.Resume, error) {
	// Проверяем входные параметры
	if header == nil || file == nil || userID == "" {
		return nil, fmt.Errorf("%w: missing required parameters", ErrInvalidFile)
	}

	// Проверяем размер файла
	if header.Size > maxFileSize {
		return nil, fmt.Errorf("%w: max size is %d bytes", ErrFileTooLarge, maxFileSize)
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedMIMETypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	if title == "" {
		title = header.Filename
	}

	key := BuildObjectKey(userID, header.Filename)

	// Сначала гарантируем наличие пользователя, чтобы вставка метаданных
	// не упала на внешнем ключе из-за задержки синхронизации
	if err := s.store.EnsureUser(ctx, &domain.User{ID: userID, Email: email}); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	if err := s.storage.UploadFile(key, file, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload file to storage: %w", err)
	}

	resume := &domain.Resume{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		FileKey:  &key,
		Version:  1,
		IsActive: true,
	}

	if err := s.store.CreateResume(ctx, resume); err != nil {
		// Объект уже в хранилище, компенсирующего удаления нет
		log.Printf("[Upload] Orphaned object %s after metadata failure: %v", key, err)
		return nil, fmt.Errorf("failed to create resume metadata: %w", err)
	}

	return resume, nil
}

// RegisterUpload регистрирует файл, загруженный клиентом напрямую по
// presigned PUT ссылке. Ключ здесь полностью клиентский, поэтому перед
// записью метаданных проверяется и префикс, и реальное наличие объекта
func (s *ResumeService) RegisterUpload(ctx context.Context, userID string, email *string, key, title string) (*domain.Resume, error) {
	if err := AuthorizeObjectKey(userID, key); err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check uploaded object: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, key)
	}

	if title == "" {
		title = key
	}

	if err := s.store.EnsureUser(ctx, &domain.User{ID: userID, Email: email}); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	resume := &domain.Resume{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		FileKey:  &key,
		Version:  1,
		IsActive: true,
	}

	if err := s.store.CreateResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("failed to create resume metadata: %w", err)
	}

	return resume, nil
}

// ReplaceFile заменяет файл резюме. Перед обновлением текущее состояние
// снимается в resume_history, версия увеличивается ровно на единицу.
// Если параллельная замена успела обновить версию раньше, возвращается
// ErrReplaceConflict, повторов на сервере нет
func (s *ResumeService) ReplaceFile(ctx context.Context, userID string, id uuid.UUID, newKey string, changeReason *string) (*domain.Resume, error) {
	if err := AuthorizeObjectKey(userID, newKey); err != nil {
		return nil, err
	}

	resume, err := s.store.GetResume(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	exists, err := s.storage.ObjectExists(ctx, newKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check uploaded object: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, newKey)
	}

	snapshot := &domain.ResumeHistory{
		ID:           uuid.New(),
		ResumeID:     resume.ID,
		UserID:       resume.UserID,
		Title:        resume.Title,
		Content:      resume.Content,
		FileKey:      resume.FileKey,
		AIFeedback:   resume.AIFeedback,
		Score:        resume.Score,
		Version:      resume.Version,
		ChangeReason: changeReason,
	}

	resume.FileKey = &newKey
	resume.Version++

	if err := s.store.ReplaceResumeFile(ctx, resume, snapshot); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResumeNotFound
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrReplaceConflict
		}
		return nil, fmt.Errorf("failed to replace resume file: %w", err)
	}

	return resume, nil
}

func (s *ResumeService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.Resume, error) {
	resume, err := s.store.GetResume(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	return resume, nil
}

func (s *ResumeService) List(ctx context.Context, userID string) ([]domain.Resume, error) {
	resumes, err := s.store.ListResumes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}

	return resumes, nil
}

func (s *ResumeService) GetHistory(ctx context.Context, userID string, id uuid.UUID) ([]domain.ResumeHistory, error) {
	// Проверка владения через ту же выборку, что и Get
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	history, err := s.store.GetResumeHistory(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume history: %w", err)
	}

	return history, nil
}

func (s *ResumeService) SoftDelete(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.store.SoftDeleteResume(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrResumeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}

	return nil
}

// Download возвращает короткоживущую presigned ссылку на файл резюме
// и срок ее жизни. Байты через сервис не проксируются
func (s *ResumeService) Download(ctx context.Context, userID string, id uuid.UUID) (string, time.Duration, error) {
	resume, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", 0, err
	}

	if resume.FileKey == nil || *resume.FileKey == "" {
		return "", 0, ErrNoFile
	}

	url, err := s.storage.PresignGet(ctx, *resume.FileKey, downloadURLExpiry)
	if err != nil {
		return "", 0, fmt.Errorf("failed to presign download url: %w", err)
	}

	return url, downloadURLExpiry, nil
}

// FileText возвращает текстовое содержимое резюме для AI-компонентов:
// текст из загруженного файла, либо поле content, если файла нет
func (s *ResumeService) FileText(ctx context.Context, userID string, id uuid.UUID) (*domain.Resume, string, error) {
	resume, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}

	if resume.FileKey == nil || *resume.FileKey == "" {
		if resume.Content != nil && *resume.Content != "" {
			return resume, *resume.Content, nil
		}
		return nil, "", ErrNoFile
	}

	info, err := s.storage.GetObjectInfo(ctx, *resume.FileKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object info: %w", err)
	}

	data, err := s.storage.DownloadObject(ctx, *resume.FileKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download resume file: %w", err)
	}

	text, err := extract.Text(info.ContentType, data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to extract resume text: %w", err)
	}

	return resume, text, nil
}

// SaveFeedback сохраняет результат AI-анализа
func (s *ResumeService) SaveFeedback(ctx context.Context, userID string, id uuid.UUID, feedback string, score int) error {
	err := s.store.SaveFeedback(ctx, id, userID, feedback, score)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrResumeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	return nil
}

// PresignedURL выдает ссылку на произвольный ключ пользователя, например
// для предпросмотра. Срок жизни можно переопределить в разумных пределах
func (s *ResumeService) PresignedURL(ctx context.Context, userID, key string, expirySeconds int) (string, time.Duration, error) {
	if err := AuthorizeObjectKey(userID, key); err != nil {
		return "", 0, err
	}

	expiry := presignDefaultTTL
	if expirySeconds > 0 {
		expiry = time.Duration(expirySeconds) * time.Second
	}
	if expiry > presignMaxTTL {
		expiry = presignMaxTTL
	}

	url, err := s.storage.PresignGet(ctx, key, expiry)
	if err != nil {
		return "", 0, fmt.Errorf("failed to presign url: %w", err)
	}

	return url, expiry, nil
}

// UploadURL выдает presigned PUT ссылку для прямой загрузки клиентом.
// Зарегистрировать метаданные потом обязан RegisterUpload
func (s *ResumeService) UploadURL(ctx context.Context, userID, filename, contentType string) (string, string, error) {
	if userID == "" || filename == "" {
		return "", "", fmt.Errorf("%w: missing required parameters", ErrInvalidFile)
	}

	if !allowedMIMETypes[contentType] {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	key := BuildObjectKey(userID, filename)

	url, err := s.storage.PresignPut(ctx, key, contentType, uploadURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload url: %w", err)
	}

	return url, key, nil
}
