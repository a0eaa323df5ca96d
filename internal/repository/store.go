package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"resumevault/internal/domain"
)

// ErrNotFound возвращается, когда запись отсутствует или принадлежит
// другому пользователю. Снаружи эти случаи неразличимы.
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict возвращается, когда замена файла проиграла гонку:
// версия записи уже не та, с которой снимался snapshot
var ErrVersionConflict = errors.New("resume version conflict")

// Store определяет доступ к метаданным резюме. Есть две реализации:
// прямая через sqlx и через GraphQL-шлюз, выбор происходит при старте.
type Store interface {
	CreateResume(ctx context.Context, resume *domain.Resume) error
	GetResume(ctx context.Context, id uuid.UUID, userID string) (*domain.Resume, error)
	ListResumes(ctx context.Context, userID string) ([]domain.Resume, error)
	// ReplaceResumeFile сначала фиксирует snapshot в истории и только потом
	// обновляет запись резюме. Обновление защищено проверкой версии:
	// если версия уже ушла вперед, возвращается ErrVersionConflict
	ReplaceResumeFile(ctx context.Context, resume *domain.Resume, snapshot *domain.ResumeHistory) error
	GetResumeHistory(ctx context.Context, resumeID uuid.UUID, userID string) ([]domain.ResumeHistory, error)
	SaveFeedback(ctx context.Context, id uuid.UUID, userID string, feedback string, score int) error
	SoftDeleteResume(ctx context.Context, id uuid.UUID, userID string) error
	EnsureUser(ctx context.Context, user *domain.User) error
}
