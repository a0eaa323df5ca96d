package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"resumevault/internal/domain"
)

// ResumeRepository реализует Store поверх Postgres через sqlx
type ResumeRepository struct {
	db *sqlx.DB
}

func NewResumeRepository(db *sqlx.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

func (r *ResumeRepository) CreateResume(ctx context.Context, resume *domain.Resume) error {
	query := `
        INSERT INTO resumes (id, user_id, title, content, file_key, version, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		resume.ID,
		resume.UserID,
		resume.Title,
		resume.Content,
		resume.FileKey,
		resume.Version,
		resume.IsActive,
	).Scan(&resume.CreatedAt, &resume.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}

	return nil
}

func (r *ResumeRepository) GetResume(ctx context.Context, id uuid.UUID, userID string) (*domain.Resume, error) {
	var resume domain.Resume
	query := `SELECT * FROM resumes WHERE id = $1 AND user_id = $2 AND is_active = true`

	err := r.db.GetContext(ctx, &resume, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	return &resume, nil
}

func (r *ResumeRepository) ListResumes(ctx context.Context, userID string) ([]domain.Resume, error) {
	var resumes []domain.Resume
	query := `SELECT * FROM resumes WHERE user_id = $1 AND is_active = true ORDER BY updated_at DESC`

	err := r.db.SelectContext(ctx, &resumes, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}

	return resumes, nil
}

// ReplaceResumeFile записывает snapshot в историю и обновляет резюме в
// одной транзакции, чтобы при сбое не потерять предыдущую версию
func (r *ResumeRepository) ReplaceResumeFile(ctx context.Context, resume *domain.Resume, snapshot *domain.ResumeHistory) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Сначала история
	historyQuery := `
        INSERT INTO resume_history (id, resume_id, user_id, title, content, file_key, ai_feedback, score, version, change_reason)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at`

	err = tx.QueryRowContext(
		ctx,
		historyQuery,
		snapshot.ID,
		snapshot.ResumeID,
		snapshot.UserID,
		snapshot.Title,
		snapshot.Content,
		snapshot.FileKey,
		snapshot.AIFeedback,
		snapshot.Score,
		snapshot.Version,
		snapshot.ChangeReason,
	).Scan(&snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history snapshot: %w", err)
	}

	// Потом сама запись. Условие version = $5 защищает от гонки двух
	// параллельных замен: версия читалась вне транзакции, и если она уже
	// ушла вперед, обновление не пройдет и транзакция откатится вместе
	// со snapshot-ом
	updateQuery := `
        UPDATE resumes
        SET file_key = $1,
            version = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $3 AND user_id = $4 AND is_active = true AND version = $5
        RETURNING updated_at`

	err = tx.QueryRowContext(ctx, updateQuery, resume.FileKey, resume.Version, resume.ID, resume.UserID, snapshot.Version).
		Scan(&resume.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update resume file: %w", err)
	}

	return tx.Commit()
}

func (r *ResumeRepository) GetResumeHistory(ctx context.Context, resumeID uuid.UUID, userID string) ([]domain.ResumeHistory, error) {
	var history []domain.ResumeHistory
	query := `
        SELECT * FROM resume_history
        WHERE resume_id = $1 AND user_id = $2
        ORDER BY version DESC`

	err := r.db.SelectContext(ctx, &history, query, resumeID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume history: %w", err)
	}

	return history, nil
}

// SaveFeedback сохраняет результат AI-анализа на записи резюме
func (r *ResumeRepository) SaveFeedback(ctx context.Context, id uuid.UUID, userID string, feedback string, score int) error {
	query := `
        UPDATE resumes
        SET ai_feedback = $1,
            score = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $3 AND user_id = $4 AND is_active = true`

	result, err := r.db.ExecContext(ctx, query, feedback, score, id, userID)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SoftDeleteResume снимает флаг is_active, строки физически не удаляются
func (r *ResumeRepository) SoftDeleteResume(ctx context.Context, id uuid.UUID, userID string) error {
	query := `
        UPDATE resumes
        SET is_active = false,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND user_id = $2 AND is_active = true`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to soft delete resume: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// EnsureUser создает пользователя, если его еще нет. Upsert на уровне базы,
// а не check-then-insert, чтобы параллельные вызовы не конфликтовали
func (r *ResumeRepository) EnsureUser(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (id, email)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE
        SET email = COALESCE(EXCLUDED.email, users.email)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}

	return nil
}
