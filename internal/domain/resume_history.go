// domain/resume_history.go
package domain

import (
	"github.com/google/uuid"
	"time"
)

// ResumeHistory хранит снимок резюме до изменения файла. Строки только
// добавляются и никогда не изменяются.
type ResumeHistory struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ResumeID     uuid.UUID `json:"resume_id" db:"resume_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	Content      *string   `json:"content,omitempty" db:"content"`
	FileKey      *string   `json:"file_key,omitempty" db:"file_key"`
	AIFeedback   *string   `json:"ai_feedback,omitempty" db:"ai_feedback"`
	Score        *int      `json:"score,omitempty" db:"score"`
	Version      int       `json:"version" db:"version"`
	ChangeReason *string   `json:"change_reason,omitempty" db:"change_reason"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
