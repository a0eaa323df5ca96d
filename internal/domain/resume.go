package domain

import (
	"github.com/google/uuid"
	"time"
)

type Resume struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	Title      string     `json:"title" db:"title"`
	Content    *string    `json:"content,omitempty" db:"content"`
	FileKey    *string    `json:"file_key,omitempty" db:"file_key"`
	AIFeedback *string    `json:"ai_feedback,omitempty" db:"ai_feedback"`
	Score      *int       `json:"score,omitempty" db:"score"`
	Version    int        `json:"version" db:"version"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
