package domain

import "time"

// User дублирует учетную запись из сервиса аутентификации для
// ссылочной целостности. ID совпадает с subject провайдера.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
