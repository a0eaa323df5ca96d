package service

import (
	"context"
	"fmt"

	"resumevault/internal/domain"
	"resumevault/internal/repository"
)

// UserService синхронизирует учетные записи из сервиса аутентификации
type UserService struct {
	store repository.Store
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// Sync идемпотентно создает локальную запись пользователя. Вызывается
// и явным /user/sync, и защитно из операций, которым нужен внешний ключ
func (s *UserService) Sync(ctx context.Context, userID string, email *string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	user := &domain.User{ID: userID, Email: email}
	if err := s.store.EnsureUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}

	return user, nil
}
