package handler

import (
	"context"
	"net/http"

	"resumevault/internal/auth"
	"resumevault/internal/domain"
)

type userService interface {
	Sync(ctx context.Context, userID string, email *string) (*domain.User, error)
}

type UserHandler struct {
	userService userService
}

func NewUserHandler(userService userService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SyncUser зеркалирует учетную запись провайдера в локальную базу.
// Повторные вызовы безопасны
func (h *UserHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	user, err := auth.VerifySession(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	synced, err := h.userService.Sync(r.Context(), user.ID, emailOf(user))
	if err != nil {
		writeServiceError(w, "SyncUser", err)
		return
	}

	writeJSON(w, http.StatusOK, synced)
}
