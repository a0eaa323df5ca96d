// auth/client.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UserInfo представляет информацию о пользователе в нашем приложении
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client ходит в сервис аутентификации по HTTP. Проверка токенов
// полностью делегирована провайдеру, локально ничего не верифицируется.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

type sessionResponse struct {
	User UserInfo `json:"user"`
}

// GetSession проверяет токен и возвращает данные пользователя
func (c *Client) GetSession(ctx context.Context, authToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/session", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Authorization", authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("invalid session token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	if session.User.ID == "" {
		return nil, fmt.Errorf("auth service returned empty user id")
	}

	return &session.User, nil
}
