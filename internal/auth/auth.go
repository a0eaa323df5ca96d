package auth

import (
	"fmt"
	"net/http"
)

var gClient *Client

func InitClient(client *Client) {
	gClient = client
}

// VerifyToken проверяет заголовок Authorization и возвращает id пользователя
func VerifyToken(r *http.Request) (string, error) {
	user, err := VerifySession(r)
	if err != nil {
		return "", err
	}

	return user.ID, nil
}

// VerifySession проверяет заголовок Authorization и возвращает профиль
// пользователя целиком (включая email для синхронизации)
func VerifySession(r *http.Request) (*UserInfo, error) {
	authToken := r.Header.Get("Authorization")
	if authToken == "" {
		return nil, fmt.Errorf("no authorization header")
	}

	if gClient == nil {
		return nil, fmt.Errorf("auth client is not initialized")
	}

	return gClient.GetSession(r.Context(), authToken)
}
