package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSession_ValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/session", r.URL.Path)
		assert.Equal(t, "valid-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":"user-1","email":"user@example.com"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	user, err := client.GetSession(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestGetSession_InvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.GetSession(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session token")
}

func TestGetSession_EmptyUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"","email":""}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.GetSession(context.Background(), "token")
	assert.Error(t, err)
}

func TestVerifySession_NoHeader(t *testing.T) {
	InitClient(NewClient("http://localhost:0"))

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes", nil)

	_, err := VerifySession(req)
	assert.Error(t, err)
}
