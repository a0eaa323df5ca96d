// Package gateway реализует доступ к метаданным через GraphQL-шлюз.
// Это альтернатива прямому подключению к базе для развертываний, где
// сервис не имеет сетевого доступа к Postgres.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 15 * time.Second

// Client представляет минимальный GraphQL-клиент поверх net/http
type Client struct {
	httpClient  *http.Client
	endpoint    string
	adminSecret string
}

func NewClient(endpoint, adminSecret string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		endpoint:    endpoint,
		adminSecret: adminSecret,
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

// Do выполняет запрос и раскладывает поле data в out
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.adminSecret != "" {
		req.Header.Set("x-hasura-admin-secret", c.adminSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call graphql gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql gateway returned status %d", resp.StatusCode)
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal graphql data: %w", err)
		}
	}

	return nil
}
