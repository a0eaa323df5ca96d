// Package feedback запускает AI-анализ резюме через ADK-агента
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// Result представляет разобранный ответ агента
type Result struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Service держит агента, раннер и сервис сессий ADK
type Service struct {
	runner   *runner.Runner
	sessions session.Service
	appName  string
}

// NewService создает агента-ревьюера поверх Gemini
func NewService(apiKey, model string) (*Service, error) {
	ctx := context.Background()

	m, err := gemini.NewModel(ctx, model, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	reviewer, err := llmagent.New(llmagent.Config{
		Name:        "resume-reviewer",
		Model:       m,
		Description: "Review resume quality",
		Instruction: reviewPrompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessions := session.InMemoryService()

	r, err := runner.New(runner.Config{
		AppName:        reviewer.Name(),
		Agent:          reviewer,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &Service{
		runner:   r,
		sessions: sessions,
		appName:  reviewer.Name(),
	}, nil
}

// Analyze прогоняет текст резюме через агента и разбирает его ответ
func (s *Service) Analyze(ctx context.Context, userID, title, resumeText string) (*Result, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text is empty")
	}

	agentSession, err := s.sessions.Create(ctx, &session.CreateRequest{
		AppName:   s.appName,
		UserID:    userID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent session: %w", err)
	}

	msg := fmt.Sprintf("Resume Title:\n%s\n\nResume:\n%s", title, resumeText)

	stream := s.runner.Run(ctx, agentSession.Session.UserID(), agentSession.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: msg},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return nil, fmt.Errorf("agent stream error: %w", err)
		}
		if event != nil && event.IsFinalResponse() && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}

	if output == "" {
		return nil, fmt.Errorf("empty agent response")
	}

	return ParseResult(output)
}

// ParseResult разбирает ответ агента, терпимо к обрамлению ```json
func ParseResult(raw string) (*Result, error) {
	cleaned := cleanJSON(raw)

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse agent response: %w", err)
	}

	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("agent returned score out of range: %d", result.Score)
	}
	if strings.TrimSpace(result.Feedback) == "" {
		return nil, fmt.Errorf("agent returned empty feedback")
	}

	return &result, nil
}

func cleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
