// Package voice собирает конфигурацию realtime-сессии интервью.
// Сама оркестровка (очередность реплик, аудиотранспорт, инференс)
// живет в Live API, здесь только тонкий конфигурационный слой.
package voice

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Options описывает одно интервью
type Options struct {
	Role       string // целевая позиция, например "Backend Engineer"
	ResumeText string
	Voice      string
}

// SessionParams отдается клиенту для подключения к Live API
type SessionParams struct {
	Model  string                   `json:"model"`
	Config *genai.LiveConnectConfig `json:"config"`
}

// Manager представляет тонкую обертку над genai Live
type Manager struct {
	client *genai.Client
	model  string
	voice  string
}

func NewManager(ctx context.Context, apiKey, model, voice string) (*Manager, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Manager{
		client: client,
		model:  model,
		voice:  voice,
	}, nil
}

// SessionParams собирает параметры сессии для клиента
func (m *Manager) SessionParams(opts Options) SessionParams {
	if opts.Voice == "" {
		opts.Voice = m.voice
	}

	return SessionParams{
		Model:  m.model,
		Config: BuildLiveConfig(opts),
	}
}

// Connect открывает Live-сессию. Чистый pass-through в SDK
func (m *Manager) Connect(ctx context.Context, opts Options) (*genai.Session, error) {
	if opts.Voice == "" {
		opts.Voice = m.voice
	}

	session, err := m.client.Live.Connect(ctx, m.model, BuildLiveConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect live session: %w", err)
	}

	return session, nil
}

// BuildLiveConfig составляет конфигурацию Live-сессии: голос, системная
// инструкция интервьюера и инструменты завершения интервью
func BuildLiveConfig(opts Options) *genai.LiveConnectConfig {
	return &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction:  genai.NewContentFromText(buildInstruction(opts), genai.RoleUser),
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: opts.Voice,
				},
			},
		},
		Tools: []*genai.Tool{interviewTools()},
	}
}

func buildInstruction(opts Options) string {
	var b strings.Builder

	b.WriteString("You are a professional interviewer conducting a mock interview")
	if opts.Role != "" {
		b.WriteString(fmt.Sprintf(" for the position of %s", opts.Role))
	}
	b.WriteString(".\n\n")
	b.WriteString("Ask one question at a time, listen to the answer, and ask natural follow-ups. ")
	b.WriteString("Base your questions on the candidate's resume below. ")
	b.WriteString("Keep a friendly but professional tone. ")
	b.WriteString("When the interview is over, call the end_interview tool with your assessment.\n\n")

	if opts.ResumeText != "" {
		b.WriteString("Candidate resume:\n")
		b.WriteString(opts.ResumeText)
	}

	return b.String()
}

func interviewTools() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "end_interview",
				Description: "Finish the interview and report an assessment of the candidate",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"score": {
							Type:        genai.TypeInteger,
							Description: "Overall interview score from 0 to 100",
						},
						"summary": {
							Type:        genai.TypeString,
							Description: "Short summary of strengths and weaknesses",
						},
					},
					Required: []string{"score", "summary"},
				},
			},
		},
	}
}
