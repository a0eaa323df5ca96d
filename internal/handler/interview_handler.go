package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"resumevault/internal/auth"
	"resumevault/internal/domain"
	"resumevault/internal/feedback"
	"resumevault/internal/voice"
)

type interviewService interface {
	FileText(ctx context.Context, userID string, id uuid.UUID) (*domain.Resume, string, error)
	SaveFeedback(ctx context.Context, userID string, id uuid.UUID, feedback string, score int) error
}

type feedbackRunner interface {
	Analyze(ctx context.Context, userID, title, resumeText string) (*feedback.Result, error)
}

type voiceSessions interface {
	SessionParams(opts voice.Options) voice.SessionParams
}

// InterviewHandler связывает резюме с AI-компонентами: голосовой сессией
// интервью и агентом-ревьюером
type InterviewHandler struct {
	resumeService   interviewService
	feedbackService feedbackRunner
	voiceManager    voiceSessions
}

func NewInterviewHandler(resumeService interviewService, feedbackService feedbackRunner, voiceManager voiceSessions) *InterviewHandler {
	return &InterviewHandler{
		resumeService:   resumeService,
		feedbackService: feedbackService,
		voiceManager:    voiceManager,
	}
}

type startInterviewRequest struct {
	Role  string `json:"role,omitempty"`
	Voice string `json:"voice,omitempty"`
}

// StartInterview собирает параметры realtime-сессии для клиента. Само
// аудио идет напрямую между клиентом и Live API
func (h *InterviewHandler) StartInterview(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resume id")
		return
	}

	var req startInterviewRequest
	if r.ContentLength > 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resume, text, err := h.resumeService.FileText(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "StartInterview", err)
		return
	}

	role := req.Role
	if role == "" {
		role = resume.Title
	}

	params := h.voiceManager.SessionParams(voice.Options{
		Role:       role,
		ResumeText: text,
		Voice:      req.Voice,
	})

	writeJSON(w, http.StatusOK, params)
}

// RunFeedback прогоняет резюме через агента и сохраняет результат
func (h *InterviewHandler) RunFeedback(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resume id")
		return
	}

	resume, text, err := h.resumeService.FileText(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "RunFeedback", err)
		return
	}

	result, err := h.feedbackService.Analyze(r.Context(), userID, resume.Title, text)
	if err != nil {
		writeServiceError(w, "RunFeedback", err)
		return
	}

	if err := h.resumeService.SaveFeedback(r.Context(), userID, id, result.Feedback, result.Score); err != nil {
		writeServiceError(w, "RunFeedback", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
