package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"resumevault/internal/service"
)

// validate проверяет JSON-тела запросов по validate-тегам
var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError переводит ошибки сервисного слоя в HTTP-статусы.
// Детали неожиданных ошибок наружу не уходят, только в лог
func writeServiceError(w http.ResponseWriter, tag string, err error) {
	switch {
	case errors.Is(err, service.ErrForbiddenKey):
		writeError(w, http.StatusForbidden, "Object key does not belong to caller")
	case errors.Is(err, service.ErrResumeNotFound):
		writeError(w, http.StatusNotFound, "Resume not found")
	case errors.Is(err, service.ErrNoFile):
		writeError(w, http.StatusNotFound, "Resume has no uploaded file")
	case errors.Is(err, service.ErrReplaceConflict):
		writeError(w, http.StatusConflict, "Resume was modified concurrently")
	case errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUnsupportedType),
		errors.Is(err, service.ErrInvalidFile),
		errors.Is(err, service.ErrInvalidKey),
		errors.Is(err, service.ErrUploadNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[%s] Unexpected error: %v", tag, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
