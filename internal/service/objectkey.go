package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Владение ключом в хранилище определяется только префиксом
// resumes/{userId}/. Любой клиентский ключ обязан проходить через
// AuthorizeObjectKey, других проверок на уровне хранилища нет.

var (
	ErrInvalidKey   = errors.New("invalid object key")
	ErrForbiddenKey = errors.New("object key does not belong to caller")
)

// BuildObjectKey формирует ключ вида resumes/{userId}/{unixMillis}-{имя}
func BuildObjectKey(userID, filename string) string {
	return fmt.Sprintf("resumes/%s/%d-%s", userID, time.Now().UnixMilli(), SanitizeFilename(filename))
}

// SanitizeFilename убирает небезопасные для ключа символы, расширение
// сохраняется
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = sanitizePart(base)
	if base == "" {
		base = "file"
	}

	// Расширение чистим по тем же правилам, точка остается
	ext = strings.TrimPrefix(ext, ".")
	ext = sanitizePart(ext)
	if ext == "" {
		return base
	}

	return base + "." + strings.ToLower(ext)
}

func sanitizePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// AuthorizeObjectKey проверяет, что ключ лежит в пространстве пользователя
func AuthorizeObjectKey(userID, key string) error {
	if userID == "" || key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}

	prefix := fmt.Sprintf("resumes/%s/", userID)
	if !strings.HasPrefix(key, prefix) {
		return ErrForbiddenKey
	}
	if strings.TrimPrefix(key, prefix) == "" {
		return ErrInvalidKey
	}

	return nil
}
