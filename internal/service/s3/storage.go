// storage.go
package s3

import (
	"context"
	"io"
	"time"
)

// ObjectInfo описывает метаданные объекта в хранилище
type ObjectInfo struct {
	Key          string    `json:"key"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Storage определяет интерфейс для работы с S3-совместимым хранилищем
type Storage interface {
	UploadFile(key string, data io.Reader, contentType string) error
	UploadBytes(key string, data []byte, contentType string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
	GetObjectInfo(ctx context.Context, key string) (*ObjectInfo, error)
	DownloadObject(ctx context.Context, key string) ([]byte, error)
	ListObjects(ctx context.Context, prefix string, limit int32) ([]ObjectInfo, bool, error)
	DeleteObject(key string) error
	// Выдача временных ссылок вместо проксирования байтов
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignPut(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error)
}
