package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 10 * time.Minute
)

// Client предоставляет методы для работы с S3-совместимым хранилищем
type Client struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewClient создает новый экземпляр клиента S3
func NewClient(conf *Config) (*Client, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	if conf.AccessKeyID == "" || conf.SecretAccessKey == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("missing required configuration: accessKeyID, secretAccessKey, and bucket are required")
	}

	// Создаем конфигурацию AWS
	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	// Создаем клиента с кастомными настройками
	client := s3.New(s3.Options{
		BaseEndpoint:     aws.String(conf.Endpoint),
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	})

	s3Client := &Client{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  conf.Bucket,
	}

	// Проверяем подключение к бакету
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := s3Client.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return s3Client, nil
}

// UploadFile загружает файл в S3
func (h *Client) UploadFile(key string, data io.Reader, contentType string) error {
	if key == "" || data == nil {
		return fmt.Errorf("key and data are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	// Читаем файл в буфер
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, data); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Загружаем файл в S3
	input := &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := h.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return nil
}

// UploadBytes загружает байты в S3
func (h *Client) UploadBytes(key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	return h.UploadFile(key, bytes.NewReader(data), contentType)
}

// ObjectExists проверяет наличие объекта в хранилище через HeadObject
func (h *Client) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// GetObjectInfo возвращает метаданные объекта без чтения содержимого
func (h *Client) GetObjectInfo(ctx context.Context, key string) (*ObjectInfo, error) {
	result, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("object not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get object info from S3: %w", err)
	}

	info := &ObjectInfo{Key: key}
	if result.ContentLength != nil {
		info.SizeBytes = *result.ContentLength
	}
	if result.ContentType != nil {
		info.ContentType = *result.ContentType
	}
	if result.LastModified != nil {
		info.LastModified = *result.LastModified
	}

	return info, nil
}

// DownloadObject читает объект целиком в память
func (h *Client) DownloadObject(ctx context.Context, key string) ([]byte, error) {
	result, err := h.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("object not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return buf.Bytes(), nil
}

// ListObjects возвращает объекты по префиксу
func (h *Client) ListObjects(ctx context.Context, prefix string, limit int32) ([]ObjectInfo, bool, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(h.bucket),
		Prefix: aws.String(prefix),
	}
	if limit > 0 {
		input.MaxKeys = aws.Int32(limit)
	}

	result, err := h.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list objects from S3: %w", err)
	}

	objects := make([]ObjectInfo, 0, len(result.Contents))
	for _, obj := range result.Contents {
		info := ObjectInfo{}
		if obj.Key != nil {
			info.Key = *obj.Key
		}
		if obj.Size != nil {
			info.SizeBytes = *obj.Size
		}
		if obj.LastModified != nil {
			info.LastModified = *obj.LastModified
		}
		objects = append(objects, info)
	}

	truncated := result.IsTruncated != nil && *result.IsTruncated

	return objects, truncated, nil
}

// DeleteObject удаляет объект из S3
func (h *Client) DeleteObject(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// Если объект не существует, считаем операцию успешной
	exists, err := h.ObjectExists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	_, err = h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}

	return nil
}

// PresignGet выдает временную ссылку на скачивание объекта
func (h *Client) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	req, err := h.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign get for %s: %w", key, err)
	}

	return req.URL, nil
}

// PresignPut выдает временную ссылку на прямую загрузку объекта клиентом
func (h *Client) PresignPut(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := h.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign put for %s: %w", key, err)
	}

	return req.URL, nil
}
