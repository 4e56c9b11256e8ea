package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var ErrObjectNotFound = errors.New("object not found")

type ClientMinio interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioS3Client stores view bundles in a single bucket.
type MinioS3Client struct {
	endpoint   string
	useSSL     bool
	bucketName string
	client     ClientMinio
	log        *zap.Logger
}

const defaultContentType = "application/octet-stream"

// NewMinioS3Client creates a new MinioS3Client instance.
func NewMinioS3Client(endpoint, accessKeyID, secretAccessKey, bucketName string, useSSL bool, logger *zap.Logger) (*MinioS3Client, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", endpoint, err)
	}
	return newMinioS3Client(minioClient, endpoint, bucketName, useSSL, logger), nil
}

func newMinioS3Client(client ClientMinio, endpoint, bucketName string, useSSL bool, logger *zap.Logger) *MinioS3Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MinioS3Client{
		endpoint:   endpoint,
		useSSL:     useSSL,
		bucketName: bucketName,
		client:     client,
		log:        logger.With(zap.String("bucket", bucketName)),
	}
}

// Fetch reads a whole object. Missing keys yield ErrObjectNotFound.
func (s3 *MinioS3Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	object, err := s3.client.GetObject(ctx, s3.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s3.wrap(key, err)
	}
	defer object.Close()

	body, err := io.ReadAll(object)
	if err != nil {
		return nil, s3.wrap(key, err)
	}
	s3.log.Debug("fetched object", zap.String("key", key), zap.Int("size", len(body)))
	return body, nil
}

// ListObjects returns the keys under prefix. When filters is not empty only
// keys whose extension is listed are returned.
func (s3 *MinioS3Client) ListObjects(ctx context.Context, prefix string, filters []string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make([]string, 0)
	objectCh := s3.client.ListObjects(ctx, s3.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return result, fmt.Errorf("list %s: %w", prefix, object.Err)
		}
		if len(filters) > 0 && !checkIn(object.Key, filters) {
			continue
		}
		result = append(result, object.Key)
	}
	return result, nil
}

// UploadFile uploads an object to the bucket.
func (s3 *MinioS3Client) UploadFile(ctx context.Context, key string, object io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s3.client.PutObject(ctx, s3.bucketName, key, object, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	s3.log.Info("uploaded object", zap.String("key", key), zap.Int64("size", size))
	return nil
}

func (s3 *MinioS3Client) DeleteFile(ctx context.Context, key string) error {
	if err := s3.client.RemoveObject(ctx, s3.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	s3.log.Info("removed object", zap.String("key", key))
	return nil
}

func (s3 *MinioS3Client) wrap(key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, s3.bucketName, key)
	}
	return fmt.Errorf("fetch %s/%s: %w", s3.bucketName, key, err)
}

func checkIn(key string, filters []string) bool {
	parsed := strings.Split(key, ".")
	if len(parsed) > 1 {
		for _, f := range filters {
			if f == parsed[len(parsed)-1] {
				return true
			}
		}
	}
	return false
}
