package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"calibrify/pkg/config"
)

// S3FileStorage - сертификаты в S3-совместимом хранилище (MinIO, SeaweedFS, AWS).
type S3FileStorage struct {
	api       *s3.Client
	bucket    string
	publicURL string
}

func NewS3FileStorage(ctx context.Context, cfg config.StorageConfig) (*S3FileStorage, error) {
	if cfg.S3Endpoint == "" {
		return nil, errors.New("S3_ENDPOINT is required")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}

	endpoint := cfg.S3Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию S3: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3ForcePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	publicURL := strings.TrimSuffix(cfg.S3PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimSuffix(endpoint, "/") + "/" + cfg.S3Bucket
	}

	return &S3FileStorage{api: client, bucket: cfg.S3Bucket, publicURL: publicURL}, nil
}

func (s *S3FileStorage) Save(ctx context.Context, file io.Reader, size int64, originalFileName string, prefix string) (string, error) {
	key := objectKey(prefix, originalFileName, time.Now())

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if ct := mime.TypeByExtension(path.Ext(originalFileName)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("ошибка загрузки в S3: %w", err)
	}
	return key, nil
}

func (s *S3FileStorage) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(ref, "/")),
	})
	return err
}

func (s *S3FileStorage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.publicURL + "/" + strings.TrimPrefix(ref, "/")
}
