package filestorage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"calibrify/pkg/config"
)

// FileStorageInterface - хранилище файлов сертификатов. Запись в БД хранит только ref.
type FileStorageInterface interface {
	Save(ctx context.Context, file io.Reader, size int64, originalFileName string, prefix string) (ref string, err error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

// New выбирает реализацию по STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (FileStorageInterface, error) {
	switch cfg.Driver {
	case "", "local":
		s, err := NewLocalFileStorage(cfg.UploadDir, cfg.PublicURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3FileStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("неизвестный драйвер хранилища: %s", cfg.Driver)
}

// objectKey: prefix/2006/01/02/2006-01-02-<uuid>.ext
func objectKey(prefix, originalFileName string, now time.Time) string {
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), path.Ext(originalFileName))
	return path.Join(prefix, now.Format("2006/01/02"), uniqueFileName)
}
