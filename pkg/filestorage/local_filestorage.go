package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type LocalFileStorage struct {
	basePath  string
	publicURL string
}

func NewLocalFileStorage(basePath, publicURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %w", err)
	}
	return &LocalFileStorage{basePath: basePath, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *LocalFileStorage) Save(_ context.Context, file io.Reader, _ int64, originalFileName string, prefix string) (string, error) {
	key := objectKey(prefix, originalFileName, time.Now())
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return key, nil
}

// Delete удаляет файл; отсутствие файла не ошибка.
func (s *LocalFileStorage) Delete(_ context.Context, ref string) error {
	relativePath := strings.TrimPrefix(ref, "/")
	if relativePath == "" || strings.Contains(relativePath, "..") {
		return fmt.Errorf("недопустимый путь файла: %q", ref)
	}

	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(relativePath)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalFileStorage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.publicURL + "/" + strings.TrimPrefix(ref, "/")
}
