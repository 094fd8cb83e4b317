package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
)

// ValidateFile проверяет размер и MIME-тип файла по содержимому (magic numbers).
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, maxSizeMB int, allowedMimeTypes []string) error {
	if maxSizeMB > 0 {
		maxSizeBytes := int64(maxSizeMB) * 1024 * 1024
		if fileHeader.Size > maxSizeBytes {
			return fmt.Errorf("размер файла (%.2f MB) превышает лимит в %d MB", float64(fileHeader.Size)/1024/1024, maxSizeMB)
		}
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("ошибка чтения файла")
	}

	// Важно: Возвращаем курсор чтения в начало!
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("ошибка обработки файла")
	}

	mimeType := http.DetectContentType(buffer[:n])
	if !slices.Contains(allowedMimeTypes, mimeType) {
		return fmt.Errorf("недопустимый формат файла: %s", mimeType)
	}

	return nil
}
