package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"calibrify/pkg/constants"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/validation"
)

func parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", apperrors.ErrBadRequest, map[string]interface{}{"id": ctx.Param("id")})
	}
	return id, nil
}

func bindError(err error) error {
	return apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные", err, nil)
}

func openCertificate(ctx echo.Context, maxSizeMB int) (*multipart.FileHeader, multipart.File, error) {
	return openUpload(ctx, maxSizeMB, constants.AllowedCertificateMimeTypes)
}

// openUpload читает multipart-поле file и проверяет размер и формат.
// Вызывающий закрывает файл.
func openUpload(ctx echo.Context, maxSizeMB int, allowedMimeTypes []string) (*multipart.FileHeader, multipart.File, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, nil, apperrors.NewFieldError("file", "Файл не был передан")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil)
	}

	if err := validation.ValidateFile(fileHeader, src, maxSizeMB, allowedMimeTypes); err != nil {
		src.Close()
		return nil, nil, apperrors.NewFieldError("file", err.Error())
	}
	return fileHeader, src, nil
}
