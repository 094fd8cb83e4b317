package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"calibrify/internal/services"
	"calibrify/pkg/constants"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"
)

type EquipmentImportController struct {
	importer        services.EquipmentImportServiceInterface
	maxUploadSizeMB int
	logger          *zap.Logger
}

func NewEquipmentImportController(importer services.EquipmentImportServiceInterface, maxUploadSizeMB int, logger *zap.Logger) *EquipmentImportController {
	return &EquipmentImportController{importer: importer, maxUploadSizeMB: maxUploadSizeMB, logger: logger}
}

// Import принимает .xlsx в multipart-поле file.
func (c *EquipmentImportController) Import(ctx echo.Context) error {
	actorID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileHeader, src, err := openUpload(ctx, c.maxUploadSizeMB, constants.AllowedImportMimeTypes)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer src.Close()

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), constants.ImportFileExtension) {
		return utils.ErrorResponse(ctx, apperrors.NewFieldError("file", "Ожидается файл .xlsx"), c.logger)
	}

	result, err := c.importer.Import(ctx.Request().Context(), actorID, src)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Импорт оборудования завершён", http.StatusOK)
}
