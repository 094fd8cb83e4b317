package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"calibrify/internal/repositories"
	"calibrify/internal/services"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	clock         services.Clock
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, clock services.Clock, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, clock: clock, logger: logger}
}

// CalibrationSchedule отдаёт график калибровок в .xlsx (по умолчанию) или JSON при format=json.
func (ctrl *ReportController) CalibrationSchedule(ctx echo.Context) error {
	filter := repositories.ScheduleReportFilter{
		Category:        ctx.QueryParam("category"),
		Location:        ctx.QueryParam("location"),
		IncludeInactive: ctx.QueryParam("include_inactive") == "true",
	}

	items, err := ctrl.reportService.GetCalibrationSchedule(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, ctrl.logger)
	}

	if ctx.QueryParam("format") == "json" {
		return utils.SuccessResponse(ctx, items, "График калибровок сформирован", http.StatusOK)
	}

	f, err := ctrl.reportService.BuildCalibrationScheduleXLSX(items)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сформировать отчёт", err, nil), ctrl.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("calibration_schedule_%s.xlsx", ctrl.clock.Today().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
