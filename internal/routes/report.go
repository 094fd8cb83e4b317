package routes

import (
	"github.com/labstack/echo/v4"

	"calibrify/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, reportController *controllers.ReportController) {
	secureGroup.GET("/reports/calibration-schedule", reportController.CalibrationSchedule)
}
