package routes

import (
	"github.com/labstack/echo/v4"

	"calibrify/internal/controllers"
)

func runCalibrationRouter(secureGroup *echo.Group, ctrl *controllers.CalibrationController) {
	secureGroup.GET("/calibrations", ctrl.GetAll)
	secureGroup.GET("/calibrations/:id", ctrl.GetByID)
	secureGroup.POST("/calibrations", ctrl.Create)
	secureGroup.PUT("/calibrations/:id", ctrl.Update)
	secureGroup.PATCH("/calibrations/:id", ctrl.Update)
	secureGroup.DELETE("/calibrations/:id", ctrl.Delete)

	secureGroup.PUT("/calibrations/:id/certificate", ctrl.UploadCertificate)
	secureGroup.DELETE("/calibrations/:id/certificate", ctrl.DeleteCertificate)
}
