package routes

import (
	"github.com/labstack/echo/v4"

	"calibrify/internal/controllers"
)

func runMaintenanceRouter(secureGroup *echo.Group, ctrl *controllers.MaintenanceController) {
	secureGroup.GET("/maintenance", ctrl.GetAll)
	secureGroup.GET("/maintenance/:id", ctrl.GetByID)
	secureGroup.POST("/maintenance", ctrl.Create)
	secureGroup.PUT("/maintenance/:id", ctrl.Update)
	secureGroup.PATCH("/maintenance/:id", ctrl.Update)
	secureGroup.DELETE("/maintenance/:id", ctrl.Delete)

	secureGroup.PUT("/maintenance/:id/certificate", ctrl.UploadCertificate)
	secureGroup.DELETE("/maintenance/:id/certificate", ctrl.DeleteCertificate)
}
