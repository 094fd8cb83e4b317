package routes

import (
	"github.com/labstack/echo/v4"

	"calibrify/internal/controllers"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController, importCtrl *controllers.EquipmentImportController) {
	secureGroup.GET("/equipment", ctrl.GetAll)
	secureGroup.GET("/equipment/dashboard_summary", ctrl.DashboardSummary)
	secureGroup.GET("/equipment/:id", ctrl.GetByID)
	secureGroup.POST("/equipment", ctrl.Create)
	secureGroup.POST("/equipment/import", importCtrl.Import)
	secureGroup.PUT("/equipment/:id", ctrl.Update)
	secureGroup.PATCH("/equipment/:id", ctrl.Update)
	secureGroup.DELETE("/equipment/:id", ctrl.Delete)
}
