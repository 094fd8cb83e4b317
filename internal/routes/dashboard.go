package routes

import (
	"github.com/labstack/echo/v4"

	"calibrify/internal/controllers"
)

func runDashboardRouter(secureGroup *echo.Group, ctrl *controllers.DashboardController) {
	secureGroup.GET("/dashboard", ctrl.GetDashboard)
}
