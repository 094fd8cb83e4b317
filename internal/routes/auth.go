package routes

import (
	"github.com/labstack/echo/v4"

	"calibrify/internal/controllers"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, authCtrl *controllers.AuthController) {
	api.POST("/auth/login", authCtrl.Login)
	api.POST("/auth/refresh", authCtrl.RefreshToken)

	secureGroup.GET("/auth/me", authCtrl.Me)
}
