package routes

import (
	"github.com/labstack/echo/v4"

	"calibrify/internal/controllers"
	"calibrify/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := secureGroup.Group("/users", authMW.RequireStaff)

	users.GET("", userCtrl.GetUsers)
	users.POST("", userCtrl.CreateUser)
	users.DELETE("/:id", userCtrl.DeleteUser)
}
