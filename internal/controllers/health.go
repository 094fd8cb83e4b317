package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"calibrify/internal/services"
)

type HealthController struct {
	service services.HealthServiceInterface
}

func NewHealthController(service services.HealthServiceInterface) *HealthController {
	return &HealthController{service: service}
}

// Check отдаёт голый JSON без конверта: его читают балансировщики.
func (c *HealthController) Check(ctx echo.Context) error {
	result := c.service.Check(ctx.Request().Context())
	code := http.StatusOK
	if result.Status != services.HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, result)
}
