package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/services"
	"calibrify/pkg/utils"
)

type EquipmentController struct {
	service   services.EquipmentServiceInterface
	dashboard services.DashboardServiceInterface
	logger    *zap.Logger
}

func NewEquipmentController(
	service services.EquipmentServiceInterface,
	dashboard services.DashboardServiceInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{service: service, dashboard: dashboard, logger: logger}
}

func (c *EquipmentController) GetAll(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.service.GetAll(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, list, "Список оборудования получен", http.StatusOK, total)
}

func (c *EquipmentController) GetByID(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	result, err := c.service.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Оборудование найдено", http.StatusOK)
}

func (c *EquipmentController) Create(ctx echo.Context) error {
	actorID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var d dto.CreateEquipmentDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.service.Create(ctx.Request().Context(), actorID, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Оборудование создано", http.StatusCreated)
}

func (c *EquipmentController) Update(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var d dto.UpdateEquipmentDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.service.Update(ctx.Request().Context(), id, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Оборудование обновлено", http.StatusOK)
}

func (c *EquipmentController) Delete(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Оборудование удалено", http.StatusOK)
}

// DashboardSummary - простая сводка, без кэша.
func (c *EquipmentController) DashboardSummary(ctx echo.Context) error {
	result, err := c.dashboard.GetSummary(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Сводка по оборудованию получена", http.StatusOK)
}
