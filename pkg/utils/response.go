package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"calibrify/pkg/api"
	apperrors "calibrify/pkg/errors"
)

// SuccessResponse - единый конверт {status, message, body}.
// Если передан total и клиент запросил withPagination=true, body оборачивается в {list, pagination}.
func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &api.Response[interface{}]{Status: true, Message: message, Body: body}

	if len(total) > 0 {
		filter := ParseFilterFromQuery(ctx.Request().URL.Query())
		if filter.WithPagination {
			response.Body = map[string]interface{}{
				"list":       body,
				"pagination": api.NewPaginationMeta(total[0], filter.Page, filter.Limit),
			}
		}
	}

	return ctx.JSON(code, response)
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil && httpErr.Code >= http.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			details[e.Field()] = validationMessage(e)
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": "Ошибка валидации",
			"body":    details,
		})
	}

	if code, ok := apperrors.StatusFor(err); ok {
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			logger.Warn("Отказ в доступе", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		}
		return c.JSON(code, map[string]interface{}{
			"status":  false,
			"message": err.Error(),
		})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Внутренняя ошибка сервера",
	})
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Обязательное поле"
	case "min", "gte":
		return "Значение меньше допустимого: " + e.Param()
	case "max", "lte":
		return "Значение больше допустимого: " + e.Param()
	case "oneof", "interval_type":
		return "Недопустимое значение"
	case "date_only":
		return "Ожидается дата в формате YYYY-MM-DD"
	case "email":
		return "Неверный email"
	}
	return "Поле не прошло проверку '" + e.Tag() + "'"
}
