package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = errors.New("неверный метод подписи токена")
	ErrInvalidToken         = errors.New("недопустимый токен")
	ErrTokenExpired         = errors.New("срок действия токена истёк")
	ErrTokenNotYetValid     = errors.New("токен ещё не активен")
	ErrTokenIsNotRefresh    = errors.New("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = errors.New("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = errors.New("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = errors.New("неверный формат заголовка авторизации")
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	ErrUserDisabled       = errors.New("учётная запись отключена")
	ErrTooManyAttempts    = errors.New("слишком много попыток входа")
	ErrUnauthorized       = errors.New("неавторизован")
	ErrForbidden          = errors.New("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = errors.New("UserID не найден в контексте запроса")
	ErrUserNotFound            = errors.New("пользователь не найден")

	// Общие
	ErrNotFound   = errors.New("запись не найдена")
	ErrConflict   = errors.New("запись с такими данными уже существует")
	ErrBadRequest = errors.New("неверный запрос")
	ErrInternal   = errors.New("внутренняя ошибка сервера")
)

// HttpError - ошибка с HTTP-кодом и пользовательским сообщением.
// Details уходит клиенту в body, Err и Context только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// NewValidationError - 400 с ошибками по полям: {"serial_number": "..."}
func NewValidationError(fields map[string]string) *HttpError {
	return &HttpError{
		Code:    http.StatusBadRequest,
		Message: "Ошибка валидации",
		Err:     ErrBadRequest,
		Details: fields,
	}
}

func NewFieldError(field, message string) *HttpError {
	return NewValidationError(map[string]string{field: message})
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, ErrBadRequest, nil)
}

func NewInternalError(message string) *HttpError {
	return NewHttpError(http.StatusInternalServerError, message, ErrInternal, nil)
}

// StatusFor сопоставляет доменные ошибки с HTTP-кодами.
func StatusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests, true
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserDisabled),
		errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenNotYetValid),
		errors.Is(err, ErrTokenIsNotRefresh),
		errors.Is(err, ErrTokenIsNotAccess),
		errors.Is(err, ErrUserIDNotFoundInContext):
		return http.StatusUnauthorized, true
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, true
	}
	return 0, false
}
