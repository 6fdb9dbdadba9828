package models

import "net/http"

// Категории ошибок. Категория однозначно сообщает вызывающей стороне,
// имеет ли смысл повторять запрос.
const (
	ValidationErrorCode    = "validation"     // Некорректные входные данные
	PermissionErrorCode    = "permission"     // Действие недоступно этой роли
	NotFoundErrorCode      = "not_found"      // Сущность не найдена
	StateConflictErrorCode = "state_conflict" // Переход недопустим из текущего статуса
	DuplicateErrorCode     = "duplicate"      // Повторное создание уникальной сущности
	InternalErrorCode      = "internal"       // Внутренняя ошибка сервиса
)

// ErrorResponse описывает ошибку с HTTP-статусом, категорией и сообщением.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"reason"`
}

// NewErrorResponse создает новую ошибку со статусом, категорией и сообщением.
func NewErrorResponse(statusCode int, code, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Code:       code,
		Message:    message}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// NewValidationError создает ошибку валидации входных данных.
func NewValidationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, ValidationErrorCode, message)
}

// NewPermissionError создает ошибку недостатка прав на действие.
func NewPermissionError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, PermissionErrorCode, message)
}

// NewNotFoundError создает ошибку отсутствия сущности.
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, NotFoundErrorCode, message)
}

// NewStateConflictError создает ошибку недопустимого перехода статуса.
func NewStateConflictError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, StateConflictErrorCode, message)
}

// NewDuplicateError создает ошибку повторного создания уникальной сущности.
func NewDuplicateError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, DuplicateErrorCode, message)
}

// NewInternalError создает внутреннюю ошибку сервиса.
func NewInternalError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, InternalErrorCode, message)
}
