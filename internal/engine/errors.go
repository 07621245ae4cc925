package engine

import "fmt"

type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func InvalidPayloadError() *AppError {
	return NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
}

func UnknownActionError(action string) *AppError {
	return NewAppError("UNKNOWN_ACTION", 400, fmt.Sprintf("Unknown action: %s", action))
}

func MissingEnvironmentError() *AppError {
	return NewAppError("MISSING_ENVIRONMENT", 400, "No environment URL in request or config")
}

func QuantityTooLargeError(max int) *AppError {
	return NewAppError("QUANTITY_TOO_LARGE", 400, fmt.Sprintf("Quantity exceeds the configured maximum of %d", max))
}
