package apperr

import "errors"

// Business Error Codes
const (
	CodeSuccess       = 0
	CodeValidation    = 400
	CodeUnauthorized  = 401
	CodePermission    = 403
	CodeNotFound      = 404
	CodeInternalError = 500
	CodeDatabaseError = 1001
	CodeCacheError    = 1002
	CodeLocked        = 2001
	CodeMaxDepth      = 2002
)

// Business Errors
var (
	ErrTopicNotFound    = errors.New("topic not found")
	ErrReplyNotFound    = errors.New("reply not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// AppError Application Error with code and message
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError Create new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Validation Malformed input; caller can fix and retry
func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message)
}

// NotFound Referenced entity missing or soft-deleted
func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message)
}

// Permission Actor lacks required role or ownership
func Permission(message string) *AppError {
	return NewAppError(CodePermission, message)
}

// Locked Topic locked against new replies
func Locked(message string) *AppError {
	return NewAppError(CodeLocked, message)
}

// MaxDepth Reply nesting limit reached
func MaxDepth(message string) *AppError {
	return NewAppError(CodeMaxDepth, message)
}

// Database Underlying persistence failure; detail is not leaked to callers
func Database(err error) *AppError {
	if ae, ok := AsAppError(err); ok {
		return ae
	}
	return NewAppError(CodeDatabaseError, "database error, try again")
}

// WrapError Wrap error with code
func WrapError(err error, code int) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := AsAppError(err); ok {
		return ae
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
	}
}

// AsAppError Extract an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// CodeOf Error code of err, CodeInternalError when untagged
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}
	if ae, ok := AsAppError(err); ok {
		return ae.Code
	}
	return CodeInternalError
}

// IsNotFound Report whether err is a not-found error
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsValidation Report whether err is a validation error
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsPermission Report whether err is a permission error
func IsPermission(err error) bool {
	return CodeOf(err) == CodePermission
}

// IsLocked Report whether err is a locked-topic error
func IsLocked(err error) bool {
	return CodeOf(err) == CodeLocked
}

// IsMaxDepth Report whether err is a nesting-limit error
func IsMaxDepth(err error) bool {
	return CodeOf(err) == CodeMaxDepth
}
