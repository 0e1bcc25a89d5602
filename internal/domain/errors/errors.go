// Package errors defines the application error taxonomy for the
// access-control core.
package errors

import (
	"net/http"

	"intranet/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types. User-facing messages are in Spanish, the
// deployment locale of the intranet.
var (
	// ErrUnauthenticated is returned when an operation requires a
	// currently-authenticated identity and none is present.
	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"Debe iniciar sesión para continuar",
		"",
	)

	// ErrInvalidArgument is returned when required input (dni, code) is
	// missing or malformed.
	ErrInvalidArgument = NewBaseError(
		http.StatusBadRequest,
		"INVALID_ARGUMENT",
		"Datos de entrada incompletos o inválidos",
		"",
	)

	// ErrInvitationNotFoundOrConsumed merges "wrong code" and "already
	// used" into one category so callers cannot probe which accounts are
	// taken.
	ErrInvitationNotFoundOrConsumed = NewBaseError(
		http.StatusNotFound,
		"INVITATION_NOT_FOUND_OR_CONSUMED",
		"El código de invitación no es válido o ya fue utilizado",
		"",
	)

	// ErrPartialRedemption marks an invitation consumed without the role
	// grant completing. Operator-facing; the end user cannot remediate it.
	ErrPartialRedemption = NewBaseError(
		http.StatusInternalServerError,
		"PARTIAL_REDEMPTION",
		"No se pudo completar el registro, contacte al administrador",
		"",
	)

	// ErrStoreUnavailable signals a transport or initialization failure
	// against the document stores.
	ErrStoreUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"STORE_UNAVAILABLE",
		"El servicio no está disponible, intente nuevamente",
		"",
	)

	// ErrForbidden is returned when the caller lacks an operator role.
	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"No tiene permisos para realizar esta acción",
		"",
	)

	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"SESSION_NOT_FOUND",
		"La sesión no existe o ha expirado",
		"",
	)

	// ErrTokenInvalid is returned when the federated ID token cannot be
	// verified.
	ErrTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_INVALID",
		"El token de identidad no es válido",
		"",
	)

	// ErrRoleNotGrantable rejects invitations for placeholder roles.
	ErrRoleNotGrantable = NewBaseError(
		http.StatusBadRequest,
		"ROLE_NOT_GRANTABLE",
		"El rol indicado no puede ser asignado por invitación",
		"",
	)

	// ErrValidationFailed is returned when request binding or validation
	// fails at the delivery layer.
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"La validación de los datos falló",
		"",
	)

	// ErrInternalError is the catch-all for unexpected failures.
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Error interno del sistema",
		"",
	)
)

// StoreExecuteError represents a document-store execution error,
// implementing the AppError interface.
type StoreExecuteError struct {
	err     error
	details string
}

// NewStoreExecuteError creates a store-related error
func NewStoreExecuteError(err error, details string) AppError {
	return &StoreExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreExecuteError) Error() string {
	return errors.Wrap(e.err, "store execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *StoreExecuteError) HTTPCode() int {
	return http.StatusServiceUnavailable
}

// ErrorCode returns the business error code
func (e *StoreExecuteError) ErrorCode() string {
	return "STORE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *StoreExecuteError) Message() string {
	return "La operación sobre el almacén de datos falló"
}

// Details returns detailed error information
func (e *StoreExecuteError) Details() string {
	return e.details
}
