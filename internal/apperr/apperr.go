// Package apperr defines the sentinel errors the HTTP boundary translates
// into status codes and the {message, error: true} envelope.
package apperr

import "errors"

var (
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("recurso no encontrado")

	// ErrValidation maps to 400.
	ErrValidation = errors.New("solicitud inválida")

	// ErrProviderUnavailable marks a retryable provider failure (503).
	ErrProviderUnavailable = errors.New("proveedor de pagos no disponible")

	// ErrPaymentRejected marks a terminal provider rejection (422). Not retried.
	ErrPaymentRejected = errors.New("pago rechazado por el proveedor")
)

// Upload failures, one sentinel per user-facing message.
var (
	ErrFileTooLarge    = errors.New("el archivo excede el tamaño máximo de 5 MB")
	ErrTooManyFiles    = errors.New("se permiten máximo 5 archivos por solicitud")
	ErrUnexpectedField = errors.New("campo de archivo inesperado")
	ErrDisallowedType  = errors.New("tipo de archivo no permitido, solo imágenes")
	ErrUploadFailed    = errors.New("no se pudo procesar el archivo")
)

// Validation wraps ErrValidation with a specific user-facing message.
func Validation(msg string) error {
	return &withMessage{sentinel: ErrValidation, msg: msg}
}

type withMessage struct {
	sentinel error
	msg      string
}

func (e *withMessage) Error() string { return e.msg }

func (e *withMessage) Unwrap() error { return e.sentinel }
