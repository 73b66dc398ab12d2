// internal/services/errors.go
package services

import "errors"

// Sentinel errors shared by the service layer. Handlers map these onto
// HTTP status codes; anything else surfaces as an internal error.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("resource already exists")
	ErrForbidden           = errors.New("access denied")
	ErrPaymentNotSupported = errors.New("payment system not implemented yet, only free beats are available")
	ErrValidation          = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("incorrect username or password")
)
