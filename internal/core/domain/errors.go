package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOrderNotFound      = errors.New("order not found")
	ErrPersistence        = errors.New("order store rejected the operation")
	ErrMalformedSession   = errors.New("malformed session")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInvalidTransition  = errors.New("invalid status transition")
)
