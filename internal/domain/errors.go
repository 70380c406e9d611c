package domain

import "errors"

var (
	ErrNotFound       = errors.New("machine_not_found")
	ErrNotAvailable   = errors.New("machine_not_available")
	ErrNotReserved    = errors.New("machine_not_reserved")
	ErrInvalidContact = errors.New("invalid_whatsapp_number")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstream       = errors.New("auth_service_unavailable")
)
