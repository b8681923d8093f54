package database

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrQuotaExceeded = errors.New("storage limit exceeded")
	ErrNegativeUsage = errors.New("storage usage would become negative")
)
