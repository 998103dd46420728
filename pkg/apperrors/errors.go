package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrNoTables           = errors.New("no tables supplied")
	ErrUnsupportedDriver  = errors.New("unsupported datasource driver")
	ErrMissingCredentials = errors.New("LLM credentials are not configured")
)
