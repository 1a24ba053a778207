package audit

import "errors"

var (
	ErrEventValidation     = errors.New("audit: event validation failed")
	ErrStorageNotAvailable = errors.New("audit: storage is closed")
)
