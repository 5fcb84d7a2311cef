package notectx

import "errors"

// Sentinel errors mapped from API status codes.
// Use errors.Is() to check.
var (
	ErrInvalidRequest     = errors.New("notectx: invalid request")
	ErrUnauthorized       = errors.New("notectx: unauthorized")
	ErrDocumentNotFound   = errors.New("notectx: document not found")
	ErrBackendUnavailable = errors.New("notectx: backend unavailable")
	ErrServer             = errors.New("notectx: server error")
)
