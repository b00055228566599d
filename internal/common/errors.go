// Package common defines shared constants and sentinel errors used across
// the satellite server and its clients. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrVersionConflict = errors.New("version conflict")

	// Authorization errors.
	ErrPermissionDenied   = errors.New("permission denied")
	ErrMaxChangesExceeded = errors.New("max changes per user exceeded")

	// Validation errors (malformed cursor, duplicate chunk order, unknown encoding...).
	ErrInvalidInput      = errors.New("invalid input")
	ErrSizeLimitExceeded = errors.New("size limit exceeded")

	// Upload pipeline errors.
	ErrBatchNotFound = errors.New("batch not found")
	ErrBatchExpired  = errors.New("batch expired")

	// Delivery errors.
	ErrIntegrityMismatch = errors.New("integrity mismatch")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
