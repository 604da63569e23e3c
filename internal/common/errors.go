// Package common defines shared constants and sentinel errors used across
// client and server layers of SecurePay. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input errors. Wrap with a message meant for the user:
	//
	//	fmt.Errorf("%w: please enter a valid amount", common.ErrValidation)
	ErrValidation    = errors.New("validation error")
	ErrUnknownTable  = errors.New("unknown table")
	ErrAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
