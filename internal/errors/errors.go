package errors

import (
	"errors"
	"fmt"
)

// Common error types for the CMS client
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrNoRefreshToken   = errors.New("no refresh token available")
	ErrInvalidToken     = errors.New("invalid token")

	// Tenant errors
	ErrTenantNotFound   = errors.New("account not found")
	ErrNoCurrentAccount = errors.New("no current account")
	ErrForbidden        = errors.New("insufficient role for account")

	// Request errors
	ErrValidation = errors.New("validation failed")

	// Offline worker errors
	ErrOffline            = errors.New("offline")
	ErrWorkerNotActive    = errors.New("worker is not active")
	ErrWorkerRedundant    = errors.New("worker is redundant")
	ErrCacheSizeTimeout   = errors.New("cache size request timeout")
	ErrUnsupportedMessage = errors.New("unsupported worker message")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
