package auth

import "errors"

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrNoSession      = errors.New("no authenticated session")
	ErrInvalidDevice  = errors.New("invalid device credentials")
	ErrDeviceInactive = errors.New("device is disabled")
)
