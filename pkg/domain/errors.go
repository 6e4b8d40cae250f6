package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// One-time code errors
var (
	ErrOTPInvalid = errors.New("invalid one-time code")
	ErrOTPExpired = errors.New("one-time code expired")
)
