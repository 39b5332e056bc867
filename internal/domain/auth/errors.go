package auth

import "errors"

// Auth domain errors
var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrInvalidToken       = errors.New("invalid or missing token")
	ErrTokenExpired       = errors.New("token expired")
	ErrPasswordNotSet     = errors.New("no dashboard password set for this account")
)
