package domain

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNoToken        = errors.New("no token provided")
	ErrInvalidToken   = errors.New("invalid token")
)
