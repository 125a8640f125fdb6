package services

import (
	"errors"
	"fmt"
)

// Account errors.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
)

// Transaction errors.
var (
	ErrMissingField    = errors.New("required field is missing")
	ErrInvalidAmount   = errors.New("amount must be a number below 10000000000000 with at most two decimal places")
	ErrInvalidDate     = errors.New("date must be a calendar date in YYYY-MM-DD form")
	ErrUnauthenticated = errors.New("no authenticated user")
)

// FieldError names the input field a validation failure applies to.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
