package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")

	ErrCategoryNotFound = errors.New("category not found")
	ErrNoActiveSession  = errors.New("no active session")
	ErrInvalidTime      = errors.New("invalid time")
	ErrForbidden        = errors.New("forbidden")
	ErrUserNotActive    = errors.New("user not active")
)

func NewError(model string, err error) error {
	return fmt.Errorf("%s: %w", strings.ToLower(model), err)
}
