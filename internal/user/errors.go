package user

import "errors"

var (
	ErrNotFound             = errors.New("user not found")
	ErrUsernameExists       = errors.New("user with this username already exists")
	ErrEmailExists          = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInactive             = errors.New("user account is disabled")
	ErrCannotDeactivateSelf = errors.New("cannot change your own account status")
	ErrEmptyPassword        = errors.New("password cannot be empty")
)
