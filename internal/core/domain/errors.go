package domain

import "errors"

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")

	// ErrHashing and ErrVerification are failures of the password primitive
	// itself, never a plain password mismatch.
	ErrHashing      = errors.New("password hashing failed")
	ErrVerification = errors.New("password verification failed")

	ErrStorageUnavailable = errors.New("credential storage unavailable")

	// ErrCredentialNotFound stays inside the core; callers see ErrInvalidCredentials.
	ErrCredentialNotFound = errors.New("credential not found")
)
