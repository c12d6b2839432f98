package domain

import "errors"

var (
	// ErrUserNotFound is returned by user lookups with no match.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when registering a username that
	// already owns a local credential.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrWeakPassword is returned when a candidate password fails the
	// minimum strength policy.
	ErrWeakPassword = errors.New("password does not meet minimum requirements")

	// ErrInvalidCredentials is the uniform login failure. Callers never
	// learn whether the username was unknown or the password wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound is returned when a session reference does not
	// resolve to a stored session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownProvider is returned for provider names the federation
	// layer does not recognize.
	ErrUnknownProvider = errors.New("unknown identity provider")
)
