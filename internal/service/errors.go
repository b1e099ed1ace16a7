// Package service holds the authentication and profile use cases.  It
// talks to storage through small interfaces so handlers and tests can
// supply their own implementations.
package service

import "errors"

// Error kinds.  Every *Error unwraps to exactly one of these.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

// Error is a domain failure with a message safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Client-facing messages.
const (
	MsgEmailTaken         = "User with this email already exists."
	MsgUsernameTaken      = "User with this username already exists."
	MsgPhoneNumberTaken   = "User with this phone number already exists."
	MsgInvalidLogin       = "Invalid email or password."
	MsgLogoutMissing      = "Refresh token is missing."
	MsgLogoutInvalid      = "Refresh token is not valid."
	MsgRefreshMissing     = "Refresh Token is required."
	MsgRefreshInvalid     = "Invalid or expired refresh token."
	MsgRefreshUserMissing = "User associated with token not found."
	MsgUserNotFound       = "User is not found"
	MsgProfileEmailTaken  = "User with this email already exists."
	MsgProfileNameTaken   = "User with this name already exists."
	MsgProfilePhoneTaken  = "User with this phone already exists."
	MsgWrongOldPassword   = "Incorrect old password."
)
