// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Every error produced by this package belongs to exactly one kind
// (ErrValidation, ErrAuth, ErrDuplicate, ErrNotFound, ErrUpstream, ErrStore);
// callers match kinds and specific sentinels with errors.Is.
package apperr

import "errors"

// Kinds.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrDuplicate  = errors.New("duplicate")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream error")
	ErrStore      = errors.New("store error")
)

// Error carries a client-facing message and unwraps to its parent (a kind or
// a more specific sentinel) and, optionally, to an underlying cause.
type Error struct {
	parent error
	msg    string
	cause  error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.parent, e.cause}
	}
	return []error{e.parent}
}

func newError(parent error, msg string) *Error {
	return &Error{parent: parent, msg: msg}
}

var (
	// auth
	ErrInvalidCredentials = newError(ErrAuth, "invalid username or password")
	ErrInvalidToken       = newError(ErrAuth, "invalid token")
	ErrExpiredToken       = newError(ErrAuth, "token expired")
	ErrMissingToken       = newError(ErrAuth, "authorization header required")

	// users
	ErrDuplicateUsername = newError(ErrDuplicate, "this username is already in use")
	ErrUserNotFound      = newError(ErrNotFound, "user not found")
	ErrSettingsNotFound  = newError(ErrNotFound, "settings not found")

	ErrWrongPassword = newError(ErrInvalidCredentials, "current password is incorrect")

	// validation
	ErrNoChange       = newError(ErrValidation, "no changes made to profile")
	ErrInvalidUpload  = newError(ErrValidation, "invalid upload")
	ErrInvalidSetting = newError(ErrValidation, "invalid setting")
	ErrInvalidValue   = newError(ErrValidation, "invalid setting value")
)

// Validation returns a validation error with a client-facing message.
func Validation(msg string) error {
	return newError(ErrValidation, msg)
}

// Detail refines a sentinel with a more specific message while keeping it
// matchable with errors.Is(err, sentinel).
func Detail(sentinel error, msg string) error {
	return newError(sentinel, msg)
}

// Upstream reports a third-party API failure; msg is the provider's message.
func Upstream(msg string, cause error) error {
	return &Error{parent: ErrUpstream, msg: msg, cause: cause}
}

// Store wraps a backing-store failure. The cause is kept for logging but the
// message stays generic.
func Store(cause error) error {
	return &Error{parent: ErrStore, msg: "database error", cause: cause}
}

// Blob wraps a failure of the upload storage backend.
func Blob(cause error) error {
	return &Error{parent: ErrStore, msg: "failed to store file", cause: cause}
}

// Kind reports which kind err belongs to, or nil for unclassified errors.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrAuth, ErrDuplicate, ErrNotFound, ErrUpstream, ErrStore} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
