package services

import (
	"errors"
	"fmt"
)

// Gateway error taxonomy. All of these are local decisions; only storage
// failures are ever worth retrying.
var (
	// ErrInvalidCredential is returned for any failed login. The message never
	// reveals whether the identity or the secret was the problem.
	ErrInvalidCredential = errors.New("invalid credentials")

	// ErrUnauthenticated means no session exists for the request.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired means the session existed but aged out. Returning it
	// implies the session has already been destroyed.
	ErrSessionExpired = errors.New("session expired")

	// ErrCsrfRejected means the anti-forgery token was missing or wrong. The
	// guarded side effect must not have happened.
	ErrCsrfRejected = errors.New("request token rejected")

	// ErrInsecureTransport means admin traffic arrived over plaintext HTTP
	// from a non-local host.
	ErrInsecureTransport = errors.New("insecure transport")
)

// StorageError wraps a failed read or write of session or audit data. It is
// surfaced to the caller, never swallowed: a lost audit write must not look
// like an allowed submission.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
