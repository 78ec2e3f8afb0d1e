package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// csrfTokenBytes is the entropy behind each token; 32 bytes keeps the token
// at least 256 bits of randomness.
const csrfTokenBytes = 32

// CSRFService issues and validates the per-session anti-forgery token. One
// token lives for the whole session lifetime and is created lazily the first
// time a form needs it.
type CSRFService interface {
	// EnsureToken returns the session's token, generating and storing it on
	// first use. Idempotent per session.
	EnsureToken(sess SessionStore) (string, error)

	// Validate compares the supplied token against the session's token in
	// constant time. ErrCsrfRejected means the guarded mutation must not run.
	Validate(sess SessionStore, supplied string) error
}

type csrfService struct{}

// NewCSRFService creates the anti-forgery guard.
func NewCSRFService() CSRFService {
	return &csrfService{}
}

func (s *csrfService) EnsureToken(sess SessionStore) (string, error) {
	if token, ok := sess.Get(sessKeyCSRF).(string); ok && token != "" {
		return token, nil
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := sess.Set(sessKeyCSRF, token); err != nil {
		return "", &StorageError{Op: "session write", Err: err}
	}
	return token, nil
}

func (s *csrfService) Validate(sess SessionStore, supplied string) error {
	stored, ok := sess.Get(sessKeyCSRF).(string)
	if !ok || stored == "" || supplied == "" {
		return ErrCsrfRejected
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return ErrCsrfRejected
	}
	return nil
}

// generateToken produces an opaque random token
func generateToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
