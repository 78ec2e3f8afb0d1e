package services

import (
	"errors"
	"net/http"
	"time"

	"gitea.com/go-chi/session"

	"github.com/tradepost/marketplace-console/models"
)

// Session value keys. The session store is the only place this state lives;
// nothing is cached in-process between requests.
const (
	sessKeySubject   = "subject"
	sessKeyCreatedAt = "created_at"
	sessKeyCSRF      = "csrf_token"
)

// SessionStore is the slice of the session provider the lifecycle manager
// needs. gitea.com/go-chi/session stores satisfy it.
type SessionStore interface {
	Set(key interface{}, value interface{}) error
	Get(key interface{}) interface{}
	Delete(key interface{}) error
	ID() string
	Flush() error
}

// SessionService manages the authenticated-admin session lifecycle:
// Anonymous -> Authenticated -> (Expired | LoggedOut) -> Anonymous.
type SessionService interface {
	// Login verifies the secret and, on success, discards the current session
	// identifier and establishes a fresh authenticated session. On failure no
	// session state is created or mutated.
	Login(w http.ResponseWriter, r *http.Request, secret string) (*models.AdminSession, error)

	// Validate returns the live session, ErrUnauthenticated when none exists,
	// or ErrSessionExpired after destroying a session that aged out.
	Validate(sess SessionStore) (*models.AdminSession, error)

	// Logout destroys the session unconditionally. Idempotent.
	Logout(sess SessionStore) error
}

type sessionService struct {
	credentials CredentialService
	subject     string
	lifetime    time.Duration
	now         func() time.Time
}

// NewSessionService creates the session lifecycle manager. subject is the
// display name of the single administrative identity; lifetime is the
// wall-clock window a session stays live after login.
func NewSessionService(credentials CredentialService, subject string, lifetime time.Duration) SessionService {
	return &sessionService{
		credentials: credentials,
		subject:     subject,
		lifetime:    lifetime,
		now:         time.Now,
	}
}

func (s *sessionService) Login(w http.ResponseWriter, r *http.Request, secret string) (*models.AdminSession, error) {
	if !s.credentials.Verify(secret) {
		return nil, ErrInvalidCredential
	}

	// Reissue the session identifier so an attacker-fixed pre-login id never
	// survives authentication.
	sess, err := session.RegenerateSession(w, r)
	if err != nil {
		return nil, &StorageError{Op: "session regenerate", Err: err}
	}

	return s.establish(sess)
}

// establish writes the authenticated state into an already-regenerated store.
func (s *sessionService) establish(sess SessionStore) (*models.AdminSession, error) {
	createdAt := s.now()
	if err := sess.Set(sessKeySubject, s.subject); err != nil {
		return nil, &StorageError{Op: "session write", Err: err}
	}
	if err := sess.Set(sessKeyCreatedAt, createdAt.Unix()); err != nil {
		return nil, &StorageError{Op: "session write", Err: err}
	}

	return &models.AdminSession{Subject: s.subject, CreatedAt: createdAt}, nil
}

func (s *sessionService) Validate(sess SessionStore) (*models.AdminSession, error) {
	subject, ok := sess.Get(sessKeySubject).(string)
	if !ok || subject == "" {
		return nil, ErrUnauthenticated
	}

	createdUnix, ok := sess.Get(sessKeyCreatedAt).(int64)
	if !ok {
		// Subject without a creation stamp is corrupt state; treat it like no
		// session at all rather than an immortal one.
		if err := sess.Flush(); err != nil {
			return nil, &StorageError{Op: "session destroy", Err: err}
		}
		return nil, ErrUnauthenticated
	}

	createdAt := time.Unix(createdUnix, 0)
	if s.now().Sub(createdAt) >= s.lifetime {
		if err := sess.Flush(); err != nil {
			return nil, &StorageError{Op: "session destroy", Err: err}
		}
		return nil, ErrSessionExpired
	}

	adminSession := &models.AdminSession{Subject: subject, CreatedAt: createdAt}
	if token, ok := sess.Get(sessKeyCSRF).(string); ok {
		adminSession.CSRFToken = token
	}
	return adminSession, nil
}

func (s *sessionService) Logout(sess SessionStore) error {
	if err := sess.Flush(); err != nil {
		return &StorageError{Op: "session destroy", Err: err}
	}
	return nil
}

// IsAuthFailure reports whether err is one of the session-guard outcomes that
// should send the browser back to the login page.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrSessionExpired)
}
