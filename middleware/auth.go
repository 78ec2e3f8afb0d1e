package middleware

import (
	"errors"
	"net/http"

	"gitea.com/go-chi/session"
	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/services"
	"github.com/tradepost/marketplace-console/userctx"
)

// Redirect reason codes surfaced to the login page.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonExpired         = "expired"
)

// CSRFFieldName is the form field (and header) carrying the anti-forgery
// token on mutating requests.
const CSRFFieldName = "csrf_token"

// RequireAdmin ensures the request carries a live admin session. Failures
// redirect to /login with a reason code; the expired path has already
// destroyed the session by the time the redirect is written. On success the
// subject and the session's CSRF token are placed on the request context.
func RequireAdmin(sessions services.SessionService, csrf services.CSRFService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.GetSession(r)

			adminSession, err := sessions.Validate(sess)
			if err != nil {
				handleGuardFailure(w, r, err, logger)
				return
			}

			// Every admin page may render a mutating form, so the token is
			// ensured here; issuance is idempotent per session.
			token, err := csrf.EnsureToken(sess)
			if err != nil {
				logger.Error("failed to issue csrf token", zap.Error(err))
				http.Error(w, "Something went wrong, please try again", http.StatusInternalServerError)
				return
			}

			ctx := userctx.SetSubject(r.Context(), adminSession.Subject)
			ctx = userctx.SetCSRFToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCSRF validates the anti-forgery token on mutating methods before the
// downstream handler runs, so a rejected request can have no side effect.
// Must sit inside RequireAdmin.
func RequireCSRF(csrf services.CSRFService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete {
				sess := session.GetSession(r)

				supplied := r.Header.Get("X-CSRF-Token")
				if supplied == "" {
					if err := r.ParseForm(); err != nil {
						http.Error(w, "Failed to parse form", http.StatusBadRequest)
						return
					}
					supplied = r.PostFormValue(CSRFFieldName)
				}

				if err := csrf.Validate(sess, supplied); err != nil {
					logger.Warn("rejected mutating request",
						zap.String("path", r.URL.Path))
					http.Error(w, "Request could not be verified", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handleGuardFailure maps a guard error to the user-visible outcome.
func handleGuardFailure(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if errors.Is(err, services.ErrInsecureTransport) {
		// Plaintext admin traffic goes back over TLS with the request intact.
		http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusPermanentRedirect)
		return
	}

	if services.IsAuthFailure(err) {
		reason := ReasonUnauthenticated
		if errors.Is(err, services.ErrSessionExpired) {
			reason = ReasonExpired
		}
		http.Redirect(w, r, "/login?reason="+reason, http.StatusSeeOther)
		return
	}

	// Storage failures are surfaced as a generic retryable error, distinct
	// from credential failures.
	logger.Error("session guard storage failure", zap.Error(err))
	http.Error(w, "Something went wrong, please try again", http.StatusInternalServerError)
}
