package userctx

import "context"

// Context key type
type contextKey string

const subjectKey contextKey = "admin_subject"
const csrfTokenKey contextKey = "csrf_token"

// SetSubject adds the authenticated admin subject to request context
func SetSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// GetSubject retrieves the authenticated admin subject from request context
func GetSubject(ctx context.Context) string {
	subject, ok := ctx.Value(subjectKey).(string)
	if !ok {
		return ""
	}
	return subject
}

// SetCSRFToken adds the session's anti-forgery token to request context so
// controllers can embed it in rendered forms
func SetCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey, token)
}

// GetCSRFToken retrieves the anti-forgery token from request context
func GetCSRFToken(ctx context.Context) string {
	token, ok := ctx.Value(csrfTokenKey).(string)
	if !ok {
		return ""
	}
	return token
}
