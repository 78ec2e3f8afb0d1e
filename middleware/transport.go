package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/services"
)

// IsSecureTransport reports whether the request arrived over TLS, either
// directly or via a whitelisted proxy's X-Forwarded-Proto. The forwarded
// header is client-controlled, so it only counts when trustedProxy is set.
func IsSecureTransport(r *http.Request, trustedProxy bool) bool {
	if r.TLS != nil {
		return true
	}
	if trustedProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return false
}

// isLoopbackHost reports whether the request host is a development host that
// is exempt from the HTTPS redirect.
func isLoopbackHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// RequireSecureTransport redirects plaintext admin traffic to HTTPS before
// any session check runs. Loopback hosts are exempt so local development
// works without certificates; when enforce is false (a deployment with no TLS
// anywhere) the check is skipped entirely.
func RequireSecureTransport(enforce bool, trustedProxy bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enforce && !IsSecureTransport(r, trustedProxy) && !isLoopbackHost(r.Host) {
				handleGuardFailure(w, r, services.ErrInsecureTransport, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
