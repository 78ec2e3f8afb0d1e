package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the submitter address for the audit trail. Forwarded
// headers are only honored for whitelisted proxies; otherwise the peer
// address is the only thing the client cannot spoof.
func ClientIP(r *http.Request, trustedProxy bool) string {
	if trustedProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			// Take first IP if multiple
			ips := strings.Split(forwarded, ",")
			return strings.TrimSpace(ips[0])
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return realIP
		}
	}

	// SplitHostPort also strips the brackets around an IPv6 literal.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
