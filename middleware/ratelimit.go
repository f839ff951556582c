package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/margitantal68/authgate"
)

// RateLimit gates a handler behind the service's admission controller. The
// key function identifies the client; [ClientKey] is the usual choice.
// Denied requests get 429 with a fixed detail body, backend failures 500.
func RateLimit(svc *authgate.Service, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := svc.Admit(r.Context(), keyFn(r))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, authgate.ErrRateLimited):
				writeDetail(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a minute.")
			default:
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
		})
	}
}

// ClientKey identifies the client for rate limiting: the first
// X-Forwarded-For hop when present, otherwise the remote address host.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
