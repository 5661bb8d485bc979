package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// XUserID is set by an upstream gateway that has already authenticated the user.
const XUserID = "X-User-Id"

// Identify verifies the bearer token, when present, and stores its subject as
// the caller. Requests without a valid token continue anonymously.
func Identify(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.DebugContext(r.Context(), "bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			subject, ok := token.Subject()
			if !ok || subject == "" {
				logger.DebugContext(r.Context(), "bearer token has no subject")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), subject)))
		})
	}
}

// TrustHeader takes the caller from the X-User-Id header.
func TrustHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := strings.TrimSpace(r.Header.Get(XUserID)); userID != "" {
			r = r.WithContext(WithCaller(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}
