package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/cartographer/internal/api/response"
)

const (
	// UserIDHeader carries the identity established by the authenticating gateway.
	UserIDHeader = "X-User-ID"
	// WorkerTokenHeader carries the shared worker secret.
	WorkerTokenHeader = "X-Worker-Token"
)

// RequireUser rejects requests without a user identity and stores it in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			response.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
	})
}

// RequireWorkerToken admits requests presenting token in X-Worker-Token or as a
// Bearer credential. An empty token rejects every request.
func RequireWorkerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(WorkerTokenHeader)
			if presented == "" {
				presented = extractBearerToken(r)
			}

			if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				response.Error(w, http.StatusUnauthorized, "Unauthorized worker")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
