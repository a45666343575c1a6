package middleware

import (
	"net/http"
	"regexp"

	"github.com/masumislambadsha/zavisoft/pkg/httputil"
	"github.com/masumislambadsha/zavisoft/pkg/logger"
)

// HeaderSessionID carries the anonymous storefront session a client owns.
const HeaderSessionID = "X-Session-ID"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// ValidSessionID reports whether id is safe to use as a storage namespace.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// RequireSession rejects requests without a well-formed session header with
// 401 and otherwise stores the ID in the context for downstream handlers.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderSessionID)
			switch {
			case id == "":
				writeSessionError(w, r, "missing "+HeaderSessionID+" header")
				return
			case !ValidSessionID(id):
				writeSessionError(w, r, "malformed "+HeaderSessionID+" header")
				return
			}
			next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
		})
	}
}

// OptionalSession stores a well-formed session ID in the context when one is
// supplied and ignores a missing or malformed header.
func OptionalSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get(HeaderSessionID); ValidSessionID(id) {
				r = r.WithContext(logger.WithSessionID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeSessionError(w http.ResponseWriter, r *http.Request, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:      "SESSION_REQUIRED",
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}
