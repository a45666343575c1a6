package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/masumislambadsha/zavisoft/pkg/httputil"
	"github.com/masumislambadsha/zavisoft/pkg/middleware"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// CreateSession handles POST /api/v1/sessions. Sessions are anonymous: the
// id is only a namespace for the cart and wishlist, and nothing is stored
// until the first mutation.
func CreateSession(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(middleware.HeaderSessionID, id)

		logger.DebugContext(r.Context(), "session issued", slog.String("session_id", id))
		httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sessionResponse{SessionID: id}})
	}
}
