package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/credgate/internal/metrics"
	"github.com/msomdec/credgate/internal/service"
)

// RegisterRoutes sets up the API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, rec metrics.Recorder) {
	h := NewAuthHandler(auth, rec)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/register", h.HandleRegister)
	mux.HandleFunc("POST /api/login", h.HandleLogin)
	mux.Handle("GET /api/profile", RequireAuth(auth, rec, http.HandlerFunc(h.HandleProfile)))

	mux.HandleFunc("POST /create-user", h.HandleCreateUser)
}

// Wrap applies the middleware stack shared by every route, outermost first:
// request logging, recovery, CORS, security headers. Logging sits outside
// recovery so recovered panics are logged and counted as 500s.
func Wrap(next http.Handler, logger *slog.Logger, rec metrics.Recorder, corsOrigins []string) http.Handler {
	h := SecurityHeaders(next)
	h = CORS(corsOrigins)(h)
	h = Recovery(h)
	return RequestLogging(logger, rec)(h)
}
