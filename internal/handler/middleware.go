package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/msomdec/credgate/internal/domain"
	"github.com/msomdec/credgate/internal/metrics"
	"github.com/msomdec/credgate/internal/service"
	"github.com/msomdec/credgate/internal/token"
	"github.com/rs/cors"
)

type contextKey string

const (
	claimsContextKey  contextKey = "claims"
	requestContextKey contextKey = "request"
)

// ClaimsFromContext returns the verified token claims attached by RequireAuth,
// or nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*token.Claims)
	return claims
}

// requestInfo is filled in by inner handlers so that the outer logging
// middleware can report it.
type requestInfo struct {
	userID string
}

// RequireAuth verifies the Authorization header and forwards the request with
// the token claims attached. A missing header is reported separately from a
// token that fails verification.
func RequireAuth(auth *service.AuthService, rec metrics.Recorder, next http.Handler) http.Handler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, domain.ErrNoToken) {
				rec.RecordTokenRejection("missing")
				writeMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}
			reason := "invalid"
			if token.IsExpired(err) {
				reason = "expired"
			}
			rec.RecordTokenRejection(reason)
			slog.DebugContext(r.Context(), "token rejected", "reason", reason, "error", err)
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		if info, ok := r.Context().Value(requestContextKey).(*requestInfo); ok {
			info.userID = claims.UserID
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder wraps http.ResponseWriter and records the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// RequestLogging logs one structured line per request with method, path,
// status, duration and the authenticated user id when known. The level
// follows the status class.
func RequestLogging(logger *slog.Logger, rec metrics.Recorder) func(http.Handler) http.Handler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &requestInfo{}
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r.WithContext(context.WithValue(r.Context(), requestContextKey, info)))

			rec.RecordHTTPStatus(sr.statusCode)

			level := slog.LevelInfo
			if sr.statusCode >= 500 {
				level = slog.LevelError
			} else if sr.statusCode >= 400 {
				level = slog.LevelWarn
			}

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sr.statusCode),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
			}
			if info.userID != "" {
				args = append(args, slog.String("user_id", info.userID))
			}
			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}

// Recovery turns a panic in next into a 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", v),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders sets conservative response headers for a JSON API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// CORS allows browser clients from origins to call the API with a bearer token.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler
}
