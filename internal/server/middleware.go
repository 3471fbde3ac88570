package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"apphub/internal/constants"
)

type contextKey string

const loggerContextKey contextKey = "logger"

const requestIDByteSize = 8

// generateRequestID generates a random request ID using crypto/rand
func generateRequestID() string {
	b := make([]byte, requestIDByteSize)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}

// requestIDMiddleware attaches a request-scoped logger carrying a random
// request ID to the context.
func (r *Router) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestID := generateRequestID()
		log := r.logger.With("requestID", requestID)
		ctx := context.WithValue(req.Context(), loggerContextKey, log)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// setContentTypeJSONMiddleware sets Content-Type to application/json for all responses
func setContentTypeJSONMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set(constants.ContentTypeHeader, "application/json")
		next.ServeHTTP(w, req)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// requestLoggingMiddleware logs incoming requests and their responses
// using the logger from context.
func (r *Router) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logger := r.getLoggerFromContext(req.Context())
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		logger.Debug("processing incoming request", "request", map[string]string{
			"method":     req.Method,
			"path":       req.URL.Path,
			"remoteAddr": req.RemoteAddr,
		})

		next.ServeHTTP(wrapped, req)

		logger.Info("response sent", "response", map[string]any{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   wrapped.statusCode,
			"duration": time.Since(start).String(),
		})
	})
}

// getLoggerFromContext returns the request-scoped logger, falling back
// to the router's own.
func (r *Router) getLoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return r.logger
}
