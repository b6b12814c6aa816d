package api

import (
	"context"
	"elevator-sim/internal/platform/obs"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xyproto/randomstring"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDLen    = 12
)

// statusWriter captures the final HTTP status code and number of bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware tags each request with an ID (the caller's X-Request-ID or a
// generated one), puts a request-scoped logger in the context, and logs one
// line per request once the handler returns.
func loggingMiddleware(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = randomstring.HumanFriendlyString(requestIDLen)
		}
		w.Header().Set(requestIDHeader, reqID)

		reqLog := log.With().Str("req_id", reqID).Logger()
		ctx := context.WithValue(r.Context(), obs.RequestIDKey, reqID)
		ctx = reqLog.WithContext(ctx)

		sw := &statusWriter{
			ResponseWriter: w,
			status:         0,
		}

		next.ServeHTTP(sw, r.WithContext(ctx))

		reqLog.Info().
			Str("method", r.Method).
			Str("path", r.URL.RequestURI()).
			Int("status", sw.status).
			Int("bytes", sw.bytes).
			Int64("dur_ms", time.Since(start).Milliseconds()).
			Msg("request")
	})
}
