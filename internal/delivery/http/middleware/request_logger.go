package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/utils"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger and logs the request once it
// finishes. An incoming X-Request-ID is kept so traces line up with the caller.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()[:8]
		}
		reqLogger := logger.WithRequestID(id)
		r = r.WithContext(logger.NewContext(r.Context(), &reqLogger))
		w.Header().Set(requestIDHeader, id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		rec := logger.HTTPRecord{
			Method:    r.Method,
			Path:      r.URL.Path,
			Route:     r.Pattern,
			Query:     r.URL.RawQuery,
			Status:    sw.status,
			Bytes:     sw.bytes,
			Duration:  time.Since(start),
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
		}
		// auth runs per route on a derived request
		if claims, err := utils.ExtractClaims(r); err == nil {
			rec.UserID = claims.UserID
		}
		logger.HTTPRequest(r.Context(), rec)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack lets the event stream upgrade through the logger.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
