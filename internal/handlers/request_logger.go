package handlers

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/observability"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// statusRecorder remembers the status and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.written += n
	return n, err
}

func (rec *statusRecorder) code() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

// RequestLogger assigns a request id, stores a request logger in the context
// and logs one line per completed request.
func (h *Handlers) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := incomingRequestID(r)
		w.Header().Set(requestIDHeader, requestID)

		logger := h.logger.With(requestAttrs(r, requestID)...)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logging.WithLogger(ctx, logger)
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.code()
		elapsed := time.Since(start)
		route := routeLabel(r)
		if route == "" {
			route = "unmatched"
		}
		recordRequestMetrics(ctx, r.Method, route, status, elapsed)

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if quietPath(r.URL.Path) {
			level = slog.LevelDebug
		}
		logger.Log(ctx, level, "request completed",
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"bytes", rec.written,
		)
	})
}

func requestAttrs(r *http.Request, requestID string) []any {
	attrs := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_ip", clientIP(r),
	}
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		attrs = append(attrs, "user_agent", ua)
	}
	if ref := strings.TrimSpace(r.Referer()); ref != "" {
		attrs = append(attrs, "referer", ref)
	}
	return attrs
}

func recordRequestMetrics(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := []attribute.Builder{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	}
	observability.Count(ctx, "http.server.requests", attrs...)
	if status >= http.StatusInternalServerError {
		observability.Count(ctx, "http.server.errors", attrs...)
	}
	observability.MeterFromContext(ctx).Distribution(
		"http.server.duration",
		float64(elapsed.Milliseconds()),
		sentry.WithUnit(sentry.UnitMillisecond),
		sentry.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
		),
	)
}

// quietPath reports paths polled often enough that successful requests log at debug.
func quietPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/assets/")
}

// requestID returns the id RequestLogger assigned, or the inbound header
// when the middleware did not run.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return strings.TrimSpace(r.Header.Get(requestIDHeader))
}

// incomingRequestID trusts a proxy-supplied id up to 128 bytes.
func incomingRequestID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if id == "" || len(id) > 128 {
		return uuid.NewString()
	}
	return id
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// routeLabel names the matched mux route, falling back to its path template.
func routeLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	if name := route.GetName(); name != "" {
		return name
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return ""
	}
	return template
}
