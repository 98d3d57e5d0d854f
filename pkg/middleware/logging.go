package middleware

import (
	"bytes"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/configuration"
	"github.com/iota-uz/catalog-api/pkg/httpapi"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

var errPanic = serrors.New(http.StatusInternalServerError, serrors.KindInternal, "INTERNAL_SERVER_ERROR", "internal server error", nil)

// routeIDVars are the path variables copied onto every request log entry.
var routeIDVars = []string{"service_id", "supplier_id", "archived_service_id", "id"}

type LoggerOptions struct {
	// LogUpdateDetails logs the updater recorded by mutation requests.
	LogUpdateDetails bool
	// MaxBodyLength bounds how much of a request body is read for logging. Zero means no bound.
	MaxBodyLength int64

	Repanic bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{LogUpdateDetails: true, MaxBodyLength: 1 << 20}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status != 0 {
		return
	}
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if ip := r.Header.Get(conf.RealIPHeader); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if id := strings.TrimSpace(r.Header.Get(conf.RequestIDHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}

// routeTemplate returns the matched mux template, or the raw path outside a router.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func routeFields(r *http.Request) logrus.Fields {
	fields := logrus.Fields{}
	vars := mux.Vars(r)
	for _, name := range routeIDVars {
		if v, ok := vars[name]; ok {
			fields[strings.ReplaceAll(name, "_", "-")] = v
		}
	}
	if page := r.URL.Query().Get("page"); page != "" {
		fields["page"] = page
	}
	return fields
}

// updateDetailsFields reads update_details from a JSON mutation body and restores the body for the handler.
func updateDetailsFields(r *http.Request, limit int64) (logrus.Fields, error) {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return nil, nil
	}
	reader := io.Reader(r.Body)
	if limit > 0 {
		reader = io.LimitReader(r.Body, limit)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

	details := gjson.GetBytes(body, "update_details")
	fields := logrus.Fields{"request-bytes": len(body)}
	if by := details.Get("updated_by"); by.Exists() {
		fields["updated-by"] = by.String()
	}
	if reason := details.Get("update_reason"); reason.Exists() {
		fields["update-reason"] = reason.String()
	}
	return fields, nil
}

var tracer = otel.Tracer("catalog-api-middleware")

func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(
				r.Context(),
				"middleware."+name,
				trace.WithAttributes(attribute.String("middleware.name", name)),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isMutation(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func levelFor(status int) logrus.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return logrus.ErrorLevel
	case status >= http.StatusBadRequest:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}

// WithLogger opens the root span of a request, stores a request-scoped logger and
// request id in its context, and logs one entry when the request completes.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	conf := configuration.Use()
	propagator := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := getRequestID(r, conf)
			route := routeTemplate(r)

			fields := routeFields(r)
			fields["request-id"] = requestID
			fields["method"] = r.Method
			fields["route"] = route
			entry := logger.WithFields(fields)

			if opts.LogUpdateDetails && isMutation(r.Method) {
				details, err := updateDetailsFields(r, opts.MaxBodyLength)
				if err != nil {
					entry.WithError(err).Warn("failed to read request-body")
				} else if details != nil {
					entry = entry.WithFields(details)
				}
			}

			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(
				ctx,
				r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", route),
					attribute.String("http.request_id", requestID),
					attribute.String("net.peer.ip", getRealIP(r, conf)),
				),
			)
			defer span.End()

			if sc := span.SpanContext(); sc.HasTraceID() {
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
				entry = entry.WithField("trace-id", sc.TraceID().String())
			}
			w.Header().Set("X-Request-Id", requestID)

			ctx = composables.WithLogger(ctx, entry)
			ctx = composables.WithRequestID(ctx, requestID)

			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				entry.WithFields(logrus.Fields{
					"panic":    recovered,
					"stack":    string(debug.Stack()),
					"duration": time.Since(start),
				}).Error("panic recovered in request handler")
				span.SetAttributes(attribute.Int("http.status_code", http.StatusInternalServerError))
				if rec.status == 0 {
					httpapi.WriteServiceError(rec, requestID, errPanic)
				}
				if opts.Repanic {
					panic(recovered)
				}
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.Status()
			duration := time.Since(start)
			span.SetAttributes(
				attribute.Int("http.status_code", status),
				attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
			)
			entry.WithFields(logrus.Fields{
				"status-code":    status,
				"response-bytes": rec.bytes,
				"duration":       duration,
			}).Log(levelFor(status), "request completed")
		})
	}
}
