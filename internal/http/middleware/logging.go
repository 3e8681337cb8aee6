package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

type ctxKey string

const requestStateKey ctxKey = "requestState"

// requestState is shared by the outer logging middleware and inner handlers.
// Handlers run on a derived context, so the user id is written back through this pointer.
type requestState struct {
	requestID string
	userID    string
	companyID string
}

// RequestIDFromContext returns the request id assigned by Logging
func RequestIDFromContext(ctx context.Context) string {
	if st, ok := ctx.Value(requestStateKey).(*requestState); ok {
		return st.requestID
	}
	return ""
}

// TagUser records the authenticated caller for the request log line.
// Mount it after auth.Middleware.Authenticate.
func TagUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, ok := r.Context().Value(requestStateKey).(*requestState)
		if ok {
			if userCtx, found := auth.FromContext(r.Context()); found {
				st.userID = userCtx.UserID.String()
				st.companyID = userCtx.CompanyID.String()
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Logging middleware logs one line per HTTP request
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 64 {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			st := &requestState{requestID: requestID}
			r = r.WithContext(context.WithValue(r.Context(), requestStateKey, st))

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status_code", rw.statusCode),
				zap.Int64("response_size", rw.written),
				zap.Duration("duration", duration),
			}
			if st.userID != "" {
				fields = append(fields,
					zap.String("user_id", st.userID),
					zap.String("company_id", st.companyID),
				)
			}

			logger.Info(
				fmt.Sprintf("%s %-30s -> %3d (%s)",
					r.Method,
					r.URL.Path,
					rw.statusCode,
					duration.Truncate(time.Microsecond),
				),
				fields...,
			)
		})
	}
}
