package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"go.uber.org/zap"
)

// Recovery converts panics into a 500 envelope. The stack is included in development.
func Recovery(logger *zap.Logger, development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// the server must still abort the response
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := string(debug.Stack())
				logger.Error("panic recovered",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(rec)),
					zap.String("stack", stack),
				)

				env := domain.Envelope{Success: false, Error: "Server Error"}
				if development {
					env.Stack = stack
				}
				writeEnvelope(w, http.StatusInternalServerError, env)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
