package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgNotAuthorized = "Not authorized to access this route"
	msgUserGone      = "User no longer exists"
)

// UserLookup loads the user a token was issued for
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens *TokenManager
	users  UserLookup
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(tokens *TokenManager, users UserLookup, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Authenticate requires a valid Bearer token and puts the caller's UserContext on the request
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, msgNotAuthorized)
			return
		}

		userID, err := m.tokens.Parse(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, msgNotAuthorized)
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				m.logger.Warn("token for deleted user",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusUnauthorized, msgUserGone)
				return
			}
			m.logger.Error("failed to load user for token",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "Server Error")
			return
		}

		userCtx := &UserContext{
			UserID:    user.ID,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Role,
			CompanyID: user.CompanyID,
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("company_id", userCtx.CompanyID.String()),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireRole middleware ensures user has one of the given roles
func (m *Middleware) RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}
			if !userCtx.HasRole(roles...) {
				writeError(w, http.StatusForbidden,
					fmt.Sprintf("User role %s is not authorized to access this route", userCtx.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.Envelope{Success: false, Error: message})
}
