package handler

import (
	"net/http"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	responder   *Responder
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, responder *Responder, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		responder:   responder,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a company
// @Description Creates a company together with its first user and returns a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "Company and user details"
// @Success 201 {object} domain.AuthResponse
// @Failure 400 {object} domain.Envelope
// @Failure 500 {object} domain.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.AuthResponse{Success: true, Token: result.Token, User: result.User})
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.AuthResponse
// @Failure 400 {object} domain.Envelope
// @Failure 401 {object} domain.Envelope "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.AuthResponse{Success: true, Token: result.Token, User: result.User})
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the signed-in user and the company they belong to
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthResponse
// @Failure 401 {object} domain.Envelope "Unauthorized"
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	user, err := h.authService.CurrentUser(r.Context(), userCtx.UserID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.AuthResponse{Success: true, User: user})
}
