package handler

import (
	"net/http"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	responder   *Responder
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, responder *Responder, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		responder:   responder,
		logger:      logger,
	}
}

// GetProfile godoc
// @Summary Get profile
// @Tags Users
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.ProfileDTO}
// @Failure 401 {object} domain.Envelope
// @Security BearerAuth
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	profile, err := h.userService.GetProfile(r.Context(), userCtx.UserID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Changes the display name and, when the current password is supplied, the password
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} domain.Envelope{data=domain.ProfileDTO}
// @Failure 400 {object} domain.Envelope
// @Failure 401 {object} domain.Envelope
// @Security BearerAuth
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.UpdateProfileRequest
	if err := decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userCtx.UserID, &req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.logger.Info("profile updated", zap.String("user_id", userCtx.UserID.String()))
	respondData(w, http.StatusOK, profile)
}
