package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/mapper"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages the signed-in user's profile
type UserService struct {
	userRepo    *repository.UserRepository
	companyRepo *repository.CompanyRepository
	logger      *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, companyRepo *repository.CompanyRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// GetProfile returns the user with their company details
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.ProfileDTO, error) {
	user, company, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProfileDTO(user, company)
	return &dto, nil
}

// UpdateProfile changes the full name and/or password. A new password needs the current one.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *domain.UpdateProfileRequest) (*domain.ProfileDTO, error) {
	user, company, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, domain.NewFieldValidationError("Full name cannot be empty", map[string]string{"fullName": "This field is required"})
		}
		user.FullName = name
	}

	if req.NewPassword != "" {
		if len(req.NewPassword) < domain.MinPasswordLength {
			return nil, domain.NewFieldValidationError(
				fmt.Sprintf("Password must be at least %d characters", domain.MinPasswordLength),
				map[string]string{"newPassword": "Below minimum length"},
			)
		}
		if req.CurrentPassword == "" {
			return nil, domain.NewValidationError("Current password is required to set a new password")
		}
		ok, err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to verify password: %w", err)
		}
		if !ok {
			return nil, domain.NewInvalidCredentialsError()
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated",
		zap.String("user_id", user.ID.String()),
		zap.Bool("password_changed", req.NewPassword != ""),
	)

	// reload for the fresh updated_at
	user, err = s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	dto := mapper.ToProfileDTO(user, company)
	return &dto, nil
}

func (s *UserService) load(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Company, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, domain.NewNotFoundError(msgUserNotFound)
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	company, err := s.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, domain.NewIntegrityError(msgAccountIssue, err)
		}
		return nil, nil, fmt.Errorf("failed to load company: %w", err)
	}
	return user, company, nil
}
