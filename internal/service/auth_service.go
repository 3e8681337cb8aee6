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

const (
	msgRegisterRequired = "Please provide all required fields: company name, full name, email, and password"
	msgLoginRequired    = "Please provide email and password"
	msgDuplicateEmail   = "User with this email already exists"
	msgAccountIssue     = "User account issue. Please contact support."
	msgUserNotFound     = "User not found"
)

// AuthService handles registration, login and session lookups
type AuthService struct {
	companyRepo *repository.CompanyRepository
	userRepo    *repository.UserRepository
	tokens      *auth.TokenManager
	logger      *zap.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(
	companyRepo *repository.CompanyRepository,
	userRepo *repository.UserRepository,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		tokens:      tokens,
		logger:      logger,
	}
}

// Register creates a company and its first user, then issues a token.
// If the user cannot be created the company is removed again.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResult, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		s.logger.Warn("registration rejected, email in use", zap.String("email", email))
		return nil, domain.NewDuplicateError(msgDuplicateEmail)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	company := &domain.Company{
		Name:     strings.TrimSpace(req.CompanyName),
		Industry: domain.Industry(req.Industry),
		Size:     domain.CompanySize(req.CompanySize),
		Address:  mapper.FromAddressDTO(req.Address),
		Phone:    req.Phone,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	s.logger.Info("company created", zap.String("company_id", company.ID.String()))

	user := &domain.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hash,
		CompanyID:    company.ID,
		Role:         domain.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.removeOrphanCompany(ctx, company.ID)
		if isUniqueViolation(err) {
			return nil, domain.NewDuplicateError(msgDuplicateEmail)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("registration completed",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", company.ID.String()),
	)

	return &domain.AuthResult{Token: token, User: mapper.ToUserSummary(user, company)}, nil
}

// removeOrphanCompany is best effort: failures are logged, never returned
func (s *AuthService) removeOrphanCompany(ctx context.Context, companyID uuid.UUID) {
	s.logger.Info("removing company after failed user creation", zap.String("company_id", companyID.String()))
	if err := s.companyRepo.Delete(ctx, companyID); err != nil {
		s.logger.Error("failed to remove orphaned company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	}
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.NewValidationError(msgLoginRequired)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.logger.Warn("login failed, unknown email", zap.String("email", domain.NormalizeEmail(email)))
			return nil, domain.NewInvalidCredentialsError()
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.Warn("login failed, wrong password", zap.String("user_id", user.ID.String()))
		return nil, domain.NewInvalidCredentialsError()
	}

	company, err := s.loadCompany(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("login successful", zap.String("user_id", user.ID.String()))
	return &domain.AuthResult{Token: token, User: mapper.ToUserSummary(user, company)}, nil
}

// CurrentUser returns the summary for an authenticated user
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFoundError(msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	company, err := s.loadCompany(ctx, user)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserSummary(user, company), nil
}

// loadCompany fetches the user's company. A missing company is an integrity failure.
func (s *AuthService) loadCompany(ctx context.Context, user *domain.User) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		if isNotFound(err) {
			s.logger.Error("user references missing company",
				zap.String("user_id", user.ID.String()),
				zap.String("company_id", user.CompanyID.String()),
			)
			return nil, domain.NewIntegrityError(msgAccountIssue, err)
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	return company, nil
}

func validateRegistration(req *domain.RegisterRequest) error {
	if strings.TrimSpace(req.CompanyName) == "" || strings.TrimSpace(req.FullName) == "" ||
		strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return domain.NewValidationError(msgRegisterRequired)
	}

	fields := map[string]string{}
	if !domain.IsValidEmail(domain.NormalizeEmail(req.Email)) {
		fields["email"] = "Please provide a valid email"
	}
	if len(req.Password) < domain.MinPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", domain.MinPasswordLength)
	}
	if req.Industry != "" && !domain.Industry(req.Industry).IsValid() {
		fields["industry"] = domain.GetValidationMessage("industry")
	}
	if req.CompanySize != "" && !domain.CompanySize(req.CompanySize).IsValid() {
		fields["companySize"] = "Must be one of: small, medium, large"
	}
	if len(fields) > 0 {
		return domain.NewFieldValidationError(validationSummary(fields), fields)
	}
	return nil
}

// validationSummary joins field messages into one line, in a stable order
func validationSummary(fields map[string]string) string {
	order := []string{"companyName", "fullName", "email", "password", "industry", "companySize", "revenue", "costs", "date", "months", "forecastType"}
	parts := make([]string, 0, len(fields))
	for _, f := range order {
		if msg, ok := fields[f]; ok {
			parts = append(parts, msg)
		}
	}
	return "Validation Error: " + strings.Join(parts, ", ")
}
