package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func registration(email string) *domain.RegisterRequest {
	return &domain.RegisterRequest{
		CompanyName: "Lanka Apparel",
		FullName:    "Kamala Silva",
		Email:       email,
		Password:    "secret123",
	}
}

func TestAuthService_Register(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	result, err := e.auth.Register(ctx, registration("Kamala@LankaApparel.lk"))
	require.NoError(t, err)
	require.NotNil(t, result.User)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "kamala@lankaapparel.lk", result.User.Email)
	assert.Equal(t, "Lanka Apparel", result.User.CompanyName)
	assert.Equal(t, domain.RoleUser, result.User.Role)

	userID, err := e.tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)

	var company domain.Company
	require.NoError(t, e.db.First(&company, "id = ?", result.User.CompanyID).Error)
	assert.Equal(t, domain.IndustryApparelManufacturing, company.Industry)
	assert.Equal(t, domain.CompanySizeSmall, company.Size)
	assert.Equal(t, domain.DefaultCountry, company.Address.Country)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, registration("owner@threads.lk"))
	require.NoError(t, err)

	_, err = e.auth.Register(ctx, registration("OWNER@threads.lk"))
	requireKind(t, err, domain.KindDuplicate)
	assert.Equal(t, "User with this email already exists", err.Error())

	assert.Equal(t, int64(1), e.count(t, &domain.User{}))
	assert.Equal(t, int64(1), e.count(t, &domain.Company{}))
}

func TestAuthService_Register_RemovesCompanyWhenUserFails(t *testing.T) {
	e := newEnv(t)

	boom := errors.New("users table unavailable")
	require.NoError(t, e.db.Callback().Create().Before("gorm:create").Register("test:fail_users", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := e.auth.Register(context.Background(), registration("first@mill.lk"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, int64(0), e.count(t, &domain.Company{}))
	assert.Equal(t, int64(0), e.count(t, &domain.User{}))
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.RegisterRequest)
		message string
	}{
		{
			name:    "missing company name",
			mutate:  func(r *domain.RegisterRequest) { r.CompanyName = "" },
			message: "Please provide all required fields: company name, full name, email, and password",
		},
		{
			name:    "missing password",
			mutate:  func(r *domain.RegisterRequest) { r.Password = "" },
			message: "Please provide all required fields: company name, full name, email, and password",
		},
		{
			name:    "bad email",
			mutate:  func(r *domain.RegisterRequest) { r.Email = "not-an-email" },
			message: "Validation Error: Please provide a valid email",
		},
		{
			name:    "short password",
			mutate:  func(r *domain.RegisterRequest) { r.Password = "abc" },
			message: "Validation Error: Password must be at least 6 characters",
		},
		{
			name:    "unknown industry",
			mutate:  func(r *domain.RegisterRequest) { r.Industry = "mining" },
			message: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			req := registration("valid@mill.lk")
			tt.mutate(req)

			_, err := e.auth.Register(context.Background(), req)
			requireKind(t, err, domain.KindValidation)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
			assert.Equal(t, int64(0), e.count(t, &domain.Company{}))
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tn := e.newTenant(t, "Galle Garments", "login@galle.lk")

	t.Run("success", func(t *testing.T) {
		result, err := e.auth.Login(ctx, "LOGIN@galle.lk", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, tn.user.ID, result.User.ID)
		assert.Equal(t, "Galle Garments", result.User.CompanyName)
	})

	t.Run("wrong password", func(t *testing.T) {
		result, err := e.auth.Login(ctx, "login@galle.lk", "nope12345")
		requireKind(t, err, domain.KindInvalidCredentials)
		assert.Equal(t, "Invalid credentials", err.Error())
		assert.Nil(t, result)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := e.auth.Login(ctx, "ghost@galle.lk", "secret123")
		requireKind(t, err, domain.KindInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := e.auth.Login(ctx, "", "secret123")
		requireKind(t, err, domain.KindValidation)
		assert.Equal(t, "Please provide email and password", err.Error())
	})
}

func TestAuthService_Login_MissingCompany(t *testing.T) {
	e := newEnv(t)
	tn := e.newTenant(t, "Vanished Ltd", "orphan@vanished.lk")
	require.NoError(t, e.db.Delete(&domain.Company{}, "id = ?", tn.company.ID).Error)

	_, err := e.auth.Login(context.Background(), "orphan@vanished.lk", "secret123")
	requireKind(t, err, domain.KindIntegrity)
}

func TestAuthService_CurrentUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tn := e.newTenant(t, "Kandy Knits", "me@kandy.lk")

	summary, err := e.auth.CurrentUser(ctx, tn.user.ID)
	require.NoError(t, err)
	assert.Equal(t, tn.company.ID, summary.CompanyID)
	assert.Equal(t, "Kandy Knits", summary.CompanyName)

	require.NoError(t, e.db.Delete(&domain.User{}, "id = ?", tn.user.ID).Error)
	_, err = e.auth.CurrentUser(ctx, tn.user.ID)
	requireKind(t, err, domain.KindNotFound)
	assert.Equal(t, "User not found", err.Error())
}
