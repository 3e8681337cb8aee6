package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/cache"
	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/forecast"
	"github.com/garmentiq/revenue-forecast-api/internal/http/handler"
	"github.com/garmentiq/revenue-forecast-api/internal/http/middleware"
	"github.com/garmentiq/revenue-forecast-api/internal/http/router"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"github.com/garmentiq/revenue-forecast-api/internal/storage"
	"github.com/garmentiq/revenue-forecast-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	handler http.Handler
	db      *gorm.DB
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "test", Environment: "test"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Security:  config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
	}

	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	dataRepo := repository.NewRevenueDataRepository(db)
	forecastRepo := repository.NewForecastRepository(db)
	snapshotRepo := repository.NewEconomicSnapshotRepository(db)
	reportRepo := repository.NewReportRepository(db)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tokens := auth.NewTokenManager("router-test-secret", time.Hour, "test")
	economic := service.NewEconomicService(snapshotRepo, cache.NewNoopCache(), time.Minute, nil, log)
	economic.SetRandSource(rand.New(rand.NewSource(3)))

	responder := handler.NewResponder(log, false)
	rt := router.NewRouter(
		cfg,
		log,
		auth.NewMiddleware(tokens, userRepo, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handler.NewHealthHandler(db, nil, nil, log),
		handler.NewAuthHandler(service.NewAuthService(companyRepo, userRepo, tokens, log), responder, log),
		handler.NewUserHandler(service.NewUserService(userRepo, companyRepo, log), responder, log),
		handler.NewDataHandler(service.NewDataService(dataRepo, log), responder, log),
		handler.NewForecastHandler(service.NewForecastService(forecastRepo, dataRepo, snapshotRepo,
			forecast.NewProjector(rand.New(rand.NewSource(42))), log), responder, log),
		handler.NewEconomicHandler(economic, responder, log),
		handler.NewReportHandler(service.NewReportService(reportRepo, forecastRepo, store, log), responder, log),
	)

	return &testServer{handler: rt.Setup(), db: db, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

// register creates a company and returns the session token
func (s *testServer) register(t *testing.T, company, email string) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"companyName": company,
		"fullName":    "Nimal Perera",
		"email":       email,
		"password":    "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp domain.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type dataEnvelope[T any] struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func decodeAs[T any](t *testing.T, rr *httptest.ResponseRecorder) dataEnvelope[T] {
	t.Helper()
	var env dataEnvelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"companyName": "Lanka Threads",
		"fullName":    "Nimal Perera",
		"email":       "Nimal@LankaThreads.lk",
		"password":    "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var reg domain.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reg))
	assert.True(t, reg.Success)
	assert.Equal(t, "nimal@lankathreads.lk", reg.User.Email)
	assert.Equal(t, "Lanka Threads", reg.User.CompanyName)
	assert.Equal(t, domain.RoleUser, reg.User.Role)

	t.Run("duplicate email", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"companyName": "Other", "fullName": "X", "email": "nimal@lankathreads.lk", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "User with this email already exists", decodeAs[any](t, rr).Error)
	})

	t.Run("login", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "nimal@lankathreads.lk", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var resp domain.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, reg.User.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "nimal@lankathreads.lk", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		env := decodeAs[any](t, rr)
		assert.False(t, env.Success)
		assert.Equal(t, "Invalid credentials", env.Error)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "nobody@lankathreads.lk", "password": "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeAs[any](t, rr).Error)
	})

	t.Run("missing fields", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nimal@lankathreads.lk"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Please provide email and password", decodeAs[any](t, rr).Error)
	})

	t.Run("me", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/auth/me", reg.Token, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
		assert.NotContains(t, raw, "token")

		var resp domain.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, reg.User.ID, resp.User.ID)
		assert.Equal(t, reg.User.CompanyID, resp.User.CompanyID)
	})
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/data", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Not authorized to access this route", decodeAs[any](t, rr).Error)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/data", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		token := s.register(t, "Gone Ltd", "gone@gone.lk")
		require.NoError(t, s.db.Where("email = ?", "gone@gone.lk").Delete(&domain.User{}).Error)

		rr := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "User no longer exists", decodeAs[any](t, rr).Error)
	})

	t.Run("admin only route", func(t *testing.T) {
		token := s.register(t, "Plain Ltd", "plain@plain.lk")
		rr := s.do(t, http.MethodPost, "/api/economic/snapshots", token, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "User role user is not authorized to access this route", decodeAs[any](t, rr).Error)

		require.NoError(t, s.db.Model(&domain.User{}).Where("email = ?", "plain@plain.lk").
			Update("role", domain.RoleAdmin).Error)
		rr = s.do(t, http.MethodPost, "/api/economic/snapshots", token, nil)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, domain.SnapshotSourceScheduled, decodeAs[domain.EconomicSnapshot](t, rr).Data.Source)
	})
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/api/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "API route not found", decodeAs[any](t, rr).Error)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	rr = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var ready map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ready))
	assert.Equal(t, "healthy", ready["status"])

	rr = s.do(t, http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDataLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Colombo Knits", "owner@colombo.lk")
	other := s.register(t, "Kandy Weaves", "owner@kandy.lk")

	rr := s.do(t, http.MethodPost, "/api/data", token, map[string]interface{}{
		"date": "2025-03-01", "revenue": 120000, "expenses": 90000, "region": "Western",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeAs[domain.RevenueDataDTO](t, rr).Data
	assert.Equal(t, 30000.0, created.Profit)
	assert.Equal(t, "2025-03-01", created.Date.Format("2006-01-02"))

	t.Run("validation", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/data", token, map[string]interface{}{"revenue": 10})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Please provide date and revenue", decodeAs[any](t, rr).Error)

		rr = s.do(t, http.MethodPost, "/api/data", token, map[string]interface{}{"date": "2025-01-01", "revenue": -1})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Revenue cannot be negative", decodeAs[any](t, rr).Error)
	})

	t.Run("bulk", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/data/bulk", token, map[string]interface{}{
			"dataEntries": []map[string]interface{}{
				{"date": "2025-01-01", "revenue": 100000, "costs": 80000},
				{"date": "2025-02-01", "revenue": 110000, "costs": 85000},
			},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		env := decodeAs[any](t, rr)
		require.NotNil(t, env.Count)
		assert.Equal(t, 2, *env.Count)

		rr = s.do(t, http.MethodPost, "/api/data/bulk", token, map[string]interface{}{"dataEntries": []interface{}{}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid data format for bulk upload", decodeAs[any](t, rr).Error)

		for _, entries := range []interface{}{"x", 42, []interface{}{1, 2}} {
			rr = s.do(t, http.MethodPost, "/api/data/bulk", token, map[string]interface{}{"dataEntries": entries})
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "Invalid data format for bulk upload", decodeAs[any](t, rr).Error)
		}
	})

	t.Run("list is scoped and sorted", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/data", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeAs[[]domain.RevenueDataDTO](t, rr)
		require.NotNil(t, env.Count)
		assert.Equal(t, 3, *env.Count)
		assert.Equal(t, "2025-03-01", env.Data[0].Date.Format("2006-01-02"))

		rr = s.do(t, http.MethodGet, "/api/data", other, nil)
		assert.Equal(t, 0, *decodeAs[[]domain.RevenueDataDTO](t, rr).Count)
	})

	t.Run("list filters", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/data?startDate=2025-02-01&endDate=2025-02-28", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, *decodeAs[[]domain.RevenueDataDTO](t, rr).Count)

		rr = s.do(t, http.MethodGet, "/api/data?startDate=yesterday", token, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("summary", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/data/summary", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		summary := decodeAs[domain.RevenueSummaryDTO](t, rr).Data
		assert.Equal(t, int64(3), summary.Entries)
		assert.InDelta(t, 330000.0, summary.TotalRevenue, 0.001)
	})

	t.Run("cross company access", func(t *testing.T) {
		path := "/api/data/" + created.ID.String()
		rr := s.do(t, http.MethodGet, path, other, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Not authorized to access this data", decodeAs[any](t, rr).Error)

		rr = s.do(t, http.MethodPut, path, other, map[string]interface{}{"revenue": 1})
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Not authorized to update this data", decodeAs[any](t, rr).Error)

		rr = s.do(t, http.MethodDelete, path, other, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Not authorized to delete this data", decodeAs[any](t, rr).Error)
	})

	t.Run("update and delete", func(t *testing.T) {
		path := "/api/data/" + created.ID.String()
		rr := s.do(t, http.MethodPut, path, token, map[string]interface{}{"revenue": 150000})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 60000.0, decodeAs[domain.RevenueDataDTO](t, rr).Data.Profit)

		rr = s.do(t, http.MethodDelete, path, token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decodeAs[any](t, rr).Success)

		rr = s.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Data not found", decodeAs[any](t, rr).Error)
	})

	t.Run("bad id", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/data/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestForecastAndReport(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Galle Garments", "owner@galle.lk")
	other := s.register(t, "Jaffna Textiles", "owner@jaffna.lk")

	t.Run("not enough history", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/forecasts", token, map[string]interface{}{
			"forecastType": "short-term", "months": 3,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Not enough historical data to generate forecast. Please add more data points.",
			decodeAs[any](t, rr).Error)
	})

	entries := make([]map[string]interface{}, 0, 6)
	for i, rev := range []float64{100000, 104000, 99000, 108000, 112000, 115000} {
		entries = append(entries, map[string]interface{}{
			"date":    time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			"revenue": rev,
			"costs":   rev * 0.8,
		})
	}
	rr := s.do(t, http.MethodPost, "/api/data/bulk", token, map[string]interface{}{"dataEntries": entries})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/api/forecasts", token, map[string]interface{}{
		"forecastType": "medium-term", "months": 4, "includeEconomicIndicators": true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	fc := decodeAs[domain.ForecastDTO](t, rr).Data
	require.Len(t, fc.ForecastData, 4)
	assert.Equal(t, domain.ModelEnsemble, fc.ModelType)
	for _, p := range fc.ForecastData {
		assert.LessOrEqual(t, p.Revenue.LowerBound, p.Revenue.Predicted)
		assert.GreaterOrEqual(t, p.Revenue.UpperBound, p.Revenue.Predicted)
	}

	t.Run("forecast ownership", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/forecasts/"+fc.ID.String(), other, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = s.do(t, http.MethodGet, "/api/forecasts", other, nil)
		assert.Equal(t, 0, *decodeAs[[]domain.ForecastDTO](t, rr).Count)

		rr = s.do(t, http.MethodGet, "/api/forecasts", token, nil)
		assert.Equal(t, 1, *decodeAs[[]domain.ForecastDTO](t, rr).Count)
	})

	t.Run("report", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/reports", token, map[string]string{
			"forecastId": fc.ID.String(), "name": "q3-outlook.csv",
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		report := decodeAs[domain.ReportDTO](t, rr).Data

		rr = s.do(t, http.MethodGet, "/api/reports/"+report.ID.String()+"/download", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "q3-outlook.csv")
		assert.Contains(t, rr.Body.String(), "date,predicted,lowerBound,upperBound")

		rr = s.do(t, http.MethodGet, "/api/reports/"+report.ID.String()+"/download", other, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = s.do(t, http.MethodPost, "/api/reports", other, map[string]string{"forecastId": fc.ID.String()})
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = s.do(t, http.MethodPost, "/api/reports", token, map[string]string{"forecastId": "nope"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("delete forecast", func(t *testing.T) {
		rr := s.do(t, http.MethodDelete, "/api/forecasts/"+fc.ID.String(), other, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Not authorized to delete this forecast", decodeAs[any](t, rr).Error)

		rr = s.do(t, http.MethodDelete, "/api/forecasts/"+fc.ID.String(), token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = s.do(t, http.MethodGet, "/api/forecasts/"+fc.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestEconomicEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Negombo Denim", "owner@negombo.lk")

	for _, path := range []string{
		"/api/economic/live",
		"/api/economic/exchange-rates",
		"/api/economic/indicators",
		"/api/economic/industry-data",
		"/api/economic/supply-chain",
		"/api/economic/trade-policy",
		"/api/economic/weather",
		"/api/economic/weather/southern",
	} {
		t.Run(path, func(t *testing.T) {
			rr := s.do(t, http.MethodGet, path, token, nil)
			assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.True(t, decodeAs[any](t, rr).Success)
		})
	}

	t.Run("weather region", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/economic/weather?region=northern", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "northern", decodeAs[domain.WeatherPatterns](t, rr).Data.Region)
	})

	t.Run("historical", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/economic/historical", token, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Start date and end date are required", decodeAs[any](t, rr).Error)

		rr = s.do(t, http.MethodGet, "/api/economic/historical?startDate=2025-01-01&endDate=2025-03-02", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, decodeAs[[]domain.EconomicSnapshot](t, rr).Data)
	})

	t.Run("requires auth", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/api/economic/live", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Matara Mills", "owner@matara.lk")

	rr := s.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Matara Mills", decodeAs[domain.ProfileDTO](t, rr).Data.Company.Name)

	rr = s.do(t, http.MethodPut, "/api/users/profile", token, map[string]string{"fullName": "Kamal Silva"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Kamal Silva", decodeAs[domain.ProfileDTO](t, rr).Data.FullName)
}
