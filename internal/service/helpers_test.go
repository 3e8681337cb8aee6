package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/forecast"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"github.com/garmentiq/revenue-forecast-api/internal/storage"
	"github.com/garmentiq/revenue-forecast-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "service-test-secret"

// env wires every service against one in-memory database
type env struct {
	db       *gorm.DB
	tokens   *auth.TokenManager
	auth     *service.AuthService
	users    *service.UserService
	data     *service.DataService
	forecast *service.ForecastService
	economic *service.EconomicService
	reports  *service.ReportService
	cache    *memoryCache
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	dataRepo := repository.NewRevenueDataRepository(db)
	forecastRepo := repository.NewForecastRepository(db)
	snapshotRepo := repository.NewEconomicSnapshotRepository(db)
	reportRepo := repository.NewReportRepository(db)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tokens := auth.NewTokenManager(testSecret, time.Hour, "test")
	mc := newMemoryCache()

	economic := service.NewEconomicService(snapshotRepo, mc, time.Minute, nil, logger)
	economic.SetRandSource(rand.New(rand.NewSource(7)))

	return &env{
		db:       db,
		tokens:   tokens,
		auth:     service.NewAuthService(companyRepo, userRepo, tokens, logger),
		users:    service.NewUserService(userRepo, companyRepo, logger),
		data:     service.NewDataService(dataRepo, logger),
		forecast: service.NewForecastService(forecastRepo, dataRepo, snapshotRepo, forecast.NewProjector(rand.New(rand.NewSource(42))), logger),
		economic: economic,
		reports:  service.NewReportService(reportRepo, forecastRepo, store, logger),
		cache:    mc,
	}
}

func (e *env) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

// tenant is a company with one user
type tenant struct {
	company *domain.Company
	user    *domain.User
}

func (e *env) newTenant(t *testing.T, name, email string) tenant {
	t.Helper()
	company := testutil.CreateTestCompany(t, e.db, name)
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	user := testutil.CreateTestUser(t, e.db, company, email, hash)
	return tenant{company: company, user: user}
}

func requireKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "unexpected error: %v", err)
}

func ptr[T any](v T) *T {
	return &v
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// memoryCache is an in-process cache.Cache that counts hits
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	hits  map[string]int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}, hits: map[string]int{}}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	c.hits[key]++
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }
func (c *memoryCache) Close() error                   { return nil }

func (c *memoryCache) hitCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[key]
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
