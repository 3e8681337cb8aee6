package service_test

import (
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededForecast(t *testing.T, e *env, tn tenant, months int) *domain.ForecastDTO {
	t.Helper()
	testutil.CreateRevenueSeries(t, e.db, tn.company.ID, tn.user.ID, month(2024, time.January), 1000, 1100, 1200, 1250)
	f, err := e.forecast.Generate(context.Background(), tn.company.ID, tn.user.ID, forecastRequest(months))
	require.NoError(t, err)
	return f
}

func TestReportService_GenerateAndDownload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tn := e.newTenant(t, "Report Co", "report@reports.lk")
	f := seededForecast(t, e, tn, 3)

	report, err := e.reports.Generate(ctx, tn.company.ID, tn.user.ID, &domain.GenerateReportRequest{
		ForecastID: f.ID.String(),
		Name:       "Q3 outlook",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q3 outlook", report.Name)
	assert.Equal(t, domain.ReportFormatCSV, report.Format)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.Equal(t, f.ID, report.ForecastID)
	assert.Positive(t, report.SizeBytes)

	rc, meta, err := e.reports.Download(ctx, tn.company.ID, report.ID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, report.ID, meta.ID)

	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, report.SizeBytes, int64(len(raw)))

	rows, err := csv.NewReader(bytesReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"date", "predicted", "lowerBound", "upperBound"}, rows[0])
	assert.Equal(t, f.ForecastData[0].Date.UTC().Format(time.DateOnly), rows[1][0])
}

func TestReportService_DefaultName(t *testing.T) {
	e := newEnv(t)
	tn := e.newTenant(t, "Report Co", "name@reports.lk")
	f := seededForecast(t, e, tn, 1)

	report, err := e.reports.Generate(context.Background(), tn.company.ID, tn.user.ID, &domain.GenerateReportRequest{ForecastID: f.ID.String()})
	require.NoError(t, err)
	assert.Contains(t, report.Name, "forecast-short-term-")
}

func TestReportService_Generate_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newTenant(t, "Owner", "owner@reports.lk")
	other := e.newTenant(t, "Other", "other@reports.lk")
	f := seededForecast(t, e, owner, 2)

	_, err := e.reports.Generate(ctx, other.company.ID, other.user.ID, &domain.GenerateReportRequest{ForecastID: f.ID.String()})
	requireKind(t, err, domain.KindForbidden)

	_, err = e.reports.Generate(ctx, owner.company.ID, owner.user.ID, &domain.GenerateReportRequest{ForecastID: uuid.NewString()})
	requireKind(t, err, domain.KindNotFound)

	_, err = e.reports.Generate(ctx, owner.company.ID, owner.user.ID, &domain.GenerateReportRequest{ForecastID: "nope"})
	requireKind(t, err, domain.KindValidation)

	assert.Equal(t, int64(0), e.count(t, &domain.Report{}))
}

func TestReportService_CrossCompanyAccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newTenant(t, "Owner", "owner2@reports.lk")
	other := e.newTenant(t, "Other", "other2@reports.lk")
	f := seededForecast(t, e, owner, 2)

	report, err := e.reports.Generate(ctx, owner.company.ID, owner.user.ID, &domain.GenerateReportRequest{ForecastID: f.ID.String()})
	require.NoError(t, err)

	_, err = e.reports.GetByID(ctx, other.company.ID, report.ID)
	requireKind(t, err, domain.KindForbidden)
	assert.Equal(t, "Not authorized to access this report", err.Error())

	_, _, err = e.reports.Download(ctx, other.company.ID, report.ID)
	requireKind(t, err, domain.KindForbidden)

	err = e.reports.Delete(ctx, other.company.ID, report.ID)
	requireKind(t, err, domain.KindForbidden)

	list, err := e.reports.List(ctx, other.company.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = e.reports.List(ctx, owner.company.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReportService_Delete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tn := e.newTenant(t, "Owner", "delete@reports.lk")
	f := seededForecast(t, e, tn, 2)

	report, err := e.reports.Generate(ctx, tn.company.ID, tn.user.ID, &domain.GenerateReportRequest{ForecastID: f.ID.String()})
	require.NoError(t, err)

	require.NoError(t, e.reports.Delete(ctx, tn.company.ID, report.ID))

	_, err = e.reports.GetByID(ctx, tn.company.ID, report.ID)
	requireKind(t, err, domain.KindNotFound)
	assert.Equal(t, "Report not found", err.Error())
}
