package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/garmentiq/revenue-forecast-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, size, err := s.Upload(ctx, "reports/acme", "Forecast.CSV", "text/csv", strings.NewReader("date,predicted\n"))
	require.NoError(t, err)
	assert.EqualValues(t, 15, size)
	assert.True(t, strings.HasPrefix(path, "reports/acme/"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "date,predicted\n", string(body))

	require.NoError(t, s.Delete(ctx, path))
	require.NoError(t, s.Delete(ctx, path), "deleting twice is fine")

	_, err = s.Download(ctx, path)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalStorage_PathsStayInsideRoot(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, _, err := s.Upload(ctx, "../../etc", "x.csv", "text/csv", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "etc/"))

	_, err = s.Download(ctx, "../../../etc/passwd")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Download(ctx, "")
	assert.Error(t, err)
}

func TestNewStorage_Modes(t *testing.T) {
	ctx := context.Background()

	s, err := storage.NewStorage(ctx, &config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	_, err = storage.NewStorage(ctx, &config.StorageConfig{Mode: "azure"}, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewStorage(ctx, &config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
