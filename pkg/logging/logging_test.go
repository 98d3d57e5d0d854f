package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	f, logger, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	logger.WithField("service-id", "S1").Info("archived")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"service-id":"S1"`)
	require.Contains(t, string(data), `"msg":"archived"`)
}

func TestFileLogger_EmptyPathLogsToConsoleOnly(t *testing.T) {
	f, logger, err := FileLogger(logrus.DebugLevel, "")
	require.NoError(t, err)
	require.Nil(t, f)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
}
