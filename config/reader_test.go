package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigParsesDurations(t *testing.T) {
	path := writeConfigFile(t, `
databases:
  master:
    host: localhost
    port: 5432
    name: creatorhub
    user: app
    password: secret
feed:
  staleness_threshold: 30m
  refresh_wait_timeout: 5s
  connector_timeout: 2s
  default_page_size: 25
`)
	require.NoError(t, LoadConfig(path))

	require.Equal(t, "localhost", AppConfig.Databases.Master.Host)
	require.Equal(t, 30*time.Minute, AppConfig.Feed.StalenessThreshold.Std())
	require.Equal(t, 5*time.Second, AppConfig.Feed.RefreshWaitTimeout.Std())
	require.Equal(t, 2*time.Second, AppConfig.Feed.ConnectorTimeout.Std())
	require.Equal(t, 25, AppConfig.Feed.DefaultPageSize)
	// Незаданные поля получают значения по умолчанию
	require.Equal(t, 100, AppConfig.Feed.MaxPageSize)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
databases:
  master:
    host: localhost
`)
	require.NoError(t, LoadConfig(path))

	require.Equal(t, time.Hour, AppConfig.Feed.StalenessThreshold.Std())
	require.Equal(t, 10*time.Second, AppConfig.Feed.RefreshWaitTimeout.Std())
	require.Equal(t, 15*time.Second, AppConfig.Feed.ConnectorTimeout.Std())
	require.Equal(t, 10, AppConfig.Feed.DefaultPageSize)
	require.Equal(t, "creator economy", AppConfig.Sources.Twitter.Query)
	require.Equal(t, "CreatorEconomy", AppConfig.Sources.Reddit.Subreddit)
	require.Equal(t, 10, AppConfig.Sources.Reddit.Limit)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfigFile(t, `
feed:
  staleness_threshold: not-a-duration
`)
	require.Error(t, LoadConfig(path))
}

func TestLoadConfigMissingFile(t *testing.T) {
	require.Error(t, LoadConfig("/nonexistent/config.yaml"))
}
