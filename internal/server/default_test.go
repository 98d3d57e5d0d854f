package server

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/pkg/configuration"
)

func TestRateLimitStore_MemoryByDefault(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := rateLimitStore(configuration.RateLimitOptions{Storage: "memory"}, logger)
	require.NotNil(t, store)
	require.Empty(t, hook.AllEntries())
}

func TestRateLimitStore_BadRedisURLFallsBackToMemory(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := rateLimitStore(configuration.RateLimitOptions{Storage: "redis", RedisURL: "not a redis url"}, logger)
	require.NotNil(t, store)

	last := hook.LastEntry()
	require.NotNil(t, last)
	require.Equal(t, logrus.WarnLevel, last.Level)
	require.Equal(t, "redis", last.Data["storage"])
}
