package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/patentworker/config"
	"sjsage522/patentworker/services/kiprisplus"
)

func TestNewDependenciesOptionalServices(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.MemcacheAddr = ""
	cfg.KiprisAPIKey = ""

	deps, err := NewDependencies(context.Background(), cfg, false)
	require.NoError(t, err)
	defer deps.Close()

	assert.NotNil(t, deps.Launcher)
	assert.Nil(t, deps.Cache)
	assert.Nil(t, deps.Publisher)
	assert.Nil(t, deps.Bibliography)
	assert.NotNil(t, deps.Pipeline(cfg))
}

func TestNewDependenciesBibliography(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.MemcacheAddr = ""
	cfg.KiprisAPIKey = "test-key"

	deps, err := NewDependencies(context.Background(), cfg, false)
	require.NoError(t, err)
	defer deps.Close()

	assert.IsType(t, &kiprisplus.Client{}, deps.Bibliography)
}

func TestNewDependenciesUnreachableMemcacheDisablesCache(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.MemcacheAddr = "127.0.0.1:1"

	deps, err := NewDependencies(context.Background(), cfg, false)
	require.NoError(t, err)
	defer deps.Close()

	assert.Nil(t, deps.Cache)
}

func TestNewDependenciesPublisherFailure(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.MemcacheAddr = ""
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := NewDependencies(context.Background(), cfg, true)
	require.Error(t, err)
}

func TestDependenciesCloseIsIdempotent(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.MemcacheAddr = ""

	deps, err := NewDependencies(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.NoError(t, deps.Close())
	assert.NoError(t, deps.Close())
}
