package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvRemoteURL, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, transport.DefaultRemoteURL, cfg.RemoteURL)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Empty(t, cfg.ClientID)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
client_id: from-file
remote_url: http://file.example/api
strict_registration: true
retry:
  max_attempts: 5
  initial_backoff: 50ms
  max_backoff: 2s
  backoff_factor: 1.5
`)
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvRemoteURL, "http://env.example/api")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ClientID)
	assert.Equal(t, "http://env.example/api", cfg.RemoteURL)
	assert.True(t, cfg.StrictRegistration)
	assert.Equal(t, Retry{
		MaxAttempts:    5,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  1.5,
	}, cfg.Retry)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)

	t.Setenv(EnvClientID, "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ClientID)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "client_id: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, dipErrors.IsCode(err, dipErrors.CodeBadRequest))

	cfg.ClientID = "abc"
	assert.NoError(t, cfg.Validate())

	cfg.Retry.BackoffFactor = 0.5
	assert.Error(t, cfg.Validate())

	cfg.Retry.BackoffFactor = 2
	cfg.Retry.MaxAttempts = -1
	assert.Error(t, cfg.Validate())
}

func TestRetryPolicy(t *testing.T) {
	cfg := Default()
	assert.Equal(t, transport.NewDefaultRetryPolicy(), cfg.RetryPolicy())

	cfg.Retry.MaxAttempts = 0
	assert.Equal(t, 1, cfg.RetryPolicy().MaxAttempts)
}

func TestNewClient(t *testing.T) {
	cfg := Default()
	_, err := cfg.NewClient()
	require.Error(t, err)

	cfg.ClientID = "abc"
	cfg.ClientName = "shop"
	cfg.DryRun = true
	c, err := cfg.NewClient()
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Metadata().ClientID)
	assert.Equal(t, "shop", c.Metadata().ClientName)

	assert.IsType(t, &transport.Recorder{}, cfg.Sender())
	cfg.DryRun = false
	assert.IsType(t, &transport.HTTPSender{}, cfg.Sender())
}
