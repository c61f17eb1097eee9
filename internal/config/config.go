// Package config resolves client settings from a YAML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maxkimambo/plz/internal/client"
	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/transport"
)

const (
	EnvClientID  = "DO_IT_PLZ_CLIENT_ID"
	EnvRemoteURL = "DO_IT_PLZ_REMOTE_URL"

	DefaultListenAddr = ":3000"
)

// Retry mirrors transport.RetryPolicy with YAML-friendly durations.
type Retry struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
}

type Config struct {
	ClientID           string `yaml:"client_id"`
	ClientName         string `yaml:"client_name"`
	ClientVersion      string `yaml:"client_version"`
	RemoteURL          string `yaml:"remote_url"`
	ListenAddr         string `yaml:"listen_addr"`
	StrictRegistration bool   `yaml:"strict_registration"`
	DryRun             bool   `yaml:"dry_run"`
	Retry              Retry  `yaml:"retry"`
}

// Default returns a Config with every optional field filled in.
func Default() *Config {
	policy := transport.NewDefaultRetryPolicy()
	return &Config{
		ClientName:    client.DefaultClientName,
		ClientVersion: client.DefaultClientVersion,
		RemoteURL:     transport.DefaultRemoteURL,
		ListenAddr:    DefaultListenAddr,
		Retry: Retry{
			MaxAttempts:    policy.MaxAttempts,
			InitialBackoff: policy.InitialBackoff,
			MaxBackoff:     policy.MaxBackoff,
			BackoffFactor:  policy.BackoffFactor,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Merge decodes YAML data on top of the current values.
func (c *Config) Merge(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// ApplyEnv overrides the client id and remote URL from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(EnvRemoteURL); v != "" {
		c.RemoteURL = v
	}
}

func (c *Config) Validate() error {
	if c.ClientID == "" {
		return dipErrors.New(dipErrors.CodeBadRequest, "Client ID is required").
			WithContext("flag", "--client-id").
			WithContext("env", EnvClientID)
	}
	if c.Retry.MaxAttempts < 0 {
		return dipErrors.New(dipErrors.CodeBadRequest, "Retry attempts must be a positive number").
			WithContext("max_attempts", c.Retry.MaxAttempts)
	}
	if c.Retry.BackoffFactor != 0 && c.Retry.BackoffFactor < 1 {
		return dipErrors.New(dipErrors.CodeBadRequest, "Backoff factor must be at least 1").
			WithContext("backoff_factor", c.Retry.BackoffFactor)
	}
	return nil
}

func (c *Config) ClientOptions() client.Options {
	return client.Options{
		ClientID:           c.ClientID,
		ClientName:         c.ClientName,
		ClientVersion:      c.ClientVersion,
		StrictRegistration: c.StrictRegistration,
	}
}

func (c *Config) RetryPolicy() *transport.RetryPolicy {
	if c.Retry.MaxAttempts == 0 {
		return transport.NoRetryPolicy()
	}
	return &transport.RetryPolicy{
		MaxAttempts:    c.Retry.MaxAttempts,
		InitialBackoff: c.Retry.InitialBackoff,
		MaxBackoff:     c.Retry.MaxBackoff,
		BackoffFactor:  c.Retry.BackoffFactor,
	}
}

// Sender builds the collector transport. Dry runs never touch the network
// and echo what would have been sent.
func (c *Config) Sender() transport.Sender {
	if c.DryRun {
		return &transport.Recorder{Echo: true}
	}
	return transport.NewHTTPSender(c.RemoteURL, c.RetryPolicy())
}

// NewClient validates the config and builds a client wired to its sender.
func (c *Config) NewClient() (*client.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return client.New(c.ClientOptions(), c.Sender())
}
