package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/plz/internal/client"
	"github.com/maxkimambo/plz/internal/config"
	"github.com/maxkimambo/plz/internal/example"
)

// loadConfig resolves the config file, then the environment, then any
// flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("client-id") {
		cfg.ClientID = clientID
	}
	if flags.Changed("remote-url") {
		cfg.RemoteURL = remoteURL
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	return cfg, nil
}

// newAppClient builds a client from the resolved config with the bundled
// application registered on it.
func newAppClient(cmd *cobra.Command) (*client.Client, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	c, err := cfg.NewClient()
	if err != nil {
		return nil, nil, err
	}
	if err := example.Register(c, example.Options{}); err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

// parsePayloadArg accepts a JSON document or nothing.
func parsePayloadArg(arg string) (interface{}, error) {
	if arg == "" {
		return nil, nil
	}
	if !json.Valid([]byte(arg)) {
		return nil, fmt.Errorf("payload is not valid JSON: %s", arg)
	}
	return json.RawMessage(arg), nil
}
