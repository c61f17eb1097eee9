package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/plz/internal/client"
	"github.com/maxkimambo/plz/internal/config"
	"github.com/maxkimambo/plz/internal/example"
	"github.com/maxkimambo/plz/internal/ledger"
)

func TestParsePayloadArg(t *testing.T) {
	payload, err := parsePayloadArg("")
	require.NoError(t, err)
	assert.Nil(t, payload)

	payload, err = parsePayloadArg(`{"fact":"x","length":1}`)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"fact":"x","length":1}`), payload)

	_, err = parsePayloadArg(`{"fact":`)
	assert.Error(t, err)
}

func TestEventTable(t *testing.T) {
	c, err := client.New(client.Options{ClientID: "local"}, nil)
	require.NoError(t, err)
	require.NoError(t, example.Register(c, example.Options{}))

	table := eventTable(c)
	assert.Equal(t, 2, table.Len())
	rendered := table.String()
	assert.Contains(t, rendered, "│ new cat fact     │ validated │ logCatFact   │")
	assert.Contains(t, rendered, "│ request cat fact │ any       │ fetchCatFact │")
}

func TestLedgerTable(t *testing.T) {
	stack := ledger.Stack{
		ledger.Success("plz-1", "fetch", json.RawMessage(`1`)),
		ledger.Failure("plz-2", "parse", 2, `"boom"`),
	}
	rendered := ledgerTable(stack).String()
	assert.Contains(t, rendered, "│ fetch │ success │ -       │ plz-1 │")
	assert.Contains(t, rendered, "│ parse │ error   │ 2       │ plz-2 │")
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"config", "client-id", "remote-url", "dry-run", "debug", "verbose", "json", "quiet"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}

	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"serve", "fire", "call", "events"} {
		assert.True(t, names[name], name)
	}
}

func TestCallCommand_SavesAndReplaysLedger(t *testing.T) {
	t.Setenv(config.EnvClientID, "")
	t.Setenv(config.EnvRemoteURL, "")
	out := filepath.Join(t.TempDir(), "run.json")
	payload := `{"fact":"Cats purr.","length":10}`

	rootCmd.SetArgs([]string{"call", "logCatFact", "--payload", payload, "--client-id", "cli-test", "--dry-run", "--quiet", "--out", out})
	require.NoError(t, rootCmd.Execute())

	first, err := ledger.Load(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"check cat fact length", "log cat fact", "count number of words"}, first.Names())

	rootCmd.SetArgs([]string{"call", "logCatFact", "--payload", payload, "--client-id", "cli-test", "--dry-run", "--quiet", "--stack", out, "--out", out})
	require.NoError(t, rootCmd.Execute())

	second, err := ledger.Load(out)
	require.NoError(t, err)
	assert.Equal(t, first, second, "a fully succeeded ledger replays without new writes")
}

func TestLoadConfig_FileEnvFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_id: from-file\nremote_url: http://file/api\n"), 0o600))
	t.Setenv(config.EnvClientID, "")
	t.Setenv(config.EnvRemoteURL, "http://env/api")

	cmd := &cobra.Command{Use: "plz-test"}
	previous := configPath
	configPath = path
	defer func() { configPath = previous }()

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ClientID)
	assert.Equal(t, "http://env/api", cfg.RemoteURL)
}
