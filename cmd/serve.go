package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/plz/internal/logger"
	"github.com/maxkimambo/plz/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve task calls and event fires over HTTP",
	Long: `Serve the registered tasks over HTTP until interrupted.

ROUTES:
  POST /api/plz/{task}      body {"payload": ..., "stack": [...]}
  POST /api/events/{event}  body is the event payload
  GET  /health

EXAMPLES:
  plz serve --client-id cattitude --listen :3000
  DO_IT_PLZ_CLIENT_ID=cattitude plz serve --dry-run`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (default :3000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, cfg, err := newAppClient(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = listenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Op.WithFields(map[string]interface{}{
		"client_id":  cfg.ClientID,
		"remote_url": cfg.RemoteURL,
		"dry_run":    cfg.DryRun,
	}).Info("Starting server")

	return server.New(c, server.Settings{Addr: cfg.ListenAddr}).Start(ctx)
}
