package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/plz/internal/logger"
)

var fireCmd = &cobra.Command{
	Use:   "fire <event> [payload-json]",
	Short: "Fire an event to the collector",
	Example: `  plz fire "request cat fact" --client-id cattitude
  plz fire "new cat fact" '{"fact":"Cats purr.","length":10}' --dry-run`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFire,
}

func runFire(cmd *cobra.Command, args []string) error {
	c, _, err := newAppClient(cmd)
	if err != nil {
		return err
	}

	var raw string
	if len(args) > 1 {
		raw = args[1]
	}
	payload, err := parsePayloadArg(raw)
	if err != nil {
		return err
	}

	if err := c.FireEvent(cmd.Context(), args[0], payload); err != nil {
		return err
	}
	logger.User.Successf("Event %q fired", args[0])
	return nil
}
