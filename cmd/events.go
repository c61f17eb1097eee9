package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/plz/internal/client"
	"github.com/maxkimambo/plz/internal/example"
	"github.com/maxkimambo/plz/internal/logger"
	"github.com/maxkimambo/plz/internal/utils"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List registered events and the tasks bound to them",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	// Listing needs no collector identity.
	c, err := client.New(client.Options{ClientID: "local"}, nil)
	if err != nil {
		return err
	}
	if err := example.Register(c, example.Options{}); err != nil {
		return err
	}
	logger.User.Info(eventTable(c).String())
	return nil
}

func eventTable(c *client.Client) *utils.Table {
	reg := c.Registry()
	table := utils.NewTable("EVENT", "PAYLOAD", "TASKS")
	for _, event := range reg.EventNames() {
		payload := "any"
		if reg.Schema(event) != nil {
			payload = "validated"
		}
		tasks, _ := reg.TasksFor(event)
		table.AddRow(event, payload, strings.Join(tasks, ", "))
	}
	return table
}
