package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/plz/internal/client"
	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/logger"
	"github.com/maxkimambo/plz/internal/utils"
)

var (
	callPayload   string
	callStackFile string
	callOutFile   string
)

var callCmd = &cobra.Command{
	Use:   "call <task>",
	Short: "Run a task locally, optionally replaying a saved ledger",
	Long: `Run a registered task in this process.

With --stack the task replays a ledger saved by an earlier run: recorded
successes are returned without running their step again and recorded
failures are retried. With --out the final ledger is written back so the
next call can pick up where this one stopped.`,
	Example: `  plz call fetchCatFact --client-id cattitude --out run.json
  plz call fetchCatFact --stack run.json --out run.json
  plz call logCatFact --payload '{"fact":"Cats purr.","length":10}' --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVar(&callPayload, "payload", "", "Task payload as JSON")
	callCmd.Flags().StringVar(&callStackFile, "stack", "", "Ledger file to replay")
	callCmd.Flags().StringVar(&callOutFile, "out", "", "Write the final ledger to this file")
}

func runCall(cmd *cobra.Command, args []string) error {
	c, _, err := newAppClient(cmd)
	if err != nil {
		return err
	}

	payload, err := parsePayloadArg(callPayload)
	if err != nil {
		return err
	}

	var stack ledger.Stack
	if callStackFile != "" {
		stack, err = ledger.Load(callStackFile)
		if err != nil {
			return err
		}
		succeeded, failed := stack.Summary()
		logger.User.Replayf("Replaying %d step(s): %d succeeded, %d failed", len(stack), succeeded, failed)
	}

	inv, callErr := c.CallTask(cmd.Context(), args[0], payload, stack)
	if inv != nil && callOutFile != "" {
		if err := ledger.Save(callOutFile, inv.Stack); err != nil {
			return err
		}
		logger.Op.Infof("Ledger written to %s", callOutFile)
	}
	if callErr != nil {
		return callErr
	}

	return printInvocation(inv)
}

func printInvocation(inv *client.Invocation) error {
	out, err := json.MarshalIndent(inv.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	logger.User.Successf("Task %q finished with %d step(s)", inv.Task, len(inv.Stack))
	logger.User.Info(ledgerTable(inv.Stack).String())
	logger.User.Info(string(out))
	return nil
}

func ledgerTable(stack ledger.Stack) *utils.Table {
	table := utils.NewTable("STEP", "STATUS", "ATTEMPT", "ID")
	for _, item := range stack {
		attempt := "-"
		if !item.IsSuccess() {
			attempt = strconv.Itoa(item.AttemptCount())
		}
		table.AddRow(item.Name, string(item.Status), attempt, item.ID)
	}
	return table
}
