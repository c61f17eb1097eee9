package logger_test

import (
	"github.com/maxkimambo/plz/internal/logger"
)

func Example_unifiedLogger() {
	log := logger.GetLogger()

	log.Info("Starting client")
	log.Error("Collector unreachable")

	// User-facing logs with emojis
	logger.User.Starting("Serving tasks")
	logger.User.Eventf("event %q fired", "order-placed")

	// Operational logs with fields
	logger.Op.WithFields(map[string]interface{}{
		"task": "charge",
		"step": "capture payment",
	}).Info("Step started")

	log.Info("Replaying ledger", logger.WithLogType(logger.UserLog), logger.WithEmoji("⏪"))
}
