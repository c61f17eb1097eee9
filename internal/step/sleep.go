package step

import (
	"context"

	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/logger"
)

// SleepOptions describes a requested pause. At least one field must be set.
type SleepOptions struct {
	Days    int `json:"days,omitempty"`
	Minutes int `json:"minutes,omitempty"`
}

// Sleep acknowledges a durable pause request. It is a placeholder for a
// future delay mechanism and returns immediately.
func (r *Run) Sleep(ctx context.Context, opts SleepOptions) error {
	if opts.Days <= 0 && opts.Minutes <= 0 {
		return dipErrors.New(dipErrors.CodeBadRequest, "Sleep requires days or minutes")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Op.WithFields(map[string]interface{}{
		"task":    r.Task,
		"days":    opts.Days,
		"minutes": opts.Minutes,
	}).Info("Sleep requested")
	return nil
}
