package step

import (
	"context"
	"encoding/json"
	"fmt"

	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/logger"
)

// WorkFunc is a unit of work wrapped by a step.
type WorkFunc func(ctx context.Context) (interface{}, error)

// Options tunes a single step.
type Options struct {
	Retries int
}

// Option mutates Options.
type Option func(*Options)

// WithRetries sets the retry ceiling for the step.
func WithRetries(n int) Option {
	return func(o *Options) {
		o.Retries = n
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Retries: DefaultRetries}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PanicError carries a value recovered from a panicking step.
type PanicError struct {
	Value interface{}
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("step panicked: %v", p.Value)
}

// Plz runs work as the step called name.
//
// A step already recorded as succeeded returns its recorded result and work
// is not called. A step recorded as failed is retried with attempt
// previous+1 unless that reaches the retry ceiling, in which case
// TOO_MANY_ATTEMPTS is returned without calling work. The outcome of work is
// merged into the ledger and the whole ledger is forwarded before Plz
// returns; a failing work's error is returned unchanged.
func (r *Run) Plz(ctx context.Context, name string, work WorkFunc, opts ...Option) (json.RawMessage, error) {
	options := buildOptions(opts)

	previous, found := r.lookup(name)
	if found && previous.IsSuccess() {
		logger.Op.Debugf("Step %q already succeeded, skipping", name)
		return previous.Result, nil
	}

	attempt, err := nextAttempt(name, previous, found, options.Retries)
	if err != nil {
		return nil, err
	}

	logger.Op.WithFields(map[string]interface{}{
		"task":    r.Task,
		"step":    name,
		"attempt": attempt,
		"retries": options.Retries,
	}).Debug("Step started")

	result, workErr := invoke(ctx, work)
	if workErr == nil {
		encoded, encErr := json.Marshal(result)
		if encErr != nil {
			workErr = fmt.Errorf("step %q returned a result that cannot be encoded: %w", name, encErr)
		} else {
			r.record(ctx, ledger.Success(r.newID(), name, encoded))
			logger.Op.Debugf("Step %q succeeded", name)
			return encoded, nil
		}
	}

	var serialized string
	if p, ok := workErr.(*PanicError); ok {
		serialized = dipErrors.Serialize(p.Value)
	} else {
		serialized = dipErrors.Serialize(workErr)
	}
	r.record(ctx, ledger.Failure(r.newID(), name, attempt, serialized))
	logger.Op.WithFields(map[string]interface{}{
		"task":    r.Task,
		"step":    name,
		"attempt": attempt,
	}).Warnf("Step failed: %v", workErr)
	return nil, workErr
}

// nextAttempt applies the attempt and retry checks for a step that has not
// succeeded yet.
func nextAttempt(name string, previous ledger.StepItem, found bool, retries int) (int, error) {
	if found && previous.AttemptCount() < 0 {
		return 0, dipErrors.New(dipErrors.CodeBadRequest, "Attempt must be a positive number").
			WithContext("step", name)
	}
	if retries < 0 {
		return 0, dipErrors.New(dipErrors.CodeBadRequest, "Retries must be a positive number").
			WithContext("step", name)
	}

	attempt := 0
	if found {
		attempt = previous.AttemptCount() + 1
	}
	if attempt != 0 && attempt >= retries {
		return attempt, dipErrors.NewTooManyAttemptsError(name, attempt, retries)
	}
	return attempt, nil
}

func invoke(ctx context.Context, work WorkFunc) (result interface{}, err error) {
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(error); ok {
				err = e
				return
			}
			err = &PanicError{Value: v}
		}
	}()
	return work(ctx)
}

// Step is the typed form of Run.Plz: work's result is recorded as JSON and
// a memoized result is decoded back into T.
func Step[T any](ctx context.Context, r *Run, name string, work func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var zero T
	raw, err := r.Plz(ctx, name, func(ctx context.Context) (interface{}, error) {
		return work(ctx)
	}, opts...)
	if err != nil {
		return zero, err
	}
	var out T
	if len(raw) == 0 {
		return zero, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("failed to decode result of step %q: %w", name, err)
	}
	return out, nil
}

// Do is Step for work that produces no result.
func Do(ctx context.Context, r *Run, name string, work func(ctx context.Context) error, opts ...Option) error {
	_, err := r.Plz(ctx, name, func(ctx context.Context) (interface{}, error) {
		return nil, work(ctx)
	}, opts...)
	return err
}
