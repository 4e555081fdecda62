package aura

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfgitn4j/auractl/internal/models"
)

// Instance status values and lifecycle actions of the Aura API.
// Transitional statuses (pausing, resuming, loading, ...) exist but only
// the two steady states are valid transition targets.
const (
	StatusRunning = "running"
	StatusPaused  = "paused"

	ActionPause  = "pause"
	ActionResume = "resume"
)

// DefaultPollInterval is the delay between status polls while waiting
// for a transition to complete.
const DefaultPollInterval = 5 * time.Second

// ErrInvalidTransition is returned for state pairs other than
// paused->running and running->paused.
var ErrInvalidTransition = errors.New("can only change instance state from 'running' to 'paused', or 'paused' to 'running'")

// WaitOptions controls the polling loop of RequestStateChange.
type WaitOptions struct {
	// Interval between status polls. Zero means DefaultPollInterval.
	Interval time.Duration

	// Timeout bounds the whole wait. Zero means wait forever.
	Timeout time.Duration

	// OnPoll, if set, is called with the reported status after each poll.
	OnPoll func(status string)
}

// TransitionResult reports the outcome of a state-change request.
type TransitionResult struct {
	// Changed is false when the instance was already at the target
	// status and no action was issued.
	Changed bool

	// Elapsed is the wall-clock time from issuing the action until the
	// target status was observed. Zero when Changed is false.
	Elapsed time.Duration
}

// actionFor maps a current/target status pair to the lifecycle action
// that performs it.
func actionFor(current, target string) (string, error) {
	switch {
	case target == StatusRunning && current == StatusPaused:
		return ActionResume, nil
	case target == StatusPaused && current == StatusRunning:
		return ActionPause, nil
	default:
		return "", ErrInvalidTransition
	}
}

// RequestStateChange drives an instance to the target status.
//
// The current status is refreshed first. If it already equals target,
// nothing is posted. For paused->running and running->paused exactly one
// action is posted, then the status is polled at the configured interval
// until it equals target. Any other pair returns ErrInvalidTransition.
//
// There is no check for queries still running on the instance before a
// pause; callers must quiesce their own workload first.
func (c *Client) RequestStateChange(ctx context.Context, info *models.InstanceInfo, target string, opts WaitOptions) (*TransitionResult, error) {
	if target != StatusRunning && target != StatusPaused {
		return nil, ErrInvalidTransition
	}

	if err := c.RefreshStatus(ctx, info); err != nil {
		return nil, err
	}

	if info.Status == target {
		return &TransitionResult{Changed: false}, nil
	}

	action, err := actionFor(info.Status, target)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := c.PostAction(ctx, info.ID, action); err != nil {
		return nil, err
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for info.Status != target {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for instance %s to become '%s' (last status '%s'): %w",
				info.ID, target, info.Status, ctx.Err())
		case <-ticker.C:
		}

		if err := c.RefreshStatus(ctx, info); err != nil {
			return nil, err
		}
		if opts.OnPoll != nil {
			opts.OnPoll(info.Status)
		}
	}

	return &TransitionResult{Changed: true, Elapsed: time.Since(start)}, nil
}
