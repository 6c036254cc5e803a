// Package assistant drives the provider's asynchronous thread/run execution
// model: post a message, start a run, poll the run to a terminal state, then
// extract the structured answer from the thread's messages.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brightpath/oneliners/internal/openai"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 20
)

// Sentinel outcomes of a poll that are not provider-reported run states.
var (
	// ErrTimedOut means the run did not reach a terminal state within the
	// attempt cap.
	ErrTimedOut = errors.New("run did not complete in expected time")
	// ErrRunFailed means the provider reported a terminal failure state.
	ErrRunFailed = errors.New("run failed or was cancelled")
	// ErrUnhandledAction means the run requires an action type this service
	// does not service.
	ErrUnhandledAction = errors.New("unhandled requires_action type")
	// ErrInvalidStatus means a well-formed run response carried no status.
	ErrInvalidStatus = errors.New("run response missing status")
)

// RunClient is the subset of the provider client the poller needs.
type RunClient interface {
	GetRun(ctx context.Context, threadID, runID string) (openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) error
	CancelRun(ctx context.Context, threadID, runID string) error
}

// Poller repeatedly checks a run's status until it reaches a terminal state.
// Interval and attempt cap are fixed per instance; sleep is injectable so
// tests can run against a fake clock.
type Poller struct {
	runs        RunClient
	interval    time.Duration
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *slog.Logger
}

// NewPoller creates a Poller with the default 5s interval and 20-attempt cap.
func NewPoller(runs RunClient) *Poller {
	return &Poller{
		runs:        runs,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepCtx,
		logger:      slog.Default(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Wait polls the run until it completes, returning nil on completion. On
// completion a best-effort cancel is issued first as cleanup; its result is
// ignored. A requires_action state with pending tool calls is serviced by
// acknowledging every call and restarting the wait.
func (p *Poller) Wait(ctx context.Context, threadID, runID string) error {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if err := p.sleep(ctx, p.interval); err != nil {
			return err
		}

		run, err := p.runs.GetRun(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("checking run status: %w", err)
		}

		switch run.Status {
		case openai.RunCompleted:
			// Cleanup, not control: the run is already terminal.
			if err := p.runs.CancelRun(ctx, threadID, runID); err != nil {
				p.logger.Debug("post-completion cancel failed", "run_id", runID, "error", err)
			}
			return nil

		case openai.RunFailed, openai.RunCancelled:
			return fmt.Errorf("%w (status %q)", ErrRunFailed, run.Status)

		case openai.RunRequiresAction:
			if run.RequiredAction == nil || run.RequiredAction.Type != openai.ActionSubmitToolOutputs {
				return ErrUnhandledAction
			}
			if err := p.acknowledgeToolCalls(ctx, threadID, runID, run.RequiredAction.SubmitToolOutputs.ToolCalls); err != nil {
				return err
			}
			// Tool outputs accepted; the run is live again, so restart the wait.
			return p.Wait(ctx, threadID, runID)

		case openai.RunQueued, openai.RunRunning:
			// Still in flight.

		case "":
			return ErrInvalidStatus

		default:
			p.logger.Debug("unrecognized run status, continuing to poll", "run_id", runID, "status", run.Status)
		}
	}

	return ErrTimedOut
}

// acknowledgeToolCalls answers every pending tool call with a fixed success
// payload. The assistant in this deployment never legitimately needs external
// tools, so real dispatch is not implemented; unknown action types fail
// upstream instead.
func (p *Poller) acknowledgeToolCalls(ctx context.Context, threadID, runID string, calls []openai.ToolCall) error {
	outputs := make([]openai.ToolOutput, len(calls))
	for i, call := range calls {
		outputs[i] = openai.ToolOutput{
			ToolCallID: call.ID,
			Output:     `{"success":true}`,
		}
	}
	if err := p.runs.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
		return fmt.Errorf("submitting tool outputs: %w", err)
	}
	p.logger.Info("acknowledged pending tool calls", "run_id", runID, "count", len(calls))
	return nil
}
