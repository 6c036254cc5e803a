package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightpath/oneliners/internal/openai"
)

// ThreadClient is the subset of the provider client the runner needs beyond
// run polling.
type ThreadClient interface {
	RunClient
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, content string) error
	CreateRun(ctx context.Context, threadID, assistantID string) (openai.Run, error)
	ListMessages(ctx context.Context, threadID string) ([]openai.Message, error)
}

// Runner asks a fixed assistant questions on a shared thread and returns the
// extracted summary answers.
type Runner struct {
	client      ThreadClient
	assistantID string
	poller      *Poller
	logger      *slog.Logger
}

// NewRunner creates a Runner bound to the given assistant.
func NewRunner(client ThreadClient, assistantID string) *Runner {
	return &Runner{
		client:      client,
		assistantID: assistantID,
		poller:      NewPoller(client),
		logger:      slog.Default(),
	}
}

// NewThread creates the conversation thread shared by a batch of questions.
// The thread is never explicitly destroyed; the provider owns its lifecycle.
func (r *Runner) NewThread(ctx context.Context) (string, error) {
	threadID, err := r.client.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return threadID, nil
}

// Ask posts text as a user message, runs the assistant, waits for the run to
// finish, and extracts the summary from the newest assistant message.
func (r *Runner) Ask(ctx context.Context, threadID, text string) (Summary, error) {
	if err := r.client.AddMessage(ctx, threadID, text); err != nil {
		return Summary{}, fmt.Errorf("adding message: %w", err)
	}

	run, err := r.client.CreateRun(ctx, threadID, r.assistantID)
	if err != nil {
		return Summary{}, fmt.Errorf("starting run: %w", err)
	}
	r.logger.Debug("run started", "thread_id", threadID, "run_id", run.ID, "status", run.Status)

	switch run.Status {
	case openai.RunQueued, openai.RunRunning:
		if err := r.poller.Wait(ctx, threadID, run.ID); err != nil {
			return Summary{}, err
		}
	case openai.RunCompleted:
		// Nothing to wait for; read the answer directly.
	default:
		return Summary{}, fmt.Errorf("%w (status %q)", ErrRunFailed, run.Status)
	}

	messages, err := r.client.ListMessages(ctx, threadID)
	if err != nil {
		return Summary{}, fmt.Errorf("fetching messages: %w", err)
	}
	return ExtractSummary(messages)
}
