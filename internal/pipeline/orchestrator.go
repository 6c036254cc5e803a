// Package pipeline sequences a full processing run: pull active form entries,
// summarize each through the assistant, store an embedding per entry, then
// produce one cumulative summary across everything processed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brightpath/oneliners/internal/assistant"
	"github.com/brightpath/oneliners/internal/forms"
)

// ErrNoEntries means the configured form has no active entries to process.
var ErrNoEntries = errors.New("no entries found in the form")

// EntryLister pulls active entries for a form.
type EntryLister interface {
	ListActiveEntries(ctx context.Context, formID string) ([]forms.Entry, error)
}

// Asker runs assistant questions on a shared thread.
type Asker interface {
	NewThread(ctx context.Context) (string, error)
	Ask(ctx context.Context, threadID, text string) (assistant.Summary, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, model string, input any) ([]float64, error)
}

// VectorStorer persists a vector with entry metadata, retrying internally.
type VectorStorer interface {
	StoreVectorWithRetry(ctx context.Context, storeID string, vector []float64, entryID int64, text string) error
}

// Question pairs a form field id with the label used when composing entry text.
type Question struct {
	FieldID string
	Label   string
}

// The form's three free-text questions. Field 2 is a consent checkbox and is
// never sent to the assistant.
var defaultQuestions = []Question{
	{FieldID: "1", Label: "What brought you to Centerstone?"},
	{FieldID: "3", Label: "How does Centerstone support the community?"},
	{FieldID: "4", Label: "In a word, what does Noble Purpose mean to you?"},
}

// Orchestrator owns one end-to-end processing run. All external state lives
// in the forms service and the AI provider; the orchestrator itself keeps
// nothing between runs.
type Orchestrator struct {
	entries   EntryLister
	asker     Asker
	embedder  Embedder
	vectors   VectorStorer
	formID    string
	storeID   string
	model     string
	questions []Question
	logger    *slog.Logger
}

// New creates an Orchestrator. model is the embedding model identifier.
func New(entries EntryLister, asker Asker, embedder Embedder, vectors VectorStorer, formID, storeID, model string) *Orchestrator {
	return &Orchestrator{
		entries:   entries,
		asker:     asker,
		embedder:  embedder,
		vectors:   vectors,
		formID:    formID,
		storeID:   storeID,
		model:     model,
		questions: defaultQuestions,
		logger:    slog.Default(),
	}
}

// EntryResult is the terminal outcome for one entry. Status is "Complete" or
// a human-readable error; OneLiner carries the per-entry summary sentences
// when the assistant produced them.
type EntryResult struct {
	EntryID  int64    `json:"entry_id"`
	Status   string   `json:"status"`
	OneLiner []string `json:"one_liner,omitempty"`
}

// Result is the single atomic response of a run.
type Result struct {
	Entries      []EntryResult `json:"entries"`
	FinalSummary []string      `json:"final_summary,omitempty"`
	FinalError   string        `json:"final_error,omitempty"`
	Success      bool          `json:"success"`
}

// Statuses returns the per-entry status map keyed by entry id.
func (r Result) Statuses() map[int64]string {
	m := make(map[int64]string, len(r.Entries))
	for _, e := range r.Entries {
		m[e.EntryID] = e.Status
	}
	return m
}

// Run executes one full processing pass. One entry's failure never aborts the
// batch: errors are recorded per entry and the cumulative summary still runs
// over whatever was collected. Fetch and thread-creation failures abort
// before any per-entry side effect.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	runID := uuid.New().String()
	logger := o.logger.With("run_id", runID)

	entries, err := o.entries.ListActiveEntries(ctx, o.formID)
	if err != nil {
		return Result{}, fmt.Errorf("retrieving entries: %w", err)
	}
	if len(entries) == 0 {
		return Result{}, ErrNoEntries
	}
	logger.Info("processing entries", "form_id", o.formID, "count", len(entries))

	threadID, err := o.asker.NewThread(ctx)
	if err != nil {
		return Result{}, err
	}

	var (
		results   = make([]EntryResult, 0, len(entries))
		collected []string
	)
	for _, entry := range entries {
		results = append(results, o.processEntry(ctx, logger, threadID, entry, &collected))
	}

	result := Result{Entries: results}
	summary, err := o.asker.Ask(ctx, threadID, strings.Join(collected, "\n"))
	if err != nil {
		logger.Error("final summary generation failed", "error", err)
		result.FinalError = fmt.Sprintf("Error generating final summary: %v", err)
		return result, nil
	}

	result.FinalSummary = summary.Sentences
	result.Success = true
	logger.Info("run complete", "entries", len(entries), "sentences", len(collected))
	return result, nil
}

// processEntry takes one entry to a terminal status. Collected summary
// sentences are appended to collected only on full success.
func (o *Orchestrator) processEntry(ctx context.Context, logger *slog.Logger, threadID string, entry forms.Entry, collected *[]string) EntryResult {
	text := o.entryText(entry)
	logger.Debug("processing entry", "entry_id", entry.ID)

	summary, err := o.asker.Ask(ctx, threadID, text)
	if err != nil {
		logger.Warn("assistant summary failed", "entry_id", entry.ID, "error", err)
		return EntryResult{EntryID: entry.ID, Status: fmt.Sprintf("Summary Error: %v", err)}
	}

	vector, err := o.embedder.Embed(ctx, o.model, text)
	if err != nil {
		logger.Warn("embedding generation failed", "entry_id", entry.ID, "error", err)
		return EntryResult{EntryID: entry.ID, Status: fmt.Sprintf("Embedding Error: %v", err)}
	}

	if err := o.vectors.StoreVectorWithRetry(ctx, o.storeID, vector, entry.ID, text); err != nil {
		logger.Warn("vector store failed", "entry_id", entry.ID, "error", err)
		return EntryResult{EntryID: entry.ID, Status: fmt.Sprintf("Vector Store Error: %v", err)}
	}

	*collected = append(*collected, summary.Sentences...)
	return EntryResult{EntryID: entry.ID, Status: "Complete", OneLiner: summary.Sentences}
}

// entryText folds the entry's answers into the labeled block of text sent to
// both the assistant and the embedding endpoint.
func (o *Orchestrator) entryText(entry forms.Entry) string {
	parts := make([]string, len(o.questions))
	for i, q := range o.questions {
		parts[i] = q.Label + "\n" + entry.Field(q.FieldID)
	}
	return strings.Join(parts, "\n\n")
}
