package openai

import (
	"context"
	"net/http"
)

// Run status values reported by the provider.
const (
	RunQueued         = "queued"
	RunRunning        = "running"
	RunCompleted      = "completed"
	RunFailed         = "failed"
	RunCancelled      = "cancelled"
	RunRequiresAction = "requires_action"
)

// ActionSubmitToolOutputs is the only requires_action type this service handles.
const ActionSubmitToolOutputs = "submit_tool_outputs"

// Run is the subset of the run object this service reads.
type Run struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
}

// RequiredAction describes what the provider needs before a run can continue.
type RequiredAction struct {
	Type              string `json:"type"`
	SubmitToolOutputs struct {
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"submit_tool_outputs"`
}

// ToolCall is one pending tool invocation inside a requires_action payload.
type ToolCall struct {
	ID string `json:"id"`
}

// ToolOutput is the caller-supplied result for a pending tool call.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Message is one message in a thread, newest first in list responses.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is one typed chunk of message content.
type ContentPart struct {
	Type string `json:"type"`
	Text struct {
		Value string `json:"value"`
	} `json:"text"`
}

type threadResponse struct {
	ID string `json:"id"`
}

// CreateThread creates a new conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var result threadResponse
	if err := c.doJSON(ctx, "create thread", http.MethodPost, "/threads", struct{}{}, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &Error{Kind: KindMalformed, Op: "create thread", Msg: "thread ID missing from response"}
	}
	return result.ID, nil
}

type messageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AddMessage appends a user message to the thread.
func (c *Client) AddMessage(ctx context.Context, threadID, content string) error {
	return c.doJSON(ctx, "add message", http.MethodPost, "/threads/"+threadID+"/messages", messageRequest{Role: "user", Content: content}, nil)
}

type runRequest struct {
	AssistantID string `json:"assistant_id"`
}

// CreateRun starts a run of the given assistant against the thread and
// returns the run with its initial status.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (Run, error) {
	var run Run
	if err := c.doJSON(ctx, "create run", http.MethodPost, "/threads/"+threadID+"/runs", runRequest{AssistantID: assistantID}, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	var run Run
	if err := c.doJSON(ctx, "get run", http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

type toolOutputsRequest struct {
	ToolOutputs []ToolOutput `json:"tool_outputs"`
}

// SubmitToolOutputs posts results for all pending tool calls of a run.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	return c.doJSON(ctx, "submit tool outputs", http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/submit_tool_outputs", toolOutputsRequest{ToolOutputs: outputs}, nil)
}

// CancelRun requests cancellation of a run. Callers treating this as cleanup
// may ignore the result.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) error {
	return c.doJSON(ctx, "cancel run", http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/cancel", nil, nil)
}

type messagesResponse struct {
	Data []Message `json:"data"`
}

// ListMessages returns the thread's messages, most recent first.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	var result messagesResponse
	if err := c.doJSON(ctx, "list messages", http.MethodGet, "/threads/"+threadID+"/messages", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
