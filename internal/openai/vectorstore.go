package openai

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	storeRetryAttempts = 3
	storeRetryPause    = time.Second
)

type attachFileRequest struct {
	FileID string `json:"file_id"`
}

// AttachFile attaches an uploaded file to the vector store.
func (c *Client) AttachFile(ctx context.Context, storeID, fileID string) error {
	return c.doJSON(ctx, "attach file", http.MethodPost, "/vector_stores/"+storeID+"/files", attachFileRequest{FileID: fileID}, nil)
}

// StoreVector uploads an entry's vector as a file and attaches it to the
// vector store. The two steps are not atomic: a failed attach leaves the
// uploaded file orphaned.
func (c *Client) StoreVector(ctx context.Context, storeID, purpose string, vector []float64, entryID int64, text string) error {
	fileID, err := c.UploadVectorFile(ctx, purpose, vector, entryID, text)
	if err != nil {
		return err
	}
	return c.AttachFile(ctx, storeID, fileID)
}

// VectorWriter stores vectors with a fixed-count retry over the full
// upload-then-attach sequence. Retried attempts after a partial failure may
// create duplicate files with identical content; there is no idempotency key.
type VectorWriter struct {
	client  *Client
	purpose string

	attempts int
	pause    time.Duration
	sleep    func(time.Duration)
	logger   *slog.Logger
}

// NewVectorWriter creates a VectorWriter uploading files with the given purpose.
func NewVectorWriter(client *Client, purpose string) *VectorWriter {
	return &VectorWriter{
		client:   client,
		purpose:  purpose,
		attempts: storeRetryAttempts,
		pause:    storeRetryPause,
		sleep:    time.Sleep,
		logger:   slog.Default(),
	}
}

// StoreVectorWithRetry re-attempts the full two-step store sequence up to the
// configured maximum, pausing a fixed interval between attempts, and returns
// the last result whether success or failure.
func (w *VectorWriter) StoreVectorWithRetry(ctx context.Context, storeID string, vector []float64, entryID int64, text string) error {
	var err error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		err = w.client.StoreVector(ctx, storeID, w.purpose, vector, entryID, text)
		if err == nil {
			return nil
		}
		w.logger.Warn("vector store attempt failed",
			"entry_id", entryID, "attempt", attempt, "max_attempts", w.attempts, "error", err)
		if attempt < w.attempts {
			w.sleep(w.pause)
		}
	}
	return err
}
