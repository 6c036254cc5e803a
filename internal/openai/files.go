package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// vectorFilePayload is the JSON document uploaded per entry: the embedding
// plus enough metadata to trace a store hit back to its form entry.
type vectorFilePayload struct {
	Vector  []float64 `json:"vector"`
	EntryID int64     `json:"entry_id"`
	Text    string    `json:"text"`
}

type fileResponse struct {
	ID string `json:"id"`
}

// UploadVectorFile serializes {vector, entry_id, text} to a uniquely-named
// temporary file, uploads it via multipart with the given purpose, and
// returns the uploaded file's id. The temporary file is removed after the
// attempt regardless of outcome.
func (c *Client) UploadVectorFile(ctx context.Context, purpose string, vector []float64, entryID int64, text string) (string, error) {
	const op = "create vector file"

	content, err := json.Marshal(vectorFilePayload{Vector: vector, EntryID: entryID, Text: text})
	if err != nil {
		return "", &Error{Kind: KindInvalidInput, Op: op, Msg: "marshaling vector payload", Err: err}
	}

	tmpPath := filepath.Join(os.TempDir(), "vector_data_"+uuid.New().String()+".json")
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "writing temp file", Err: err}
	}
	defer os.Remove(tmpPath)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", purpose); err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "building multipart body", Err: err}
	}
	part, err := mw.CreateFormFile("file", "vector_data.json")
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "building multipart body", Err: err}
	}
	f, err := os.Open(tmpPath)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "reading temp file", Err: err}
	}
	_, copyErr := io.Copy(part, f)
	f.Close()
	if copyErr != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "reading temp file", Err: copyErr}
	}
	if err := mw.Close(); err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "building multipart body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "creating request", Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Msg: "reading response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg, ok := errorMessage(raw)
		if !ok {
			msg = "unknown error"
		}
		return "", &Error{Kind: KindApplication, Op: op, Msg: msg}
	}

	var result fileResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &Error{Kind: KindMalformed, Op: op, Msg: "decoding response", Err: err}
	}
	if result.ID == "" {
		return "", &Error{Kind: KindMalformed, Op: op, Msg: "file ID missing from response"}
	}
	return result.ID, nil
}
