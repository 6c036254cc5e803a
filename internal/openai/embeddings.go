package openai

import (
	"context"
	"encoding/json"
	"net/http"
)

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for input using the given model.
// Non-string input is serialized to JSON before dispatch; string input is
// sent unmodified. There are no retries at this layer.
func (c *Client) Embed(ctx context.Context, model string, input any) ([]float64, error) {
	text, err := coerceText(input)
	if err != nil {
		return nil, err
	}

	var result embeddingResponse
	if err := c.doJSON(ctx, "embeddings", http.MethodPost, "/embeddings", embeddingRequest{Input: text, Model: model}, &result); err != nil {
		return nil, err
	}

	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, &Error{Kind: KindMalformed, Op: "embeddings", Msg: "embedding data not found in response"}
	}
	return result.Data[0].Embedding, nil
}

// coerceText turns arbitrary input into the string form the embeddings
// endpoint accepts. Strings pass through untouched.
func coerceText(input any) (string, error) {
	if s, ok := input.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(input)
	if err != nil {
		return "", &Error{Kind: KindInvalidInput, Op: "embeddings", Msg: "input is not a string and cannot be serialized", Err: err}
	}
	return string(data), nil
}
