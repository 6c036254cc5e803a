// Package api exposes the processing pipeline over a small authenticated
// HTTP surface and as MCP tools.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/brightpath/oneliners/internal/forms"
	"github.com/brightpath/oneliners/internal/pipeline"
)

// Processor runs one full orchestration pass.
type Processor interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// EntrySource lists active form entries for display.
type EntrySource interface {
	ListActiveEntries(ctx context.Context, formID string) ([]forms.Entry, error)
}

// Deps holds everything the HTTP handlers need.
type Deps struct {
	Processor Processor
	Entries   EntrySource
	FormID    string
	Token     string
}

// NewHandler builds the HTTP router. /health is open; everything else
// requires the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Post("/process", handleProcess(deps))
		r.Get("/entries", handleListEntries(deps))
	})

	return r
}

// handleProcess kicks off a full run. Runs take minutes and mutate a shared
// provider thread, so concurrent requests are collapsed into one in-flight
// run via singleflight; every waiting caller receives the same result.
func handleProcess(deps Deps) http.HandlerFunc {
	var group singleflight.Group
	return func(w http.ResponseWriter, r *http.Request) {
		v, err, _ := group.Do("process", func() (any, error) {
			return deps.Processor.Run(r.Context())
		})
		if err != nil {
			if errors.Is(err, pipeline.ErrNoEntries) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "no entries found in the form")
				return
			}
			httpError(w, http.StatusBadGateway, "api_error", "processing failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, v.(pipeline.Result))
	}
}

type entryView struct {
	ID     int64             `json:"id"`
	Status string            `json:"status"`
	Fields map[string]string `json:"fields"`
}

func handleListEntries(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := deps.Entries.ListActiveEntries(r.Context(), deps.FormID)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "failed to retrieve entries: %v", err)
			return
		}

		views := make([]entryView, len(entries))
		for i, e := range entries {
			views[i] = entryView{ID: e.ID, Status: e.Status, Fields: e.Fields}
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": views})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
