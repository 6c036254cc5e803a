package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brightpath/oneliners/internal/forms"
	"github.com/brightpath/oneliners/internal/pipeline"
)

type fakeProcessor struct {
	result  pipeline.Result
	err     error
	calls   atomic.Int32
	started chan struct{} // when non-nil, Run signals here on entry
	block   chan struct{} // when non-nil, Run waits until closed
}

func (f *fakeProcessor) Run(ctx context.Context) (pipeline.Result, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

type fakeEntries struct {
	entries []forms.Entry
	err     error
}

func (f *fakeEntries) ListActiveEntries(context.Context, string) ([]forms.Entry, error) {
	return f.entries, f.err
}

func testHandler(p Processor, e EntrySource) http.Handler {
	return NewHandler(Deps{Processor: p, Entries: e, FormID: "7", Token: "secret"})
}

func authedRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer secret")
	return req
}

func TestHealth_NoAuthRequired(t *testing.T) {
	h := testHandler(&fakeProcessor{}, &fakeEntries{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_Rejected(t *testing.T) {
	h := testHandler(&fakeProcessor{}, &fakeEntries{})

	for _, header := range []string{"", "Bearer wrong", "Basic secret"} {
		req := httptest.NewRequest("POST", "/process", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestProcess_Success(t *testing.T) {
	p := &fakeProcessor{result: pipeline.Result{
		Entries:      []pipeline.EntryResult{{EntryID: 1, Status: "Complete"}},
		FinalSummary: []string{"a", "b", "c"},
		Success:      true,
	}}
	h := testHandler(p, &fakeEntries{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest("POST", "/process"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result pipeline.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !result.Success || len(result.FinalSummary) != 3 {
		t.Errorf("result = %+v, want success with 3 sentences", result)
	}
}

func TestProcess_NoEntries(t *testing.T) {
	p := &fakeProcessor{err: pipeline.ErrNoEntries}
	h := testHandler(p, &fakeEntries{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest("POST", "/process"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProcess_PipelineError(t *testing.T) {
	p := &fakeProcessor{err: errors.New("forms service unreachable")}
	h := testHandler(p, &fakeEntries{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest("POST", "/process"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestProcess_ConcurrentRequestsCollapse(t *testing.T) {
	p := &fakeProcessor{
		result:  pipeline.Result{Success: true},
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	h := testHandler(p, &fakeEntries{})

	var wg sync.WaitGroup
	codes := make([]int, 3)
	serve := func(i int) {
		defer wg.Done()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authedRequest("POST", "/process"))
		codes[i] = rec.Code
	}

	wg.Add(1)
	go serve(0)
	<-p.started // first request holds the in-flight run

	wg.Add(2)
	go serve(1)
	go serve(2)
	// Let the followers join the in-flight key before releasing it.
	time.Sleep(100 * time.Millisecond)
	close(p.block)
	wg.Wait()

	if got := p.calls.Load(); got != 1 {
		t.Errorf("Run invocations = %d, want 1 for concurrent requests", got)
	}
	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i, code)
		}
	}
}

func TestListEntries(t *testing.T) {
	e := &fakeEntries{entries: []forms.Entry{
		{ID: 1, Status: "active", Fields: map[string]string{"1": "answer"}},
	}}
	h := testHandler(&fakeProcessor{}, e)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest("GET", "/entries"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result struct {
		Entries []entryView `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].ID != 1 || result.Entries[0].Fields["1"] != "answer" {
		t.Errorf("entries = %+v, want the listed entry", result.Entries)
	}
}

func TestListEntries_UpstreamError(t *testing.T) {
	e := &fakeEntries{err: errors.New("451")}
	h := testHandler(&fakeProcessor{}, e)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest("GET", "/entries"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
