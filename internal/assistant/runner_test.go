package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightpath/oneliners/internal/openai"
)

// fakeProvider is a scriptable ThreadClient.
type fakeProvider struct {
	scriptedRuns

	threadID     string
	threadErr    error
	addedMsgs    []string
	addErr       error
	initialRun   openai.Run
	createRunErr error
	messages     []openai.Message
	listErr      error
}

func (f *fakeProvider) CreateThread(context.Context) (string, error) {
	return f.threadID, f.threadErr
}

func (f *fakeProvider) AddMessage(_ context.Context, _, content string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addedMsgs = append(f.addedMsgs, content)
	return nil
}

func (f *fakeProvider) CreateRun(context.Context, string, string) (openai.Run, error) {
	return f.initialRun, f.createRunErr
}

func (f *fakeProvider) ListMessages(context.Context, string) ([]openai.Message, error) {
	return f.messages, f.listErr
}

func instantRunner(f *fakeProvider) *Runner {
	r := NewRunner(f, "asst_1")
	r.poller.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestAsk_InitialQueuedPollsToCompletion(t *testing.T) {
	f := &fakeProvider{
		initialRun: openai.Run{ID: "run_1", Status: openai.RunQueued},
		messages:   []openai.Message{assistantText(`{"summary":["s1","s2","s3"]}`)},
	}
	f.states = []openai.Run{run(openai.RunRunning), run(openai.RunCompleted)}

	r := instantRunner(f)
	s, err := r.Ask(context.Background(), "thread_1", "entry text")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(s.Sentences) != 3 {
		t.Errorf("sentences = %v, want 3", s.Sentences)
	}
	if len(f.addedMsgs) != 1 || f.addedMsgs[0] != "entry text" {
		t.Errorf("added messages = %v, want the entry text posted once", f.addedMsgs)
	}
	if f.cancels != 1 {
		t.Errorf("cancels = %d, want 1", f.cancels)
	}
}

func TestAsk_InitialCompletedSkipsPolling(t *testing.T) {
	f := &fakeProvider{
		initialRun: openai.Run{ID: "run_1", Status: openai.RunCompleted},
		messages:   []openai.Message{assistantText(`{"summary":["direct"]}`)},
	}
	// No scripted poll states: any GetRun call would report running and
	// eventually time out, failing the test.
	f.getErr = errors.New("GetRun must not be called")

	r := instantRunner(f)
	s, err := r.Ask(context.Background(), "thread_1", "text")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if s.Sentences[0] != "direct" {
		t.Errorf("sentences = %v, want [direct]", s.Sentences)
	}
}

func TestAsk_InitialFailureStatus(t *testing.T) {
	f := &fakeProvider{
		initialRun: openai.Run{ID: "run_1", Status: openai.RunFailed},
	}

	r := instantRunner(f)
	_, err := r.Ask(context.Background(), "thread_1", "text")
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("err = %v, want ErrRunFailed", err)
	}
}

func TestAsk_AddMessageError(t *testing.T) {
	f := &fakeProvider{addErr: errors.New("boom")}

	r := instantRunner(f)
	if _, err := r.Ask(context.Background(), "thread_1", "text"); err == nil {
		t.Fatal("Ask succeeded, want error")
	}
}

func TestNewThread(t *testing.T) {
	f := &fakeProvider{threadID: "thread_9"}
	r := instantRunner(f)

	id, err := r.NewThread(context.Background())
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	if id != "thread_9" {
		t.Errorf("id = %q, want thread_9", id)
	}
}

func TestNewThread_Error(t *testing.T) {
	f := &fakeProvider{threadErr: errors.New("rate limited")}
	r := instantRunner(f)

	if _, err := r.NewThread(context.Background()); err == nil {
		t.Fatal("NewThread succeeded, want error")
	}
}
