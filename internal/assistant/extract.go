package assistant

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/brightpath/oneliners/internal/openai"
)

var (
	// ErrNoMessages means the thread holds no messages at all.
	ErrNoMessages = errors.New("no messages found in thread")
	// ErrSummaryNotFound means no assistant message carried a parseable summary.
	ErrSummaryNotFound = errors.New("no summary found in thread messages")
)

// Summary is the canonical answer shape: an ordered list of sentences,
// normally exactly three.
type Summary struct {
	Sentences []string
}

// summaryPayload accepts both answer shapes the assistant has produced over
// time: a "summary" array and the legacy three discrete sentence keys.
type summaryPayload struct {
	Summary   []string `json:"summary"`
	Sentence1 string   `json:"sentence_1"`
	Sentence2 string   `json:"sentence_2"`
	Sentence3 string   `json:"sentence_3"`
}

var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractSummary scans messages (most recent first) for the newest
// assistant-authored message whose text parses as a JSON summary. Text inside
// a ```json fence takes precedence over the raw message text. Either answer
// shape is normalized to the canonical sentence list.
func ExtractSummary(messages []openai.Message) (Summary, error) {
	if len(messages) == 0 {
		return Summary{}, ErrNoMessages
	}

	for _, msg := range messages {
		if msg.Role != "assistant" {
			continue
		}
		for _, part := range msg.Content {
			if part.Type != "text" {
				continue
			}
			if s, ok := parseSummary(part.Text.Value); ok {
				return s, nil
			}
		}
	}
	return Summary{}, ErrSummaryNotFound
}

func parseSummary(text string) (Summary, bool) {
	candidate := text
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &payload); err != nil {
		return Summary{}, false
	}

	switch {
	case len(payload.Summary) > 0:
		return Summary{Sentences: payload.Summary}, true
	case payload.Sentence1 != "" && payload.Sentence2 != "" && payload.Sentence3 != "":
		return Summary{Sentences: []string{payload.Sentence1, payload.Sentence2, payload.Sentence3}}, true
	default:
		return Summary{}, false
	}
}
