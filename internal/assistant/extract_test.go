package assistant

import (
	"errors"
	"reflect"
	"testing"

	"github.com/brightpath/oneliners/internal/openai"
)

func assistantText(value string) openai.Message {
	msg := openai.Message{Role: "assistant", Content: []openai.ContentPart{{Type: "text"}}}
	msg.Content[0].Text.Value = value
	return msg
}

func userText(value string) openai.Message {
	msg := openai.Message{Role: "user", Content: []openai.ContentPart{{Type: "text"}}}
	msg.Content[0].Text.Value = value
	return msg
}

func TestExtractSummary_FencedJSON(t *testing.T) {
	msgs := []openai.Message{
		assistantText("Here you go:\n```json\n{\"summary\":[\"a\",\"b\",\"c\"]}\n```"),
	}

	s, err := ExtractSummary(msgs)
	if err != nil {
		t.Fatalf("ExtractSummary: %v", err)
	}
	if !reflect.DeepEqual(s.Sentences, []string{"a", "b", "c"}) {
		t.Errorf("sentences = %v, want [a b c]", s.Sentences)
	}
}

func TestExtractSummary_RawJSON(t *testing.T) {
	msgs := []openai.Message{
		assistantText(`{"summary":["only one"]}`),
	}

	s, err := ExtractSummary(msgs)
	if err != nil {
		t.Fatalf("ExtractSummary: %v", err)
	}
	if len(s.Sentences) != 1 || s.Sentences[0] != "only one" {
		t.Errorf("sentences = %v, want [only one]", s.Sentences)
	}
}

func TestExtractSummary_LegacySentenceKeys(t *testing.T) {
	msgs := []openai.Message{
		assistantText(`{"sentence_1":"first","sentence_2":"second","sentence_3":"third"}`),
	}

	s, err := ExtractSummary(msgs)
	if err != nil {
		t.Fatalf("ExtractSummary: %v", err)
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(s.Sentences, want) {
		t.Errorf("sentences = %v, want %v", s.Sentences, want)
	}
}

func TestExtractSummary_MostRecentAssistantWins(t *testing.T) {
	// Provider lists messages newest first.
	msgs := []openai.Message{
		userText("latest user prompt"),
		assistantText(`{"summary":["newest"]}`),
		assistantText(`{"summary":["older"]}`),
	}

	s, err := ExtractSummary(msgs)
	if err != nil {
		t.Fatalf("ExtractSummary: %v", err)
	}
	if s.Sentences[0] != "newest" {
		t.Errorf("sentences = %v, want the newest assistant answer", s.Sentences)
	}
}

func TestExtractSummary_SkipsUnparseableMessages(t *testing.T) {
	msgs := []openai.Message{
		assistantText("Sure! Let me think about that."),
		assistantText(`{"summary":["fallback answer"]}`),
	}

	s, err := ExtractSummary(msgs)
	if err != nil {
		t.Fatalf("ExtractSummary: %v", err)
	}
	if s.Sentences[0] != "fallback answer" {
		t.Errorf("sentences = %v, want the first parseable summary", s.Sentences)
	}
}

func TestExtractSummary_NotFound(t *testing.T) {
	msgs := []openai.Message{
		userText("question"),
		assistantText("just prose, no JSON"),
		assistantText(`{"answer":"wrong shape"}`),
	}

	_, err := ExtractSummary(msgs)
	if !errors.Is(err, ErrSummaryNotFound) {
		t.Fatalf("err = %v, want ErrSummaryNotFound", err)
	}
}

func TestExtractSummary_NoMessages(t *testing.T) {
	_, err := ExtractSummary(nil)
	if !errors.Is(err, ErrNoMessages) {
		t.Fatalf("err = %v, want ErrNoMessages", err)
	}
}

func TestExtractSummary_IgnoresNonTextParts(t *testing.T) {
	msg := openai.Message{Role: "assistant", Content: []openai.ContentPart{{Type: "image_file"}}}
	_, err := ExtractSummary([]openai.Message{msg})
	if !errors.Is(err, ErrSummaryNotFound) {
		t.Fatalf("err = %v, want ErrSummaryNotFound", err)
	}
}
