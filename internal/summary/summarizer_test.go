package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/studyhall/studyhall/internal/llm"
)

type mockLLMClient struct {
	calls        int
	response     string
	err          error
	lastMessages []llm.Message
}

func (m *mockLLMClient) Complete(_ context.Context, messages []llm.Message) (string, error) {
	m.calls++
	m.lastMessages = append([]llm.Message(nil), messages...)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestSummarize(t *testing.T) {
	client := &mockLLMClient{response: "Covered long division and remainders."}
	s := New(client)

	result, err := s.Summarize(context.Background(), "So today we practiced long division...")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if result != "Covered long division and remainders." {
		t.Fatalf("unexpected summary: %q", result)
	}
	if client.calls != 1 {
		t.Fatalf("expected one llm call, got %d", client.calls)
	}
}

func TestSummarizePromptEmbedsTranscript(t *testing.T) {
	client := &mockLLMClient{response: "ok"}
	s := New(client)

	transcript := "We solved for x in three equations."
	if _, err := s.Summarize(context.Background(), transcript); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if len(client.lastMessages) != 1 {
		t.Fatalf("expected one message, got %d", len(client.lastMessages))
	}
	content := client.lastMessages[0].Content
	if !strings.Contains(content, "tutoring session") {
		t.Fatalf("expected instructional prompt, got %q", content)
	}
	if !strings.HasSuffix(content, transcript) {
		t.Fatalf("expected transcript embedded verbatim at the end, got %q", content)
	}
}

func TestSummarizeBlankTranscriptShortCircuits(t *testing.T) {
	client := &mockLLMClient{response: "should-not-be-used"}
	s := New(client)

	for _, transcript := range []string{"", "   ", "\n\t"} {
		result, err := s.Summarize(context.Background(), transcript)
		if err != nil {
			t.Fatalf("Summarize(%q) returned error: %v", transcript, err)
		}
		if result != "" {
			t.Fatalf("expected no summary for blank transcript, got %q", result)
		}
	}
	if client.calls != 0 {
		t.Fatalf("expected zero llm calls for blank transcripts, got %d", client.calls)
	}
}

func TestSummarizeNoCandidate(t *testing.T) {
	client := &mockLLMClient{response: ""}
	s := New(client)

	result, err := s.Summarize(context.Background(), "a real transcript")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if result != "" {
		t.Fatalf("expected empty summary when provider yields nothing, got %q", result)
	}
}

func TestSummarizePropagatesClientError(t *testing.T) {
	client := &mockLLMClient{err: errors.New("service unavailable")}
	s := New(client)

	_, err := s.Summarize(context.Background(), "a real transcript")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if client.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", client.calls)
	}
}
