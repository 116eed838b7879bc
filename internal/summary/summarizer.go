// Package summary generates tutoring-session summaries from transcripts.
package summary

import (
	"context"
	"strings"

	"github.com/studyhall/studyhall/internal/llm"
)

const prompt = "This is a transcription from a tutoring session. " +
	"Please summarize the key points and important information discussed in the session:\n\n"

// Summarizer produces a summary for one transcript per call. It never
// persists anything; the caller owns the store write. One attempt per call:
// a failed record is retried on the next batch pass, so there is no backoff
// here.
type Summarizer struct {
	client llm.Client
}

func New(client llm.Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize returns the generated summary, or "" with a nil error when
// there is nothing to summarize: a transcript that is blank after trimming
// short-circuits without an external call, and a response with no candidate
// yields no summary rather than an error.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", nil
	}

	result, err := s.client.Complete(ctx, []llm.Message{
		{Role: "user", Content: prompt + transcript},
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
