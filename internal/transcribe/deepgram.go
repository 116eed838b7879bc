package transcribe

import (
	"context"
	"fmt"
	"io"
	"strings"

	listenv1rest "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
)

// Deepgram transcribes prerecorded audio. Options are fixed: punctuation
// on, a single configured locale, no language detection.
type Deepgram struct {
	dg       *listenv1rest.Client
	language string
}

func NewDeepgram(apiKey, language string) *Deepgram {
	if strings.TrimSpace(language) == "" {
		language = "en-US"
	}

	c := client.NewREST(apiKey, &interfaces.ClientOptions{})
	return &Deepgram{
		dg:       listenv1rest.New(c),
		language: language,
	}
}

// Transcribe sends the full audio payload and returns the transcript of the
// first alternative of the first channel. A response without that structure
// is ErrMalformedResponse; a transcript that trims to nothing is
// ErrEmptyTranscript.
func (d *Deepgram) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Punctuate: true,
		Language:  d.language,
	}

	res, err := d.dg.FromStream(ctx, audio, options)
	if err != nil {
		return "", fmt.Errorf("deepgram transcription: %w", err)
	}

	if res == nil || res.Results == nil || len(res.Results.Channels) == 0 {
		return "", ErrMalformedResponse
	}
	if len(res.Results.Channels[0].Alternatives) == 0 {
		return "", ErrMalformedResponse
	}

	transcript := strings.TrimSpace(res.Results.Channels[0].Alternatives[0].Transcript)
	if transcript == "" {
		return "", ErrEmptyTranscript
	}

	return transcript, nil
}
