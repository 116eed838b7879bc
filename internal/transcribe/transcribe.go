// Package transcribe turns stored audio files into transcripts using the
// Deepgram prerecorded REST API.
package transcribe

import "errors"

// ErrMalformedResponse is returned when the recognizer response carries no
// channel with at least one alternative transcript.
var ErrMalformedResponse = errors.New("recognizer response missing channels or alternatives")

// ErrEmptyTranscript is returned when the recognizer produced a transcript
// that is empty after trimming. The record stays untranscribed and is
// retried on the next pass.
var ErrEmptyTranscript = errors.New("recognizer returned an empty transcript")
