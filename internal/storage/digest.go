package storage

import (
	"fmt"
	"strings"
)

// ExportDigest renders a markdown digest of every recording created on the
// given date (YYYY-MM-DD), with its transcript and summary. Used by the
// Drive archiver.
func (s *SQLiteStore) ExportDigest(date string) (string, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, filepath, mimetype, size, created_at, transcription, summary
		 FROM recordings
		 WHERE substr(created_at, 1, 10) = ?
		 ORDER BY id ASC`,
		date,
	)
	if err != nil {
		return "", fmt.Errorf("query recordings for date %s: %w", date, err)
	}
	defer func() { _ = rows.Close() }()

	recordings, err := scanRecordings(rows)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Tutoring sessions — %s\n", date)

	for _, rec := range recordings {
		fmt.Fprintf(&b, "\n## %s (%s)\n", rec.Filename, rec.CreatedAt.Format("15:04:05"))

		summary := strings.TrimSpace(rec.Summary)
		if summary != "" {
			fmt.Fprintf(&b, "\n**Summary:** %s\n", summary)
		}

		transcription := strings.TrimSpace(rec.Transcription)
		if transcription == "" {
			b.WriteString("\n_Not yet transcribed._\n")
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", transcription)
	}

	return b.String(), nil
}
