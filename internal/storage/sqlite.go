package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Recording is one uploaded audio file and its derived transcript and
// summary. Transcription and Summary are empty until the pipeline fills
// them in.
type Recording struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	Filepath      string    `json:"filepath"`
	Mimetype      string    `json:"mimetype"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
	Transcription string    `json:"transcription"`
	Summary       string    `json:"summary"`
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "studyhall.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS recordings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL,
			filepath TEXT NOT NULL,
			mimetype TEXT NOT NULL DEFAULT '',
			size INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			transcription TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT ''
		);
	`); err != nil {
		return fmt.Errorf("create recordings table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_recordings_created_at ON recordings(created_at)"); err != nil {
		return fmt.Errorf("create recordings index: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// CreateRecording inserts a new recording row and fills in the assigned id.
// CreatedAt defaults to now if unset.
func (s *SQLiteStore) CreateRecording(rec *Recording) error {
	if strings.TrimSpace(rec.Filename) == "" {
		return errors.New("recording filename is required")
	}
	if strings.TrimSpace(rec.Filepath) == "" {
		return errors.New("recording filepath is required")
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(
		`INSERT INTO recordings(filename, filepath, mimetype, size, created_at, transcription, summary)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		rec.Filename,
		rec.Filepath,
		rec.Mimetype,
		rec.Size,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Transcription,
		rec.Summary,
	)
	if err != nil {
		return fmt.Errorf("create recording %s: %w", rec.Filename, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create recording last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// FindAllRecordings returns every recording in insertion order.
func (s *SQLiteStore) FindAllRecordings() ([]Recording, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, filepath, mimetype, size, created_at, transcription, summary
		 FROM recordings
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecordings(rows)
}

func (s *SQLiteStore) GetRecording(id int64) (Recording, error) {
	row := s.db.QueryRow(
		`SELECT id, filename, filepath, mimetype, size, created_at, transcription, summary
		 FROM recordings WHERE id = ?`,
		id,
	)

	var rec Recording
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.Filepath, &rec.Mimetype, &rec.Size, &createdAt, &rec.Transcription, &rec.Summary); err != nil {
		return Recording{}, fmt.Errorf("query recording %d: %w", id, err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Recording{}, fmt.Errorf("parse recording %d created_at: %w", id, err)
	}
	rec.CreatedAt = parsed

	return rec, nil
}

// SaveRecording writes the recording's transcription and summary back to
// the store, overwriting whatever is persisted. Last write wins; created_at
// and file metadata are never touched after insert.
func (s *SQLiteStore) SaveRecording(rec Recording) error {
	if rec.ID == 0 {
		return errors.New("recording id is required")
	}

	res, err := s.db.Exec(
		`UPDATE recordings SET transcription = ?, summary = ? WHERE id = ?`,
		rec.Transcription,
		rec.Summary,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("save recording %d: %w", rec.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save recording rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanRecordings(rows *sql.Rows) ([]Recording, error) {
	recordings := make([]Recording, 0, 16)
	for rows.Next() {
		var rec Recording
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Filepath, &rec.Mimetype, &rec.Size, &createdAt, &rec.Transcription, &rec.Summary); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		rec.CreatedAt = parsed

		recordings = append(recordings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recording rows: %w", err)
	}

	return recordings, nil
}
