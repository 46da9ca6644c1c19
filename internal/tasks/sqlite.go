package tasks

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rflorenc/conversion-host-service/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	operation   TEXT NOT NULL,
	subject     TEXT NOT NULL,
	state       TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	error_kind  TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	output      TEXT NOT NULL DEFAULT '[]'
);
`

// SQLiteArchive is a durable Archive on a local sqlite database.
type SQLiteArchive struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the task database at path.
func OpenSQLite(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tasks table: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

// Close releases the database handle.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// Record implements Archive.
func (a *SQLiteArchive) Record(t models.Task) error {
	output, err := json.Marshal(t.Output)
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	var finished sql.NullTime
	if t.FinishedAt != nil {
		finished = sql.NullTime{Time: *t.FinishedAt, Valid: true}
	}
	_, err = a.db.Exec(`
		INSERT INTO tasks (id, operation, subject, state, message, error_kind, started_at, finished_at, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			message = excluded.message,
			error_kind = excluded.error_kind,
			finished_at = excluded.finished_at,
			output = excluded.output`,
		t.ID, t.Operation, t.Subject, string(t.State), t.Message, t.ErrorKind,
		t.StartedAt, finished, string(output))
	if err != nil {
		return fmt.Errorf("recording task %s: %w", t.ID, err)
	}
	return nil
}

// Load implements Archive.
func (a *SQLiteArchive) Load(id string) (*models.Task, error) {
	row := a.db.QueryRow(`
		SELECT id, operation, subject, state, message, error_kind, started_at, finished_at, output
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// LoadAll implements Archive.
func (a *SQLiteArchive) LoadAll() ([]*models.Task, error) {
	rows, err := a.db.Query(`
		SELECT id, operation, subject, state, message, error_kind, started_at, finished_at, output
		FROM tasks ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*models.Task, error) {
	var (
		t        models.Task
		state    string
		started  time.Time
		finished sql.NullTime
		output   string
	)
	err := row.Scan(&t.ID, &t.Operation, &t.Subject, &state, &t.Message, &t.ErrorKind,
		&started, &finished, &output)
	if err != nil {
		return nil, err
	}
	t.State = models.TaskState(state)
	t.StartedAt = started
	if finished.Valid {
		ts := finished.Time
		t.FinishedAt = &ts
	}
	if err := json.Unmarshal([]byte(output), &t.Output); err != nil {
		return nil, fmt.Errorf("parsing output for task %s: %w", t.ID, err)
	}
	return &t, nil
}
