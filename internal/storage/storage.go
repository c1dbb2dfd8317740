// Package storage persists tasks for the store server in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tally/internal/task"
)

var ErrNotFound = errors.New("task not found")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	deadline TEXT NOT NULL,
	priority INTEGER NOT NULL DEFAULT 2,
	is_completed INTEGER NOT NULL DEFAULT 0
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds columns introduced after the first schema.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"description":  "ALTER TABLE tasks ADD COLUMN description TEXT NOT NULL DEFAULT '';",
		"is_completed": "ALTER TABLE tasks ADD COLUMN is_completed INTEGER NOT NULL DEFAULT 0;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

const selectTask = `SELECT id, title, description, created_at, deadline, priority, is_completed FROM tasks`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var t task.Task
	var id, created, deadline string
	var priority, done int
	if err := row.Scan(&id, &t.Title, &t.Description, &created, &deadline, &priority, &done); err != nil {
		return task.Task{}, err
	}
	t.ID = task.ID(id)
	t.Priority = task.Priority(priority)
	t.IsCompleted = done == 1
	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return task.Task{}, fmt.Errorf("task %s: created_at: %w", id, err)
	}
	if t.Deadline, err = time.Parse(time.RFC3339Nano, deadline); err != nil {
		return task.Task{}, fmt.Errorf("task %s: deadline: %w", id, err)
	}
	return t, nil
}

// List returns every task in insertion order.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, selectTask+` ORDER BY seq;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) Get(ctx context.Context, id task.ID) (task.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, selectTask+` WHERE id = ?;`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, ErrNotFound
	}
	return t, err
}

// Create stores in under a fresh id. A missing createdAt is stamped with
// the current time.
func (s *Store) Create(ctx context.Context, in task.NewTask) (task.Task, error) {
	t := task.Task{
		ID:          task.ID(uuid.New().String()),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   in.CreatedAt,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		IsCompleted: in.IsCompleted,
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, created_at, deadline, priority, is_completed) VALUES (?, ?, ?, ?, ?, ?, ?);`,
		t.ID.String(), t.Title, t.Description, formatTime(t.CreatedAt), formatTime(t.Deadline), int(t.Priority), boolToInt(t.IsCompleted))
	if err != nil {
		return task.Task{}, err
	}
	return s.Get(ctx, t.ID)
}

// Replace overwrites the mutable fields of an existing task. created_at
// is kept as first stored.
func (s *Store) Replace(ctx context.Context, t task.Task) (task.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, deadline = ?, priority = ?, is_completed = ? WHERE id = ?;`,
		t.Title, t.Description, formatTime(t.Deadline), int(t.Priority), boolToInt(t.IsCompleted), t.ID.String())
	if err != nil {
		return task.Task{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return task.Task{}, err
	}
	if n == 0 {
		return task.Task{}, ErrNotFound
	}
	return s.Get(ctx, t.ID)
}

func (s *Store) Delete(ctx context.Context, id task.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
