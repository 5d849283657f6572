package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/taskdeck/internal/config"
	"github.com/studiowebux/taskdeck/internal/migrations"
	"github.com/studiowebux/taskdeck/internal/types"
)

// ErrNotFound is returned when no record has the requested id in the collection
var ErrNotFound = errors.New("task not found")

// Store persists tasks in SQLite. Each record belongs to one collection
// ("tasks", "habits", "schedules"); ids are unique across collections.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at dbPath and applies migrations.
// ":memory:" opens a private in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer, and ":memory:" is per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `id, title, start_time, end_time, importance, memo, type, done`

// List returns every record of collection, oldest first
func (s *Store) List(ctx context.Context, collection string) ([]types.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM tasks WHERE collection = ? ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return tasks, nil
}

// Get returns one record
func (s *Store) Get(ctx context.Context, collection string, id int64) (types.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM tasks WHERE collection = ? AND id = ?`,
		collection, id,
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Task{}, ErrNotFound
	}
	return task, err
}

// Create inserts a record and returns it with its id
func (s *Store) Create(ctx context.Context, collection string, input types.TaskInput) (types.Task, error) {
	now := timestamp()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (collection, title, start_time, end_time, importance, memo, type, done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		collection, input.Title, input.Start, input.End, input.Importance,
		nullString(input.Memo), input.Type, input.Done, now, now,
	)
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to read task id: %w", err)
	}

	task := types.Task{ID: id}
	task.Apply(input)
	return task, nil
}

// Update replaces the writable fields of a record
func (s *Store) Update(ctx context.Context, collection string, id int64, input types.TaskInput) (types.Task, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, start_time = ?, end_time = ?, importance = ?, memo = ?, type = ?, done = ?, updated_at = ?
		WHERE collection = ? AND id = ?
	`,
		input.Title, input.Start, input.End, input.Importance, nullString(input.Memo),
		input.Type, input.Done, timestamp(), collection, id,
	)
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if affected == 0 {
		return types.Task{}, ErrNotFound
	}

	task := types.Task{ID: id}
	task.Apply(input)
	return task, nil
}

// Delete removes a record
func (s *Store) Delete(ctx context.Context, collection string, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of records in collection
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (types.Task, error) {
	var task types.Task
	var memo sql.NullString
	err := row.Scan(&task.ID, &task.Title, &task.Start, &task.End, &task.Importance, &memo, &task.Type, &task.Done)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task, err
		}
		return task, fmt.Errorf("failed to scan task: %w", err)
	}
	if memo.Valid {
		m := memo.String
		task.Memo = &m
	}
	return task, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// timestamp formats the current time for SQLite in local time
func timestamp() string {
	return time.Now().Local().Format("2006-01-02 15:04:05")
}
