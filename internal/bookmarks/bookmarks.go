package bookmarks

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/taskdeck/internal/config"
	"github.com/studiowebux/taskdeck/internal/filter"
)

// Prefix marks a flag value as a bookmark reference ("@open-habits")
const Prefix = "@"

// ErrNotFound is returned for an unknown bookmark name
var ErrNotFound = errors.New("bookmark not found")

// Bookmark represents a saved JMESPath expression
type Bookmark struct {
	ID         int       `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Expression string    `json:"expression" yaml:"expression"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// Manager handles bookmark persistence
type Manager struct {
	db *sql.DB
}

// NewManager opens (or creates) the bookmark database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create bookmark directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS query_bookmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			expression TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize bookmark schema: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save stores expression under name, replacing an existing bookmark of that name.
// Expressions that are neither valid JMESPath nor a $(command) are rejected.
func (m *Manager) Save(name, expression string) error {
	name = strings.TrimPrefix(strings.TrimSpace(name), Prefix)
	expression = strings.TrimSpace(expression)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if expression == "" {
		return fmt.Errorf("expression cannot be empty")
	}
	if !filter.IsShellCommand(expression) && !filter.IsValidJMESPath(expression) {
		return fmt.Errorf("invalid JMESPath expression '%s'", expression)
	}

	_, err := m.db.Exec(`
		INSERT INTO query_bookmarks (name, expression, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET expression = excluded.expression
	`, name, expression)
	if err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	return nil
}

// Get returns the bookmark called name
func (m *Manager) Get(name string) (Bookmark, error) {
	var b Bookmark
	err := m.db.QueryRow(
		"SELECT id, name, expression, created_at FROM query_bookmarks WHERE name = ?",
		strings.TrimPrefix(name, Prefix),
	).Scan(&b.ID, &b.Name, &b.Expression, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return b, fmt.Errorf("failed to load bookmark: %w", err)
	}
	return b, nil
}

// Delete removes a bookmark by name
func (m *Manager) Delete(name string) error {
	result, err := m.db.Exec("DELETE FROM query_bookmarks WHERE name = ?", strings.TrimPrefix(name, Prefix))
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return nil
}

// List returns all bookmarks ordered by name
func (m *Manager) List() ([]Bookmark, error) {
	return m.query(`
		SELECT id, name, expression, created_at
		FROM query_bookmarks
		ORDER BY name
	`)
}

// Search filters bookmarks by substring match on name or expression (case-insensitive)
func (m *Manager) Search(query string) ([]Bookmark, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return m.List()
	}

	return m.query(`
		SELECT id, name, expression, created_at
		FROM query_bookmarks
		WHERE name LIKE ? OR expression LIKE ?
		ORDER BY name
	`, "%"+query+"%", "%"+query+"%")
}

func (m *Manager) query(query string, args ...any) ([]Bookmark, error) {
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.Name, &b.Expression, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}

// Resolve expands an "@name" reference; any other value is returned unchanged
func (m *Manager) Resolve(value string) (string, error) {
	if !strings.HasPrefix(value, Prefix) {
		return value, nil
	}
	b, err := m.Get(value)
	if err != nil {
		return "", err
	}
	return b.Expression, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
