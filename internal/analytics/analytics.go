package analytics

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/config"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	statsCacheTTL   = 30 * time.Second
)

// Entry is one recorded gateway call
type Entry struct {
	ID           int64
	BaseURL      string
	Collection   string
	Operation    string
	Method       string
	StatusCode   int // 0 for network errors
	RequestSize  int64
	ResponseSize int64
	DurationMs   int64
	ErrorKind    string
	ErrorMessage string
	Timestamp    time.Time
}

// Stats aggregates the calls of one collection and operation
type Stats struct {
	Collection       string      `json:"collection" yaml:"collection"`
	Operation        string      `json:"operation" yaml:"operation"`
	TotalCalls       int         `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount     int         `json:"successCount" yaml:"successCount"`
	ErrorCount       int         `json:"errorCount" yaml:"errorCount"`
	ValidationErrors int         `json:"validationErrors" yaml:"validationErrors"`
	NetworkErrors    int         `json:"networkErrors" yaml:"networkErrors"` // DNS, connection refused, etc (status code 0)
	AvgDurationMs    float64     `json:"avgDurationMs" yaml:"avgDurationMs"`
	MinDurationMs    int64       `json:"minDurationMs" yaml:"minDurationMs"`
	MaxDurationMs    int64       `json:"maxDurationMs" yaml:"maxDurationMs"`
	TotalReqSize     int64       `json:"totalReqSize" yaml:"totalReqSize"`
	TotalRespSize    int64       `json:"totalRespSize" yaml:"totalRespSize"`
	StatusCodes      map[int]int `json:"statusCodes" yaml:"statusCodes"`
	LastCalled       time.Time   `json:"lastCalled" yaml:"lastCalled"`
}

// Manager stores gateway calls in SQLite
type Manager struct {
	db    *sql.DB
	cache *statsCache
}

// NewManager opens (or creates) the analytics database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create analytics directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}
	// Concurrent gateway calls all record here; SQLite has a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to analytics database: %w", err)
	}

	m := &Manager{db: db, cache: newStatsCache(statsCacheTTL)}
	if err := m.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return m, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analytics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		collection TEXT NOT NULL,
		operation TEXT NOT NULL,
		method TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		request_size INTEGER NOT NULL DEFAULT 0,
		response_size INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		error_kind TEXT,
		error_message TEXT,
		-- Local time as text; a DATETIME column would be read back as UTC
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analytics_base_url ON analytics(base_url);
	CREATE INDEX IF NOT EXISTS idx_analytics_collection ON analytics(collection, operation);
	CREATE INDEX IF NOT EXISTS idx_analytics_timestamp ON analytics(timestamp);
	`

	_, err := m.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize analytics schema: %w", err)
	}

	return nil
}

// EntryFromCall converts a finished gateway call against baseURL
func EntryFromCall(baseURL string, call api.Call) Entry {
	e := Entry{
		BaseURL:      baseURL,
		Collection:   call.Collection,
		Operation:    call.Operation,
		Method:       call.Method,
		StatusCode:   call.Status,
		RequestSize:  call.RequestSize,
		ResponseSize: call.ResponseSize,
		DurationMs:   call.Duration.Milliseconds(),
		Timestamp:    time.Now(),
	}
	if call.Err != nil {
		e.ErrorMessage = call.Err.Error()
		e.ErrorKind = "other"
		var apiErr *api.Error
		if errors.As(call.Err, &apiErr) {
			e.ErrorKind = apiErr.Kind.String()
		}
	}
	return e
}

// Observer returns a gateway observer that records every call against baseURL.
// Recording failures are logged and never reach the caller.
func (m *Manager) Observer(baseURL string, logger *zap.Logger) func(api.Call) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(call api.Call) {
		if err := m.Save(EntryFromCall(baseURL, call)); err != nil {
			logger.Warn("failed to record gateway call", zap.Error(err))
		}
	}
}

func (m *Manager) Save(entry Entry) error {
	query := `
		INSERT INTO analytics (base_url, collection, operation, method, status_code, request_size, response_size, duration_ms, error_kind, error_message, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	// Format timestamp for SQLite in local time (YYYY-MM-DD HH:MM:SS)
	timestampStr := entry.Timestamp.Local().Format(timestampLayout)

	_, err := m.db.Exec(query,
		entry.BaseURL,
		entry.Collection,
		entry.Operation,
		entry.Method,
		entry.StatusCode,
		entry.RequestSize,
		entry.ResponseSize,
		entry.DurationMs,
		nullString(entry.ErrorKind),
		nullString(entry.ErrorMessage),
		timestampStr,
	)
	if err != nil {
		return fmt.Errorf("failed to save analytics entry: %w", err)
	}

	m.cache.invalidate(entry.BaseURL)
	return nil
}

// LoadRecent returns the latest calls against baseURL, newest first
func (m *Manager) LoadRecent(baseURL string, limit int) ([]Entry, error) {
	query := `
		SELECT id, base_url, collection, operation, method, status_code, request_size, response_size, duration_ms, error_kind, error_message, timestamp
		FROM analytics
		WHERE base_url = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, baseURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

func (m *Manager) scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var e Entry
		var timestamp string
		var errorKind, errorMsg sql.NullString

		err := rows.Scan(
			&e.ID,
			&e.BaseURL,
			&e.Collection,
			&e.Operation,
			&e.Method,
			&e.StatusCode,
			&e.RequestSize,
			&e.ResponseSize,
			&e.DurationMs,
			&errorKind,
			&errorMsg,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analytics entry: %w", err)
		}

		e.ErrorKind = errorKind.String
		e.ErrorMessage = errorMsg.String
		e.Timestamp = parseTimestamp(timestamp)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetStats aggregates the calls against baseURL per collection and operation
func (m *Manager) GetStats(baseURL string) ([]Stats, error) {
	if cached, ok := m.cache.get(baseURL); ok {
		return cached, nil
	}

	// Use a subquery with JSON aggregation to get status codes in a single query
	query := `
		WITH status_codes_agg AS (
			SELECT
				collection,
				operation,
				json_group_object(CAST(status_code AS TEXT), count) as status_codes_json
			FROM (
				SELECT
					collection,
					operation,
					status_code,
					COUNT(*) as count
				FROM analytics
				WHERE base_url = ?
				GROUP BY collection, operation, status_code
			)
			GROUP BY collection, operation
		)
		SELECT
			a.collection,
			a.operation,
			COUNT(*) as total_calls,
			SUM(CASE WHEN a.status_code >= 200 AND a.status_code < 300 AND a.error_kind IS NULL THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN a.error_kind IS NOT NULL THEN 1 ELSE 0 END) as error_count,
			SUM(CASE WHEN a.status_code = 422 THEN 1 ELSE 0 END) as validation_errors,
			SUM(CASE WHEN a.status_code = 0 THEN 1 ELSE 0 END) as network_errors,
			AVG(a.duration_ms) as avg_duration,
			MIN(a.duration_ms) as min_duration,
			MAX(a.duration_ms) as max_duration,
			SUM(a.request_size) as total_req_size,
			SUM(a.response_size) as total_resp_size,
			MAX(a.timestamp) as last_called,
			COALESCE(s.status_codes_json, '{}') as status_codes_json
		FROM analytics a
		LEFT JOIN status_codes_agg s ON a.collection = s.collection AND a.operation = s.operation
		WHERE a.base_url = ?
		GROUP BY a.collection, a.operation
		ORDER BY a.collection, a.operation
	`

	rows, err := m.db.Query(query, baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		var s Stats
		var lastCalled sql.NullString
		var statusCodesJSON string

		err := rows.Scan(
			&s.Collection,
			&s.Operation,
			&s.TotalCalls,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.ValidationErrors,
			&s.NetworkErrors,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&s.TotalReqSize,
			&s.TotalRespSize,
			&lastCalled,
			&statusCodesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}

		if lastCalled.Valid {
			s.LastCalled = parseTimestamp(lastCalled.String)
		}

		// Parse status codes from JSON
		s.StatusCodes = make(map[int]int)
		var statusCodesMap map[string]int
		if err := json.Unmarshal([]byte(statusCodesJSON), &statusCodesMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status codes: %w", err)
		}
		for codeStr, count := range statusCodesMap {
			if code, err := strconv.Atoi(codeStr); err == nil {
				s.StatusCodes[code] = count
			}
		}

		statsList = append(statsList, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	m.cache.set(baseURL, statsList)
	return statsList, nil
}

// Clear removes every recorded call
func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM analytics")
	if err != nil {
		return fmt.Errorf("failed to clear analytics: %w", err)
	}
	m.cache.invalidateAll()
	return nil
}

// ClearForCollection removes the calls made to one collection of baseURL
func (m *Manager) ClearForCollection(baseURL, collection string) error {
	_, err := m.db.Exec("DELETE FROM analytics WHERE base_url = ? AND collection = ?", baseURL, collection)
	if err != nil {
		return fmt.Errorf("failed to clear analytics for collection: %w", err)
	}
	m.cache.invalidate(baseURL)
	return nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// parseTimestamp reads a local SQLite timestamp, falling back to RFC3339
func parseTimestamp(value string) time.Time {
	if t, err := time.ParseInLocation(timestampLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
