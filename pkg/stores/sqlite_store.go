package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/evalgraph/evalgraph/pkg/memo"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// schema is created on Init. One row per memoized result, keyed by the
// dispatch type and the structural task identity.
const schema = `
CREATE TABLE IF NOT EXISTS memo_entries (
	result_type TEXT NOT NULL,
	task_name   TEXT NOT NULL,
	task_key    TEXT NOT NULL,
	value       BLOB NOT NULL,
	stored_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (result_type, task_name, task_key)
);

CREATE INDEX IF NOT EXISTS idx_memo_entries_stored_at ON memo_entries(stored_at);
`

// SQLiteStore persists memoized task results in a SQLite database, so
// results survive process restarts and can be shared between runs.
type SQLiteStore struct {
	db        *sql.DB
	cfg       Config
	transport task.Transport
}

// Config holds SQLite store configuration.
type Config struct {
	// Path is the database file path, or ":memory:" for an ephemeral
	// database. Required.
	Path string

	// MaxOpenConns caps the connection pool. Defaults to 25.
	MaxOpenConns int

	// MaxIdleConns caps idle pooled connections. Defaults to 5.
	MaxIdleConns int

	// ConnMaxLifetime bounds how long a pooled connection is reused.
	// Defaults to 5 minutes.
	ConnMaxLifetime time.Duration

	// Transport encodes stored values. Nil selects task.DefaultTransport.
	Transport task.Transport
}

// NewSQLiteStore creates a new SQLite store instance. The database is not
// touched until Init.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Set defaults
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	transport := cfg.Transport
	if transport == nil {
		transport = task.DefaultTransport
	}

	return &SQLiteStore{
		cfg:       cfg,
		transport: transport,
	}, nil
}

// Init opens the database in WAL mode, configures the connection pool,
// and creates the schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", s.cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool. An in-memory database exists per
	// connection, so the pool must collapse to a single connection or
	// every conn would see its own empty database.
	maxOpen, maxIdle := s.cfg.MaxOpenConns, s.cfg.MaxIdleConns
	if s.cfg.Path == ":memory:" {
		maxOpen, maxIdle = 1, 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}

// Strategy returns a memoization strategy reading and writing results of
// the given type in this store. Register it per result type:
//
//	reg.Register("ArtifactList", store.Strategy("ArtifactList"))
//
// The returned strategy shares this store's connection pool; the store
// must be initialized before the first evaluation uses it.
func (s *SQLiteStore) Strategy(rt task.ResultType) memo.Strategy {
	return &sqliteStrategy{store: s, resultType: rt}
}

// sqliteStrategy adapts the store to the context-free strategy interface.
type sqliteStrategy struct {
	store      *SQLiteStore
	resultType task.ResultType
}

func (st *sqliteStrategy) Lookup(t task.Task) (any, bool, error) {
	return st.store.Lookup(context.Background(), st.resultType, t.ID())
}

func (st *sqliteStrategy) Store(t task.Task, v any) error {
	return st.store.Store(context.Background(), st.resultType, t.ID(), v)
}

// Lookup fetches the stored value for a task identity. The boolean
// reports whether an entry existed.
func (s *SQLiteStore) Lookup(ctx context.Context, rt task.ResultType, id task.ID) (any, bool, error) {
	query := `
		SELECT value
		FROM memo_entries
		WHERE result_type = ? AND task_name = ? AND task_key = ?
	`

	var blob []byte
	err := s.db.QueryRowContext(ctx, query, string(rt), id.Name, id.Key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up entry: %w", err)
	}

	var v any
	if err := s.transport.Unmarshal(blob, &v); err != nil {
		return nil, false, fmt.Errorf("failed to decode entry %s: %w", id, err)
	}

	return v, true, nil
}

// Store persists v under a task identity, replacing any previous entry.
func (s *SQLiteStore) Store(ctx context.Context, rt task.ResultType, id task.ID, v any) error {
	blob, err := s.transport.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", id, err)
	}

	query := `
		INSERT INTO memo_entries (result_type, task_name, task_key, value, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(result_type, task_name, task_key) DO UPDATE SET
			value = excluded.value,
			stored_at = excluded.stored_at
	`

	storedAt := time.Now().UTC().Format("2006-01-02 15:04:05")
	if _, err := s.db.ExecContext(ctx, query, string(rt), id.Name, id.Key, blob, storedAt); err != nil {
		return fmt.Errorf("failed to store entry: %w", err)
	}

	return nil
}

// Delete removes the entry for a task identity.
func (s *SQLiteStore) Delete(ctx context.Context, rt task.ResultType, id task.ID) error {
	query := `DELETE FROM memo_entries WHERE result_type = ? AND task_name = ? AND task_key = ?`

	result, err := s.db.ExecContext(ctx, query, string(rt), id.Name, id.Key)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("entry not found: %s", id)
	}

	return nil
}

// List returns the decoded entries for one result type, newest first,
// with pagination.
func (s *SQLiteStore) List(ctx context.Context, rt task.ResultType, limit, offset int) ([]*Entry, error) {
	query := `
		SELECT result_type, task_name, task_key, value, stored_at
		FROM memo_entries
		WHERE result_type = ?
		ORDER BY stored_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, string(rt), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry := &Entry{}
		var resultType string
		var blob []byte
		err := rows.Scan(
			&resultType,
			&entry.TaskName,
			&entry.TaskKey,
			&blob,
			&entry.StoredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		entry.ResultType = task.ResultType(resultType)
		if err := s.transport.Unmarshal(blob, &entry.Value); err != nil {
			return nil, fmt.Errorf("failed to decode entry %s: %w", entry.ID(), err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// Sweep deletes entries stored before the cutoff and reports how many
// were removed.
func (s *SQLiteStore) Sweep(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM memo_entries WHERE datetime(stored_at) <= datetime(?)`

	cutoff := time.Now().Add(-olderThan).UTC().Format("2006-01-02 15:04:05")
	result, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
