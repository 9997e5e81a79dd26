package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrInvalidConnectionString is returned for DSNs lib/pq cannot parse
var ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")

// Database wraps the SQL database connection
type Database struct {
	db *sql.DB
}

// New connects to PostgreSQL and initializes the schema
func New(connStr string) (*Database, error) {
	if strings.TrimSpace(connStr) == "" {
		return nil, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	connector, err := pq.NewConnector(connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying database connection
func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id BIGINT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS retrospectives (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		session_label TEXT NOT NULL,
		session_index INTEGER NOT NULL,
		chat_id BIGINT NOT NULL,
		message_id INTEGER NOT NULL,
		good_points TEXT NOT NULL,
		improvements TEXT NOT NULL,
		learnings TEXT NOT NULL,
		action_item TEXT NOT NULL,
		emotion_score INTEGER,
		emotion_reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, session_label)
	);

	CREATE TABLE IF NOT EXISTS drafts (
		user_id BIGINT PRIMARY KEY,
		good_points TEXT NOT NULL DEFAULT '',
		improvements TEXT NOT NULL DEFAULT '',
		learnings TEXT NOT NULL DEFAULT '',
		action_item TEXT NOT NULL DEFAULT '',
		emotion_score INTEGER,
		emotion_reason TEXT NOT NULL DEFAULT '',
		saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_retrospectives_created ON retrospectives (created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
