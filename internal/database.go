package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const createChatKVSQL = `
CREATE TABLE IF NOT EXISTS chatKV (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// SQLiteStore is the default Store, one chatKV table in a single file
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenDatabase opens (creating if needed) a SQLite database for read-write use
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens path and ensures the chatKV table exists
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Key: path, Err: err}
	}
	if _, err := db.Exec(createChatKVSQL); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Key: path, Err: fmt.Errorf("create table: %w", err)}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM chatKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO chatKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM chatKV WHERE key = ?", key); err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Keys lists keys starting with prefix using a LIKE pattern
func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	pairs, err := QueryChatKV(s.db, escapeLike(prefix)+"%")
	if err != nil {
		return nil, &StorageError{Op: "list", Key: prefix, Err: err}
	}
	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		keys = append(keys, pair.Key)
	}
	return keys, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// QueryChatKV queries the chatKV table with a LIKE pattern
func QueryChatKV(db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := `SELECT key, value FROM chatKV WHERE key LIKE ? ESCAPE '\' AND value IS NOT NULL ORDER BY key`
	rows, err := db.Query(query, pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// KeyValuePair represents a row of chatKV
type KeyValuePair struct {
	Key   string
	Value string
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
