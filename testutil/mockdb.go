package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createChatKVSQL = `
	CREATE TABLE IF NOT EXISTS chatKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`

// CreateInMemoryDB creates an in-memory SQLite database with an empty chatKV table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createChatKVSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create chatKV table: %v", err)
	}

	return db
}

// CreateTestDB creates an in-memory database holding SampleRows
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	stmt, err := db.Prepare("INSERT INTO chatKV (key, value) VALUES (?, ?)")
	if err != nil {
		db.Close()
		t.Fatalf("Failed to prepare insert statement: %v", err)
	}
	defer stmt.Close()

	for _, row := range SampleRows() {
		if _, err := stmt.Exec(row.Key, row.Value); err != nil {
			db.Close()
			t.Fatalf("Failed to insert %s: %v", row.Key, err)
		}
	}

	return db
}
