package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Row is one chatKV entry
type Row struct {
	Key   string
	Value string
}

// SampleRows is a logged-in user "Asha Patel" with two saved sessions
func SampleRows() []Row {
	return []Row{
		{Key: "gujjar-gpt-session", Value: "authenticated"},
		{Key: "gujjar-gpt-user-profile", Value: `{"name":"Asha Patel"}`},
		{Key: "user-asha@example.com", Value: `{"name":"Asha Patel","email":"asha@example.com","password":"hunter2"}`},
		{Key: "gujjar-gpt-chats-Asha Patel", Value: `[` +
			`{"id":"1700000002000","title":"Plan a trip to Jaipur","messages":[` +
			`{"id":"user-2","timestamp":"2023-11-14T22:13:22.000Z","role":"user","text":"Plan a trip to Jaipur"},` +
			`{"id":"ai-2","timestamp":"2023-11-14T22:13:25.000Z","role":"model","text":"Day 1: **Amber Fort**.",` +
			`"sources":[{"web":{"uri":"https://en.wikipedia.org/wiki/Jaipur","title":"Jaipur"}}]}]},` +
			`{"id":"1700000001000","title":"/imagine a red fox","messages":[` +
			`{"id":"user-1","timestamp":"2023-11-14T22:13:21.000Z","role":"user","text":"/imagine a red fox"},` +
			`{"id":"ai-1","timestamp":"2023-11-14T22:13:21.500Z","role":"model","text":"Here is the image you asked for.",` +
			`"imageUrl":"data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="}]}` +
			`]`},
	}
}

// CreateSQLiteFixture creates a SQLite database file holding SampleRows
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createChatKVSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	for _, row := range SampleRows() {
		if _, err := db.Exec("INSERT INTO chatKV (key, value) VALUES (?, ?)", row.Key, row.Value); err != nil {
			t.Fatalf("Failed to insert %s: %v", row.Key, err)
		}
	}
}

// CreateImageFixture writes a 1x1 PNG and returns its path
func CreateImageFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "pixel.png")
	if err := os.WriteFile(path, PNGPixel, 0644); err != nil {
		t.Fatalf("Failed to write image fixture: %v", err)
	}
	return path
}

// PNGPixel is a valid 1x1 transparent PNG
var PNGPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x04, 0x00, 0x00, 0x00, 0xb5, 0x1c, 0x0c, 0x02, 0x00, 0x00, 0x00,
	0x0b, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x64, 0x60, 0x00, 0x00,
	0x00, 0x06, 0x00, 0x02, 0x30, 0x81, 0xd0, 0x2f, 0x00, 0x00, 0x00, 0x00,
	0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
