package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqlpilot/sqlpilot/internal/conn"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	d, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer d.Close()

	ddl := []string{
		`CREATE TABLE artists (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE albums (id INTEGER PRIMARY KEY, artist_id INTEGER, title TEXT)`,
		`INSERT INTO artists (name) VALUES ('Queen'), ('Led Zeppelin')`,
		`INSERT INTO albums (artist_id, title) VALUES (1, 'A Night at the Opera')`,
	}
	for _, stmt := range ddl {
		if _, err := d.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	database, err := Open(&conn.Descriptor{Kind: conn.Sqlite, Driver: "sqlite", DSN: path, Database: "test.db"})
	if err != nil {
		t.Fatalf("facade open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestListTables(t *testing.T) {
	database := testDatabase(t)

	tables, err := database.ListTables(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tables) != 2 || tables[0] != "albums" || tables[1] != "artists" {
		t.Errorf("tables: got %v", tables)
	}
}

func TestDescribeSchema(t *testing.T) {
	database := testDatabase(t)

	schema, err := database.DescribeSchema(context.Background(), "artists, albums")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{"Table: artists", "Table: albums", "name TEXT", "artist_id INTEGER", "Sample rows:", "Queen"} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %q:\n%s", want, schema)
		}
	}
}

func TestDescribeSchemaUnknownTable(t *testing.T) {
	database := testDatabase(t)

	if _, err := database.DescribeSchema(context.Background(), "no_such_table"); err == nil {
		t.Errorf("expected error for unknown table")
	}
}

func TestRunNoThrowNeverRaises(t *testing.T) {
	database := testDatabase(t)

	out := database.RunNoThrow(context.Background(), "SELECT nope FROM nowhere")
	if !strings.HasPrefix(out, "Error:") {
		t.Errorf("expected error text, got %q", out)
	}
}

func TestRunNoThrowResult(t *testing.T) {
	database := testDatabase(t)

	out := database.RunNoThrow(context.Background(), "SELECT name FROM artists ORDER BY name")
	if !strings.Contains(out, "Led Zeppelin") || !strings.Contains(out, "Queen") {
		t.Errorf("result missing rows: %q", out)
	}
	if !strings.Contains(out, "(2 rows)") {
		t.Errorf("result missing row count: %q", out)
	}
}
