package conn

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveSqlitePath(t *testing.T) {
	r := NewResolver(t.TempDir())

	desc, err := r.Resolve(Sqlite, map[string]string{"db_path": "/tmp/chinook.db"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if desc.Driver != "sqlite" {
		t.Errorf("driver: got %q", desc.Driver)
	}
	if desc.DSN != "/tmp/chinook.db" {
		t.Errorf("dsn: got %q", desc.DSN)
	}
	if desc.Database != "chinook.db" {
		t.Errorf("database: got %q", desc.Database)
	}
}

func TestResolveSqliteURL(t *testing.T) {
	payload := []byte("not really a database")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	dir := t.TempDir()
	r := NewResolver(dir)

	desc, err := r.Resolve(Sqlite, map[string]string{"url": ts.URL})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data, err := os.ReadFile(desc.DSN)
	if err != nil {
		t.Fatalf("downloaded file: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("downloaded content mismatch")
	}
	if filepath.Dir(desc.DSN) != dir {
		t.Errorf("expected download under %s, got %s", dir, desc.DSN)
	}
}

func TestResolveSqliteURLDownloadError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	r := NewResolver(t.TempDir())
	_, err := r.Resolve(Sqlite, map[string]string{"url": ts.URL})

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if dlErr.Status != http.StatusNotFound {
		t.Errorf("status: got %d", dlErr.Status)
	}
}

func TestResolveMySQLDefaults(t *testing.T) {
	desc, err := resolveMySQL(map[string]string{"database": "shop"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "root:@tcp(localhost:3306)/shop"
	if desc.DSN != want {
		t.Errorf("dsn: got %q, want %q", desc.DSN, want)
	}
}

func TestResolvePostgresDefaults(t *testing.T) {
	desc, err := resolvePostgres(map[string]string{"database": "shop", "password": "secret"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "host=localhost port=5432 user=postgres password=secret dbname=shop sslmode=disable"
	if desc.DSN != want {
		t.Errorf("dsn: got %q, want %q", desc.DSN, want)
	}
}

func TestResolveMSSQLDriverEncoding(t *testing.T) {
	desc, err := resolveMSSQL(map[string]string{
		"user":     "sa",
		"password": "secret",
		"database": "shop",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(desc.DSN, "driver=ODBC+Driver+17+for+SQL+Server") {
		t.Errorf("dsn missing encoded driver: %q", desc.DSN)
	}
	if desc.Driver != "sqlserver" {
		t.Errorf("driver: got %q", desc.Driver)
	}
}

func TestResolveMissingParams(t *testing.T) {
	tests := []struct {
		kind   Kind
		params map[string]string
	}{
		{MySQL, map[string]string{"user": "root"}},
		{Postgres, map[string]string{}},
		{MSSQL, map[string]string{"user": "sa", "database": "shop"}},
		{Snowflake, map[string]string{"account": "ab123", "user": "x", "password": "y"}},
		{CSV, map[string]string{}},
	}

	r := NewResolver(t.TempDir())
	for _, tc := range tests {
		_, err := r.Resolve(tc.kind, tc.params)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: expected ConfigError, got %v", tc.kind, err)
		}
	}
}

func TestResolveSnowflake(t *testing.T) {
	desc, err := resolveSnowflake(map[string]string{
		"account":   "ab123",
		"user":      "analyst",
		"password":  "secret",
		"warehouse": "compute_wh",
		"schema":    "public",
		"database":  "sales",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "analyst:secret@ab123/sales/public?warehouse=compute_wh"
	if desc.DSN != want {
		t.Errorf("dsn: got %q, want %q", desc.DSN, want)
	}
}

func TestResolveCSVRejectsHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>error page</body></html>"))
	}))
	defer ts.Close()

	r := NewResolver(t.TempDir())
	_, err := r.Resolve(CSV, map[string]string{"url": ts.URL})

	var contentErr *InvalidContentError
	if !errors.As(err, &contentErr) {
		t.Fatalf("expected InvalidContentError, got %v", err)
	}
}

func TestResolveCSVMaterializes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("artist,sales\nQueen,42\nLed Zeppelin,99\n"))
	}))
	defer ts.Close()

	r := NewResolver(t.TempDir())
	desc, err := r.Resolve(CSV, map[string]string{"url": ts.URL})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if desc.Driver != "sqlite" {
		t.Errorf("driver: got %q", desc.Driver)
	}

	d, err := sql.Open("sqlite", desc.DSN)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer d.Close()

	var count int
	if err := d.QueryRow("SELECT count(*) FROM " + CsvTableName).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("rows: got %d, want 2", count)
	}
}

func TestResolveCSVReplacesPriorContents(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir)

	first := filepath.Join(dir, "a.csv")
	os.WriteFile(first, []byte("x,y\n1,2\n3,4\n5,6\n"), 0o644)
	second := filepath.Join(dir, "b.csv")
	os.WriteFile(second, []byte("x,y\n7,8\n"), 0o644)

	if _, err := r.Resolve(CSV, map[string]string{"file_path": first}); err != nil {
		t.Fatalf("first: %v", err)
	}
	desc, err := r.Resolve(CSV, map[string]string{"file_path": second})
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	d, err := sql.Open("sqlite", desc.DSN)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer d.Close()

	var count int
	if err := d.QueryRow("SELECT count(*) FROM " + CsvTableName).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows: got %d, want 1 (last write wins)", count)
	}
}

func TestParseKindAliases(t *testing.T) {
	tests := map[string]Kind{
		"sqlite":     Sqlite,
		"PostgreSQL": Postgres,
		"sqlserver":  MSSQL,
		"warehouse":  Snowflake,
	}
	for in, want := range tests {
		kind, err := ParseKind(in)
		if err != nil {
			t.Errorf("%s: %v", in, err)
			continue
		}
		if kind != want {
			t.Errorf("%s: got %s, want %s", in, kind, want)
		}
	}

	if _, err := ParseKind("oracle"); err == nil {
		t.Errorf("expected error for unsupported type")
	}
}
