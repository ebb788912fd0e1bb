package store

import (
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "connection_store.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmpty(t *testing.T) {
	s := testStore(t)

	rec, err := s.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec != nil {
		t.Errorf("expected no record, got %+v", rec)
	}
}

func TestSaveLoad(t *testing.T) {
	s := testStore(t)

	rec := &Record{
		DBType: "postgres",
		Params: map[string]string{"database": "shop", "host": "db.internal"},
	}
	if err := s.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || got.DBType != "postgres" || got.Params["database"] != "shop" {
		t.Errorf("loaded: %+v", got)
	}
}

func TestSaveReplaces(t *testing.T) {
	s := testStore(t)

	s.Save(&Record{DBType: "mysql", Params: map[string]string{"database": "a"}})
	s.Save(&Record{DBType: "sqlite", Params: map[string]string{"db_path": "b.db"}})

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DBType != "sqlite" || got.Params["db_path"] != "b.db" {
		t.Errorf("expected last record to win, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	s := testStore(t)

	s.Save(&Record{DBType: "mysql", Params: map[string]string{"database": "a"}})
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	rec, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec != nil {
		t.Errorf("expected no record after clear, got %+v", rec)
	}
}
