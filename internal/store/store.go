// Package store persists the single last-used connection record.
package store

import (
	"database/sql"
	"encoding/json"

	_ "modernc.org/sqlite"
)

const connectionsDDL = `CREATE TABLE IF NOT EXISTS connections (
	id INTEGER PRIMARY KEY,
	db_type TEXT,
	connection_params TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// Record is the persisted connection. Absence of a record means not
// connected.
type Record struct {
	DBType string
	Params map[string]string
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(connectionsDDL); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (r *Store) Close() error {
	return r.db.Close()
}

// Save replaces any existing record with rec.
func (r *Store) Save(rec *Record) error {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM connections"); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO connections (db_type, connection_params) VALUES (?, ?)",
		rec.DBType, string(params),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored record, or nil if there is none.
func (r *Store) Load() (*Record, error) {
	row := r.db.QueryRow("SELECT db_type, connection_params FROM connections LIMIT 1")

	var dbType, paramsJSON string
	if err := row.Scan(&dbType, &paramsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var params map[string]string
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
		return nil, err
	}
	return &Record{DBType: dbType, Params: params}, nil
}

func (r *Store) Clear() error {
	_, err := r.db.Exec("DELETE FROM connections")
	return err
}
