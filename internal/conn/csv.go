package conn

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"
)

var columnNameRe = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func (r *Resolver) materializeCSVFromURL(url, store string) error {
	data, err := r.fetchCSV(url)
	if err != nil {
		return err
	}
	if err := materializeCSV(csv.NewReader(bytes.NewReader(data)), store); err != nil {
		return &CsvError{Path: url, Err: err}
	}
	return nil
}

func materializeCSVFromFile(path, store string) error {
	f, err := os.Open(path)
	if err != nil {
		return &CsvError{Path: path, Err: err}
	}
	defer f.Close()

	if err := materializeCSV(csv.NewReader(f), store); err != nil {
		return &CsvError{Path: path, Err: err}
	}
	return nil
}

// materializeCSV loads the rows into the fixed table inside a local
// sqlite store, replacing any prior contents. All columns are TEXT; type
// inference is left to the query layer.
func materializeCSV(reader *csv.Reader, store string) error {
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("missing header row: %w", err)
	}
	if len(header) == 0 {
		return fmt.Errorf("empty header row")
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = sanitizeColumn(name, i)
	}

	if err := os.MkdirAll(filepath.Dir(store), 0o755); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", store)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", CsvTableName)); err != nil {
		return err
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("%q TEXT", c)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", CsvTableName, strings.Join(defs, ", "))
	if _, err := tx.Exec(ddl); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", CsvTableName, placeholders))
	if err != nil {
		return err
	}
	defer insert.Close()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		row := make([]any, len(columns))
		for i := range columns {
			if i < len(record) {
				row[i] = record[i]
			} else {
				row[i] = ""
			}
		}
		if _, err := insert.Exec(row...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func sanitizeColumn(name string, index int) string {
	name = strings.TrimSpace(name)
	name = columnNameRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = fmt.Sprintf("column_%d", index+1)
	}
	return name
}
