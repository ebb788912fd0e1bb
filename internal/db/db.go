// Package db wraps a resolved connection and is the sole point of
// contact with live data.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"

	"github.com/sqlpilot/sqlpilot/internal/conn"
)

const defaultTimeout = 30 * time.Second

// Database is the access facade over a resolved connection.
type Database struct {
	db      *sql.DB
	desc    *conn.Descriptor
	timeout time.Duration
}

// Open connects using the descriptor and verifies the connection with a
// ping.
func Open(desc *conn.Descriptor) (*Database, error) {
	d, err := sql.Open(desc.Driver, desc.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := d.PingContext(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{
		db:      d,
		desc:    desc,
		timeout: defaultTimeout,
	}, nil
}

func (r *Database) Descriptor() *conn.Descriptor {
	return r.desc
}

func (r *Database) Close() error {
	return r.db.Close()
}

// ListTables returns the names of the user tables.
func (r *Database) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, listTablesQuery(r.desc.Driver))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// DescribeSchema takes a comma or newline separated list of table names
// and returns column definitions plus up to three sample rows per table.
func (r *Database) DescribeSchema(ctx context.Context, tablesText string) (string, error) {
	names := splitTableNames(tablesText)
	if len(names) == 0 {
		return "", fmt.Errorf("no table names given")
	}

	var sb strings.Builder
	for _, name := range names {
		if err := r.describeTable(ctx, &sb, name); err != nil {
			return "", err
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (r *Database) describeTable(ctx context.Context, sb *strings.Builder, table string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	columns, err := r.tableColumns(ctx, table)
	if err != nil {
		return err
	}

	fmt.Fprintf(sb, "Table: %s\n", table)
	for _, c := range columns {
		fmt.Fprintf(sb, "  %s %s\n", c.name, c.dataType)
	}

	sample := r.runQuery(ctx, sampleRowsQuery(r.desc.Driver, table))
	if sample != "" {
		fmt.Fprintf(sb, "Sample rows:\n%s\n", indent(sample, "  "))
	}
	sb.WriteString("\n")
	return nil
}

// RunNoThrow executes the SQL and returns the result as text. It never
// returns an error: driver failures become the returned string so the
// later pipeline stages can read and react to them.
func (r *Database) RunNoThrow(ctx context.Context, query string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.runQuery(ctx, query)
}

func (r *Database) runQuery(ctx context.Context, query string) string {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	defer rows.Close()

	text, err := formatRows(rows)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return text
}

func formatRows(rows *sql.Rows) (string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(cols, " | "))
	sb.WriteString("\n")

	count := 0
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		fields := make([]string, len(cols))
		for i, v := range values {
			fields[i] = formatValue(v)
		}
		sb.WriteString(strings.Join(fields, " | "))
		sb.WriteString("\n")
		count++
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(&sb, "(%d rows)", count)
	return sb.String(), nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func splitTableNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var names []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return names
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
