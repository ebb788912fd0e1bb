package db

import (
	"context"
	"fmt"
)

const pgListTablesQuery = `
SELECT tablename
FROM pg_tables
WHERE schemaname NOT IN ('pg_catalog', 'information_schema')
ORDER BY tablename
`

const sqliteListTablesQuery = `
SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name
`

const infoSchemaColumnsQuery = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_name = '%s'
ORDER BY ordinal_position
`

func listTablesQuery(driver string) string {
	switch driver {
	case "postgres":
		return pgListTablesQuery
	case "mysql":
		return "SHOW TABLES"
	case "sqlserver":
		return "SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE' ORDER BY table_name"
	case "snowflake":
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() ORDER BY table_name"
	default:
		return sqliteListTablesQuery
	}
}

func sampleRowsQuery(driver, table string) string {
	if driver == "sqlserver" {
		return fmt.Sprintf("SELECT TOP 3 * FROM %s", table)
	}
	return fmt.Sprintf("SELECT * FROM %s LIMIT 3", table)
}

type column struct {
	name     string
	dataType string
}

func (r *Database) tableColumns(ctx context.Context, table string) ([]column, error) {
	query := fmt.Sprintf(infoSchemaColumnsQuery, table)
	if r.desc.Driver == "sqlite" {
		query = fmt.Sprintf("SELECT name, type FROM pragma_table_info('%s')", table)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []column
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.name, &c.dataType); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}
