package conn

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// Kind identifies a supported data source flavor.
type Kind string

const (
	Sqlite    Kind = "sqlite"
	MySQL     Kind = "mysql"
	Postgres  Kind = "postgres"
	MSSQL     Kind = "mssql"
	Snowflake Kind = "snowflake"
	CSV       Kind = "csv"
)

// aliases accepted from the API for each kind.
var kindAliases = map[string]Kind{
	"sqlite":     Sqlite,
	"file":       Sqlite,
	"mysql":      MySQL,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"mssql":      MSSQL,
	"sqlserver":  MSSQL,
	"snowflake":  Snowflake,
	"warehouse":  Snowflake,
	"csv":        CSV,
}

const (
	downloadedDBName = "downloaded_database.db"
	csvStoreName     = "uploaded_data.db"

	// CsvTableName is the fixed table a flat file is materialized into.
	CsvTableName = "uploaded_data"
)

// Descriptor is the resolved, canonical identity of a data source. DSN is
// understood by the database/sql driver named by Driver.
type Descriptor struct {
	Kind     Kind
	Driver   string
	DSN      string
	Database string
}

// Resolver turns (kind, parameters) into a Descriptor. Downloaded
// databases and materialized flat files are written under DataDir.
type Resolver struct {
	DataDir string

	client *http.Client
}

func NewResolver(dataDir string) *Resolver {
	return &Resolver{
		DataDir: dataDir,
		client:  http.DefaultClient,
	}
}

// ParseKind maps an API db_type value to a Kind.
func ParseKind(dbType string) (Kind, error) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(dbType))]
	if !ok {
		return "", NewConfigErrorf("unsupported database type: %s", dbType)
	}
	return kind, nil
}

// Resolve validates the parameter set for the kind and builds a
// Descriptor. For sqlite-by-url and csv sources it materializes a local
// file first; repeated calls overwrite the previous copy.
func (r *Resolver) Resolve(kind Kind, params map[string]string) (*Descriptor, error) {
	switch kind {
	case Sqlite:
		return r.resolveSqlite(params)
	case MySQL:
		return resolveMySQL(params)
	case Postgres:
		return resolvePostgres(params)
	case MSSQL:
		return resolveMSSQL(params)
	case Snowflake:
		return resolveSnowflake(params)
	case CSV:
		return r.resolveCSV(params)
	}
	return nil, NewConfigErrorf("unsupported database type: %s", kind)
}

func (r *Resolver) resolveSqlite(params map[string]string) (*Descriptor, error) {
	path := params["db_path"]
	if url := params["url"]; url != "" {
		local := filepath.Join(r.DataDir, downloadedDBName)
		if err := r.fetchFile(url, local); err != nil {
			return nil, err
		}
		path = local
	} else if path == "" {
		path = filepath.Join(r.DataDir, downloadedDBName)
	}
	return &Descriptor{
		Kind:     Sqlite,
		Driver:   "sqlite",
		DSN:      path,
		Database: filepath.Base(path),
	}, nil
}

func resolveMySQL(params map[string]string) (*Descriptor, error) {
	database := params["database"]
	if database == "" {
		return nil, NewConfigErrorf("database name is required for MySQL")
	}
	user := orDefault(params, "user", "root")
	password := params["password"]
	host := orDefault(params, "host", "localhost")
	port := orDefault(params, "port", "3306")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, password, host, port, database)
	return &Descriptor{
		Kind:     MySQL,
		Driver:   "mysql",
		DSN:      dsn,
		Database: database,
	}, nil
}

func resolvePostgres(params map[string]string) (*Descriptor, error) {
	database := params["database"]
	if database == "" {
		return nil, NewConfigErrorf("database name is required for PostgreSQL")
	}
	user := orDefault(params, "user", "postgres")
	password := params["password"]
	host := orDefault(params, "host", "localhost")
	port := orDefault(params, "port", "5432")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, database)
	return &Descriptor{
		Kind:     Postgres,
		Driver:   "postgres",
		DSN:      dsn,
		Database: database,
	}, nil
}

func resolveMSSQL(params map[string]string) (*Descriptor, error) {
	user := params["user"]
	password := params["password"]
	database := params["database"]
	if user == "" || password == "" || database == "" {
		return nil, NewConfigErrorf("user, password, and database are required for MS SQL Server")
	}
	host := orDefault(params, "host", "localhost")
	port := orDefault(params, "port", "1433")
	driver := orDefault(params, "driver", "ODBC Driver 17 for SQL Server")
	// spaces are not URI safe
	driver = strings.ReplaceAll(driver, " ", "+")

	dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s&driver=%s",
		user, password, host, port, database, driver)
	return &Descriptor{
		Kind:     MSSQL,
		Driver:   "sqlserver",
		DSN:      dsn,
		Database: database,
	}, nil
}

func resolveSnowflake(params map[string]string) (*Descriptor, error) {
	required := []string{"account", "user", "password", "warehouse", "schema", "database"}
	for _, name := range required {
		if params[name] == "" {
			return nil, NewConfigErrorf("%s is required for Snowflake", name)
		}
	}
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s?warehouse=%s",
		params["user"], params["password"], params["account"],
		params["database"], params["schema"], params["warehouse"])
	return &Descriptor{
		Kind:     Snowflake,
		Driver:   "snowflake",
		DSN:      dsn,
		Database: params["database"],
	}, nil
}

func (r *Resolver) resolveCSV(params map[string]string) (*Descriptor, error) {
	path := params["file_path"]
	url := params["url"]
	if path == "" && url == "" {
		return nil, NewConfigErrorf("file_path or url is required for CSV")
	}

	store := filepath.Join(r.DataDir, csvStoreName)
	var err error
	if url != "" {
		err = r.materializeCSVFromURL(url, store)
	} else {
		err = materializeCSVFromFile(path, store)
	}
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		Kind:     CSV,
		Driver:   "sqlite",
		DSN:      store,
		Database: CsvTableName,
	}, nil
}

func orDefault(params map[string]string, name, fallback string) string {
	if v := params[name]; v != "" {
		return v
	}
	return fallback
}
