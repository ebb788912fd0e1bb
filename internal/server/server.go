// Package server is the HTTP boundary: it resolves and persists
// connections and maps requests onto the query and visualization
// pipelines.
package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/sqlpilot/sqlpilot/internal/conn"
	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/log"
	"github.com/sqlpilot/sqlpilot/internal/store"
)

type Config struct {
	Address    string
	CORSOrigin string
	DataDir    string
	StorePath  string

	// pipeline variant
	Examine   bool
	Optimize  bool
	VizAdvise bool
}

type Server struct {
	cfg       *Config
	completer llm.Completer
	resolver  *conn.Resolver
	store     *store.Store

	// The active connection is process-wide and replaceable; the lock
	// and version make a swap during concurrent queries well defined.
	mu      sync.RWMutex
	version uint64
	active  *db.Database
}

func New(cfg *Config, completer llm.Completer) (*Server, error) {
	storePath := cfg.StorePath
	if storePath == "" {
		storePath = filepath.Join(cfg.DataDir, "connection_store.db")
	}
	st, err := store.Open(storePath)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		completer: completer,
		resolver:  conn.NewResolver(cfg.DataDir),
		store:     st,
	}, nil
}

func (r *Server) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Close()
		r.active = nil
	}
	return r.store.Close()
}

func (r *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/check-connection", r.checkConnectionHandler)
	mux.HandleFunc("/disconnect-database", r.disconnectHandler)
	mux.HandleFunc("/add-database", r.addDatabaseHandler)
	mux.HandleFunc("/query", r.queryHandler)
	return cors(r.cfg.CORSOrigin, mux)
}

func (r *Server) ListenAndServe() error {
	log.Infof("Server listening on %s\n", r.cfg.Address)
	return http.ListenAndServe(r.cfg.Address, r.Handler())
}

// swap resolves and activates a new connection, replacing the previous
// one under the lock.
func (r *Server) swap(database *db.Database) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Close()
	}
	r.active = database
	r.version++
	log.Infof("connection v%d: %s %s\n", r.version, database.Descriptor().Kind, database.Descriptor().Database)
}

// current returns the active connection, restoring it from the
// persisted record when the process has not connected yet.
func (r *Server) current() (*db.Database, error) {
	r.mu.RLock()
	active := r.active
	r.mu.RUnlock()
	if active != nil {
		return active, nil
	}

	rec, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("no database connected")
	}

	kind, err := conn.ParseKind(rec.DBType)
	if err != nil {
		return nil, err
	}
	desc, err := r.resolver.Resolve(kind, rec.Params)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(desc)
	if err != nil {
		return nil, err
	}
	r.swap(database)
	return database, nil
}
