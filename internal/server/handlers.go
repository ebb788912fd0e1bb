package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/agent"
	"github.com/sqlpilot/sqlpilot/internal/conn"
	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/log"
	"github.com/sqlpilot/sqlpilot/internal/store"
	"github.com/sqlpilot/sqlpilot/internal/viz"
)

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type connectionStatus struct {
	IsConnected  bool    `json:"is_connected"`
	DBType       *string `json:"db_type"`
	DatabaseName *string `json:"database_name"`
}

func (r *Server) checkConnectionHandler(w http.ResponseWriter, req *http.Request) {
	rec, err := r.store.Load()
	if err != nil || rec == nil {
		if err != nil {
			log.Errorf("check connection: %v\n", err)
		}
		writeJSON(w, http.StatusOK, &connectionStatus{})
		return
	}

	name := rec.Params["database"]
	if name == "" {
		name = rec.Params["db_path"]
	}
	if name == "" {
		name = "Database"
	}
	writeJSON(w, http.StatusOK, &connectionStatus{
		IsConnected:  true,
		DBType:       &rec.DBType,
		DatabaseName: &name,
	})
}

func (r *Server) disconnectHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.store.Clear(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.mu.Lock()
	if r.active != nil {
		r.active.Close()
		r.active = nil
		r.version++
	}
	r.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully disconnected"})
}

type addDatabaseRequest struct {
	DBType string            `json:"db_type"`
	Params map[string]string `json:"connection_params"`
}

func (r *Server) addDatabaseHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body addDatabaseRequest
	var err error
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		body, err = r.parseUploadForm(req)
	} else {
		err = json.NewDecoder(req.Body).Decode(&body)
	}
	if err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := conn.ParseKind(body.DBType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	desc, err := r.resolver.Resolve(kind, body.Params)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	database, err := db.Open(desc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// persist only after the connection has been verified
	if err := r.store.Save(&store.Record{DBType: body.DBType, Params: body.Params}); err != nil {
		database.Close()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.swap(database)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Database connected successfully"})
}

// parseUploadForm handles flat-file uploads: the file is stored under
// the data directory and treated as a local source.
func (r *Server) parseUploadForm(req *http.Request) (addDatabaseRequest, error) {
	var body addDatabaseRequest

	if err := req.ParseMultipartForm(64 << 20); err != nil {
		return body, err
	}
	body.DBType = req.FormValue("db_type")
	body.Params = map[string]string{}
	for name, values := range req.MultipartForm.Value {
		if name != "db_type" && len(values) > 0 {
			body.Params[name] = values[0]
		}
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return body, err
	}
	defer file.Close()

	dir := filepath.Join(r.cfg.DataDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return body, err
	}
	path := filepath.Join(dir, filepath.Base(header.Filename))
	out, err := os.Create(path)
	if err != nil {
		return body, err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		return body, err
	}

	body.Params["file_path"] = path
	return body, nil
}

type queryRequest struct {
	Query       string `json:"query"`
	VizEnabled  *bool  `json:"vizEnabled"`
	TabularMode bool   `json:"tabularMode"`
}

type queryResponse struct {
	QueryResult string  `json:"query_result"`
	QueryUsed   string  `json:"query_used"`
	VizResult   *string `json:"viz_result"`
}

func (r *Server) queryHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body queryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	vizEnabled := body.VizEnabled == nil || *body.VizEnabled

	database, err := r.current()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pipeline := agent.New(r.completer, database, agent.Options{
		Examine:  r.cfg.Examine,
		Optimize: r.cfg.Optimize,
		Tabular:  body.TabularMode,
	})
	result, err := pipeline.Run(req.Context(), body.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := &queryResponse{
		QueryResult: result.Answer,
		QueryUsed:   result.SQLUsed,
	}
	if vizEnabled {
		if uri := r.renderChart(req, result.Answer); uri != "" {
			resp.VizResult = &uri
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// renderChart gates the visualization pipeline behind the singularity
// classifier. Any failure here only suppresses the chart.
func (r *Server) renderChart(req *http.Request, answer string) string {
	singular, err := agent.IsSingular(req.Context(), r.completer, answer)
	if err != nil {
		log.Errorf("singularity classifier: %v\n", err)
		return ""
	}
	if singular {
		return ""
	}

	out := viz.New(r.completer, r.cfg.VizAdvise).Run(req.Context(), answer)
	if !strings.HasPrefix(out, viz.DataURIPrefix) {
		log.Errorf("visualization: %s\n", out)
		return ""
	}
	return out
}

func statusFor(err error) int {
	var configErr *conn.ConfigError
	var contentErr *conn.InvalidContentError
	if errors.As(err, &configErr) || errors.As(err, &contentErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
