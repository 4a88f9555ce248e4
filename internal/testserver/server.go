// Package testserver provides a local httpbin-style server for exercising
// captures and sequences without external dependencies.
package testserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxDelay caps the /delay endpoint to keep misconfigured sequences from
// hanging the server.
const maxDelay = 10 * time.Second

// Server is a configurable HTTP test server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a test server with all endpoints configured.
func NewServer() *Server {
	s := &Server{
		mux: http.NewServeMux(),
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/get", s.handleGet)
	s.mux.HandleFunc("/post", s.handlePost)
	s.mux.HandleFunc("/headers", s.handleHeaders)
	s.mux.HandleFunc("/user-agent", s.handleUserAgent)
	s.mux.HandleFunc("/status/", s.handleStatus)
	s.mux.HandleFunc("/delay/", s.handleDelay)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handleGet echoes the query arguments, headers, and caller address.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	args := make(map[string]string)
	for k, values := range r.URL.Query() {
		args[k] = strings.Join(values, ",")
	}

	writeJSON(w, map[string]any{
		"args":    args,
		"headers": flattenHeaders(r.Header),
		"origin":  origin(r),
		"url":     requestURL(r),
	})
}

// handlePost echoes the request body. A JSON body is parsed into the "json"
// field; anything else lands raw in "data".
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))

	resp := map[string]any{
		"data":    string(body),
		"headers": flattenHeaders(r.Header),
		"origin":  origin(r),
		"url":     requestURL(r),
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		resp["json"] = parsed
	}

	writeJSON(w, resp)
}

func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"headers": flattenHeaders(r.Header)})
}

func (s *Server) handleUserAgent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"user-agent": r.Header.Get("User-Agent")})
}

// handleStatus returns the specified HTTP status code.
// Example: GET /status/404 returns 404 Not Found.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/status/")
	code, err := strconv.Atoi(path)
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
	fmt.Fprintf(w, "%d %s", code, http.StatusText(code))
}

// handleDelay waits for the given duration before responding.
// Example: GET /delay/500ms
func (s *Server) handleDelay(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/delay/")
	d, err := time.ParseDuration(path)
	if err != nil || d < 0 {
		http.Error(w, "invalid delay", http.StatusBadRequest)
		return
	}
	if d > maxDelay {
		d = maxDelay
	}

	select {
	case <-time.After(d):
	case <-r.Context().Done():
		return
	}
	writeJSON(w, map[string]any{"delayed": d.String()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, values := range h {
		out[k] = strings.Join(values, ", ")
	}
	return out
}

func origin(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.String()
}
