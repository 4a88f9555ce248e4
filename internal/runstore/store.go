// Package runstore persists run outcomes as JSON files in the output
// directory.
package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"headerflow/internal/core"
)

// Store writes structured results under a base directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created on first
// write, not here.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the base output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data as indented JSON. An empty filename gets a timestamped
// default. Returns the path written.
func (s *Store) Save(data any, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("headers_%d.json", time.Now().Unix())
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding results: %w", err)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing results: %w", err)
	}
	return path, nil
}

// StepRecord is the serialized form of one step result.
type StepRecord struct {
	Name          string         `json:"name"`
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime string         `json:"execution_time"`
	StatusCode    int            `json:"status_code,omitempty"`
	FinalURL      string         `json:"final_url,omitempty"`
}

// SaveResults serializes step results in execution order. Raw response
// handles are reduced to status code and final URL; bodies are not persisted.
func (s *Store) SaveResults(order []string, results map[string]*core.StepResult, filename string) (string, error) {
	records := make([]StepRecord, 0, len(order))
	for _, name := range order {
		result, ok := results[name]
		if !ok {
			continue
		}
		rec := StepRecord{
			Name:          result.Name,
			Success:       result.Success,
			Data:          result.Data,
			Error:         result.Error,
			ExecutionTime: result.ExecutionTime.String(),
		}
		if result.Response != nil {
			rec.StatusCode = result.Response.StatusCode
			rec.FinalURL = result.Response.FinalURL
		}
		records = append(records, rec)
	}
	return s.Save(records, filename)
}
