// Package core defines the fundamental types shared by the sequence runner.
package core

import (
	"net/http"
	"time"
)

// Context carries values between steps in a sequence run. Keys are written by
// extraction rules and read back during interpolation and by user-supplied
// field functions. A Context grows monotonically during a run; nothing deletes
// or resets keys between steps.
type Context map[string]any

// NewContext returns an empty Context.
func NewContext() Context {
	return make(Context)
}

// Get returns the value stored under key.
func (c Context) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// Set stores value under key.
func (c Context) Set(key string, value any) {
	c[key] = value
}

// GetString returns the value under key rendered as a string, or "" if the
// key is absent.
func (c Context) GetString(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return Stringify(v)
}

// Merge copies all entries of m into the context.
func (c Context) Merge(m map[string]any) {
	for k, v := range m {
		c[k] = v
	}
}

// StepResult is the recorded outcome of one step execution.
type StepResult struct {
	Name          string         `json:"name"`
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time"`

	// Response is the raw response handle for the final attempt. It is nil
	// when the step failed before a response was obtained, or was skipped.
	Response *Response `json:"-"`
}

// Response is the raw outcome of a dispatched HTTP request: enough to inspect
// status, headers, the final post-redirect URL, and the body, without holding
// the underlying connection open.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	FinalURL   string
	Body       []byte
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}
