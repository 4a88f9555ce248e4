// Package httpx provides the shared HTTP client construction and verbose
// request/response logging.
package httpx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const maxBodyLogSize = 1024

// DebugLogger writes request/response traces for verbose mode. A nil
// *DebugLogger is a no-op, so call sites need no guards.
type DebugLogger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewDebugLogger(out io.Writer) *DebugLogger {
	return &DebugLogger{out: out}
}

func (d *DebugLogger) LogRequest(stepName string, req *http.Request) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("\n>>> REQUEST: %s\n", stepName))
	buf.WriteString(fmt.Sprintf("  %s %s\n", req.Method, req.URL.String()))

	if len(req.Header) > 0 {
		buf.WriteString("  Headers:\n")
		for name, values := range req.Header {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", name, strings.Join(values, ", ")))
		}
	}

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err == nil && len(body) > 0 {
			req.Body = io.NopCloser(bytes.NewReader(body))
			buf.WriteString(fmt.Sprintf("  Body: %s\n", truncateBody(body)))
		}
	}
	fmt.Fprint(d.out, buf.String())
}

func (d *DebugLogger) LogResponse(stepName string, statusCode int, header http.Header, body []byte, duration time.Duration) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("<<< RESPONSE: %s (%s)\n", stepName, duration.Round(time.Millisecond)))
	buf.WriteString(fmt.Sprintf("  Status: %d %s\n", statusCode, http.StatusText(statusCode)))

	if len(header) > 0 {
		buf.WriteString("  Headers:\n")
		for name, values := range header {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", name, strings.Join(values, ", ")))
		}
	}

	if len(body) > 0 {
		buf.WriteString(fmt.Sprintf("  Body: %s\n", truncateBody(body)))
	}
	fmt.Fprint(d.out, buf.String())
}

func (d *DebugLogger) LogError(stepName string, errMsg string, duration time.Duration) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "!!! ERROR: %s (%s)\n  %s\n",
		stepName, duration.Round(time.Millisecond), errMsg)
}

func truncateBody(body []byte) string {
	if len(body) <= maxBodyLogSize {
		return string(body)
	}
	return string(body[:maxBodyLogSize]) + fmt.Sprintf("... (truncated, %d bytes total)", len(body))
}
