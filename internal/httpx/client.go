package httpx

import (
	"net/http"
	"time"
)

// NewClient builds the shared HTTP client. Connections pool inside the
// transport; callers issue at most one in-flight request at a time.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
