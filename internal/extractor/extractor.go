// Package extractor implements single-shot header capture: given a URL,
// report the request headers that would be (or were) sent and the response
// headers received.
package extractor

import (
	"context"
	"net/http"
	"strings"

	"headerflow/internal/config"
)

// Extractor captures request/response headers for single URLs using a shared
// configured client.
type Extractor struct {
	client        *http.Client
	defaults      map[string]string
	comprehensive map[string]string
}

// New builds an Extractor. The client carries the request timeout; header
// sets come from the resolved configuration.
func New(client *http.Client, cfg *config.Config) *Extractor {
	return &Extractor{
		client:        client,
		defaults:      cfg.DefaultHeaders,
		comprehensive: cfg.ComprehensiveHeaders,
	}
}

// Capture is the outcome of one URL: the headers sent, the headers received,
// and the terminal status. Status is "prepared", "success", or "error".
type Capture struct {
	URL             string            `json:"url"`
	StatusCode      int               `json:"status_code,omitempty"`
	RequestHeaders  map[string]string `json:"request_headers_sent,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers_received,omitempty"`
	Error           string            `json:"error,omitempty"`
	Status          string            `json:"status"`
}

// Options adjust a capture.
type Options struct {
	// Custom headers override everything else.
	Custom map[string]string
	// Comprehensive applies the full browser-imitating header set when no
	// custom headers are given.
	Comprehensive bool
}

// Prepare builds the request for rawURL and reports the headers that would
// be sent, without dispatching it.
func (e *Extractor) Prepare(rawURL string, opts Options) Capture {
	target := NormalizeURL(rawURL)

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return Capture{URL: target, Error: err.Error(), Status: "error"}
	}
	e.applyHeaders(req, opts)

	return Capture{
		URL:            target,
		RequestHeaders: flattenHeader(req.Header),
		Status:         "prepared",
	}
}

// Do sends a GET to rawURL and captures both the request headers sent and
// the response headers received. A non-2xx status is still a capture, not an
// error; only transport failures report Status "error".
func (e *Extractor) Do(ctx context.Context, rawURL string, opts Options) Capture {
	target := NormalizeURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Capture{URL: target, Error: err.Error(), Status: "error"}
	}
	e.applyHeaders(req, opts)

	resp, err := e.client.Do(req)
	if err != nil {
		return Capture{
			URL:            target,
			Error:          err.Error(),
			RequestHeaders: flattenHeader(req.Header),
			Status:         "error",
		}
	}
	defer resp.Body.Close()

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Capture{
		URL:             finalURL,
		StatusCode:      resp.StatusCode,
		RequestHeaders:  flattenHeader(req.Header),
		ResponseHeaders: flattenHeader(resp.Header),
		Status:          "success",
	}
}

// applyHeaders layers configured defaults, the optional comprehensive set,
// and per-call custom headers, later layers winning.
func (e *Extractor) applyHeaders(req *http.Request, opts Options) {
	for k, v := range e.defaults {
		req.Header.Set(k, v)
	}
	if opts.Comprehensive && len(opts.Custom) == 0 {
		for k, v := range e.comprehensive {
			req.Header.Set(k, v)
		}
	}
	for k, v := range opts.Custom {
		req.Header.Set(k, v)
	}
}

// NormalizeURL prefixes bare hostnames with https://.
func NormalizeURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, values := range h {
		out[k] = strings.Join(values, ", ")
	}
	return out
}
