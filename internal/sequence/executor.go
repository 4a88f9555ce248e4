package sequence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"headerflow/internal/config"
	"headerflow/internal/core"
	"headerflow/internal/httpx"
	"headerflow/internal/ratelimit"
	"headerflow/internal/template"
)

// maxBodySize limits how much of a response body is read for extraction.
const maxBodySize = 10 * 1024 * 1024 // 10MB

// Executor resolves one step against the run context and performs the
// request with bounded retry.
type Executor struct {
	client  *http.Client
	clock   core.Clock
	debug   *httpx.DebugLogger
	limiter *ratelimit.Limiter

	userAgent string
	accept    string
	backoff   time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock substitutes the clock used for delays, backoff, and timing.
func WithClock(c core.Clock) ExecutorOption {
	return func(e *Executor) { e.clock = c }
}

// WithDebug enables verbose request/response logging.
func WithDebug(d *httpx.DebugLogger) ExecutorOption {
	return func(e *Executor) { e.debug = d }
}

// WithLimiter caps dispatch rate across attempts.
func WithLimiter(l *ratelimit.Limiter) ExecutorOption {
	return func(e *Executor) { e.limiter = l }
}

// WithBackoff sets the fixed pause between retry attempts.
func WithBackoff(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.backoff = d }
}

// WithHeaderDefaults sets the User-Agent and Accept values inserted into
// requests that lack them.
func WithHeaderDefaults(userAgent, accept string) ExecutorOption {
	return func(e *Executor) {
		e.userAgent = userAgent
		e.accept = accept
	}
}

// NewExecutor builds an Executor around a configured HTTP client. The client
// carries the per-request timeout; the executor adds no deadline of its own.
func NewExecutor(client *http.Client, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:    client,
		clock:     core.RealClock{},
		userAgent: config.DefaultUserAgent,
		accept:    config.DefaultAccept,
		backoff:   time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteStep runs one step: dependency check, condition, delay, dynamic
// field resolution, dispatch with retry, extraction, context merge. It
// always returns a result; the result's Error field carries any failure.
// ExecutionTime spans the whole step regardless of retries.
func (e *Executor) ExecuteStep(ctx context.Context, step Step, results map[string]*core.StepResult, runCtx core.Context) *core.StepResult {
	start := e.clock.Now()
	result := &core.StepResult{Name: step.Name, Data: make(map[string]any)}
	finish := func() *core.StepResult {
		result.ExecutionTime = e.clock.Since(start)
		return result
	}
	fail := func(err error) *core.StepResult {
		result.Success = false
		result.Error = err.Error()
		e.debug.LogError(step.Name, result.Error, e.clock.Since(start))
		return finish()
	}

	// Dependency check: first missing or failed dependency aborts with zero
	// requests made.
	for _, dep := range step.DependsOn {
		prior, ok := results[dep]
		if !ok || !prior.Success {
			return fail(fmt.Errorf("%w: %q", ErrDependency, dep))
		}
	}

	// Condition check: evaluation errors fail closed into a skip. A skipped
	// step is a successful one, so dependents are not blocked.
	if step.Condition != nil && !evalCondition(step.Condition, runCtx) {
		result.Success = true
		result.Data["skipped"] = true
		return finish()
	}

	if step.Delay > 0 {
		if err := e.clock.Sleep(ctx, step.Delay); err != nil {
			return fail(err)
		}
	}

	headers, err := step.Headers.Resolve(runCtx)
	if err != nil {
		return fail(fmt.Errorf("resolving headers: %w", err))
	}
	params, err := step.Params.Resolve(runCtx)
	if err != nil {
		return fail(fmt.Errorf("resolving params: %w", err))
	}
	data, err := step.Data.Resolve(runCtx)
	if err != nil {
		return fail(fmt.Errorf("resolving data: %w", err))
	}

	target := template.Interpolate(step.URL, runCtx)
	if err := validateURL(target); err != nil {
		return fail(err)
	}

	if step.Method != http.MethodGet && step.Method != http.MethodPost {
		return fail(fmt.Errorf("%w: %s", ErrUnsupportedMethod, step.Method))
	}

	e.applyHeaderDefaults(headers)

	resp, err := e.dispatch(ctx, step, target, headers, params, data)
	if err != nil {
		return fail(err)
	}

	if len(step.Extract) > 0 {
		if doc, ok := template.ParseBody(resp.Body); ok {
			extracted := template.Extract(doc, step.Extract)
			runCtx.Merge(extracted)
			for k, v := range extracted {
				result.Data[k] = v
			}
		}
	}

	result.Success = true
	result.Response = resp
	runCtx.Set(step.Name+"_response", resp)
	return finish()
}

// dispatch performs the request with up to MaxRetries+1 sequential attempts,
// pausing the configured backoff between them.
func (e *Executor) dispatch(ctx context.Context, step Step, target string, headers, params, data map[string]any) (*core.Response, error) {
	attempts := step.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := e.clock.Sleep(ctx, e.backoff); err != nil {
				return nil, err
			}
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := e.attempt(ctx, step, target, headers, params, data)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Cancellation is not worth retrying.
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (e *Executor) attempt(ctx context.Context, step Step, target string, headers, params, data map[string]any) (*core.Response, error) {
	start := e.clock.Now()

	var body io.Reader
	var sentBody []byte
	if step.Method == http.MethodPost && len(data) > 0 {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding body: %v", ErrRequest, err)
		}
		sentBody = encoded
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, step.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	if step.Method == http.MethodGet && len(params) > 0 {
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, core.Stringify(v))
		}
		req.URL.RawQuery = q.Encode()
	}

	for k, v := range headers {
		req.Header.Set(k, core.Stringify(v))
	}
	if sentBody != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	e.debug.LogRequest(step.Name, req)

	httpResp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer httpResp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	_, _ = io.Copy(io.Discard, httpResp.Body) // drain for connection reuse

	e.debug.LogResponse(step.Name, httpResp.StatusCode, httpResp.Header, respBody, e.clock.Since(start))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrRequest, httpResp.Status)
	}

	finalURL := target
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	return &core.Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		FinalURL:   finalURL,
		Body:       respBody,
	}, nil
}

// applyHeaderDefaults inserts the configured User-Agent and Accept values
// when the resolved headers lack them.
func (e *Executor) applyHeaderDefaults(headers map[string]any) {
	if e.userAgent != "" && !hasHeader(headers, "User-Agent") {
		headers["User-Agent"] = e.userAgent
	}
	if e.accept != "" && !hasHeader(headers, "Accept") {
		headers["Accept"] = e.accept
	}
}

func hasHeader(headers map[string]any, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func validateURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, target)
	}
	return nil
}

// evalCondition evaluates a gating predicate fail-closed: an error or panic
// counts as false.
func evalCondition(cond Condition, runCtx core.Context) (pass bool) {
	defer func() {
		if recover() != nil {
			pass = false
		}
	}()
	ok, err := cond(runCtx)
	if err != nil {
		return false
	}
	return ok
}

// Resolve materializes a field against the run context. Computed fields are
// invoked once; a function error is a hard failure of the step. Inside a
// static mapping, ValueFunc entries are invoked, strings are interpolated,
// and everything else passes through unchanged.
func (f Field) Resolve(runCtx core.Context) (map[string]any, error) {
	if f.computed != nil {
		m, err := f.computed(runCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDynamicField, err)
		}
		if m == nil {
			m = make(map[string]any)
		}
		return m, nil
	}

	if f.static == nil {
		return make(map[string]any), nil
	}

	out := make(map[string]any, len(f.static))
	for k, v := range f.static {
		switch t := v.(type) {
		case ValueFunc:
			val, err := t(runCtx)
			if err != nil {
				return nil, fmt.Errorf("%w: key %q: %v", ErrDynamicField, k, err)
			}
			out[k] = val
		case func(core.Context) (any, error):
			val, err := t(runCtx)
			if err != nil {
				return nil, fmt.Errorf("%w: key %q: %v", ErrDynamicField, k, err)
			}
			out[k] = val
		case string:
			out[k] = template.Interpolate(t, runCtx)
		default:
			out[k] = v
		}
	}
	return out, nil
}
