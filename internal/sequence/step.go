// Package sequence implements the named-step HTTP sequence runner: steps
// declare dependencies on earlier steps, extract values from responses, and
// thread them to later requests through a shared context.
package sequence

import (
	"strings"
	"time"

	"headerflow/internal/core"
)

// MapFunc produces a field mapping from the run context at execution time.
type MapFunc func(core.Context) (map[string]any, error)

// ValueFunc produces a single field value from the run context.
type ValueFunc func(core.Context) (any, error)

// Condition gates a step. A false result, an error, or a panic during
// evaluation skips the step without failing it.
type Condition func(core.Context) (bool, error)

// Field is a tagged variant for the headers/params/data of a step: either a
// static mapping or a function of the run context. The zero Field resolves to
// an empty mapping.
type Field struct {
	static   map[string]any
	computed MapFunc
}

// Static builds a Field from a fixed mapping. String values are interpolated
// against the context at execution time; ValueFunc values are invoked with it.
func Static(m map[string]any) Field {
	return Field{static: m}
}

// StaticStrings builds a static Field from a plain string mapping.
func StaticStrings(m map[string]string) Field {
	if m == nil {
		return Field{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return Field{static: out}
}

// Computed builds a Field resolved by calling fn with the run context.
func Computed(fn MapFunc) Field {
	return Field{computed: fn}
}

// IsComputed reports whether the field resolves through a function.
func (f Field) IsComputed() bool { return f.computed != nil }

// StaticMap returns the underlying static mapping, or nil for computed and
// zero fields.
func (f Field) StaticMap() map[string]any { return f.static }

// Step describes one HTTP call in a sequence. Steps are immutable once added
// to a Sequence.
type Step struct {
	// Name is the dependency key and context namespace for this step.
	Name string

	// URL may contain {key} placeholders resolved against the context.
	URL string

	// Method is GET or POST; others are rejected at execution time.
	Method string

	Headers Field
	Params  Field
	Data    Field

	// DependsOn lists step names that must have succeeded before this step
	// runs. Dependencies must appear earlier in registration order: the
	// runner executes strictly in declaration order and never reorders, so
	// a forward dependency can never be satisfied.
	DependsOn []string

	// Condition, when set and evaluating false, records the step as a
	// successful skip without issuing a request.
	Condition Condition

	// Extract maps output key -> source path in the response body.
	Extract map[string]string

	// MaxRetries is the number of additional attempts after the first
	// failure.
	MaxRetries int

	// Delay is waited out immediately before executing, after dependency
	// and condition checks.
	Delay time.Duration

	// ContinueOnFailure lets the run proceed past this step's failure.
	ContinueOnFailure bool
}

// StepOption configures a Step built with NewStep.
type StepOption func(*Step)

// NewStep builds a Step with the documented defaults: method GET, one retry,
// no delay. A raw Step literal passed to AddStep carries its zero values
// instead (zero retries), since the struct cannot distinguish unset from zero.
func NewStep(name, url string, opts ...StepOption) Step {
	s := Step{
		Name:       name,
		URL:        url,
		Method:     "GET",
		MaxRetries: 1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithMethod(method string) StepOption {
	return func(s *Step) { s.Method = method }
}

func WithHeaders(f Field) StepOption {
	return func(s *Step) { s.Headers = f }
}

func WithParams(f Field) StepOption {
	return func(s *Step) { s.Params = f }
}

func WithData(f Field) StepOption {
	return func(s *Step) { s.Data = f }
}

func DependsOn(names ...string) StepOption {
	return func(s *Step) { s.DependsOn = names }
}

func When(cond Condition) StepOption {
	return func(s *Step) { s.Condition = cond }
}

func WithExtract(rules map[string]string) StepOption {
	return func(s *Step) { s.Extract = rules }
}

func WithRetries(n int) StepOption {
	return func(s *Step) { s.MaxRetries = n }
}

func WithDelay(d time.Duration) StepOption {
	return func(s *Step) { s.Delay = d }
}

func ContinueOnFailure() StepOption {
	return func(s *Step) { s.ContinueOnFailure = true }
}

// normalize applies the registration-time defaults from AddStep: method is
// upper-cased and defaulted to GET, negative retry counts are clamped.
// Nothing else is validated at registration time.
func (s *Step) normalize() {
	s.Method = strings.ToUpper(strings.TrimSpace(s.Method))
	if s.Method == "" {
		s.Method = "GET"
	}
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.Delay < 0 {
		s.Delay = 0
	}
}
