package sequence

import (
	"context"

	"headerflow/internal/core"
)

// Sequence holds an ordered list of steps and runs them through an Executor.
//
// Steps execute strictly in registration order. Duplicate names are legal
// input: only the first occurrence under a name ever executes, and its result
// stays authoritative. A Sequence is not safe for concurrent Execute calls;
// the context and results of a run are owned by that run alone.
type Sequence struct {
	executor *Executor
	steps    []Step

	results map[string]*core.StepResult
	order   []string
	runCtx  core.Context
}

// New creates a Sequence driven by the given executor.
func New(executor *Executor) *Sequence {
	return &Sequence{
		executor: executor,
		results:  make(map[string]*core.StepResult),
		runCtx:   core.NewContext(),
	}
}

// AddStep appends a step. Beyond normalizing the method and clamping
// negative values, nothing is validated here: unknown dependencies and
// duplicate names surface at execution time, not registration time.
func (s *Sequence) AddStep(step Step) {
	step.normalize()
	s.steps = append(s.steps, step)
}

// Steps returns the registered step definitions in order.
func (s *Sequence) Steps() []Step {
	return s.steps
}

// Execute runs all steps in registration order and returns one result per
// step attempted, keyed by name. A failed step halts the run unless it is
// marked continue-on-failure; steps after the halt get no result at all.
// Cancelling ctx aborts the in-progress step and returns the results
// accumulated so far.
func (s *Sequence) Execute(ctx context.Context) map[string]*core.StepResult {
	s.results = make(map[string]*core.StepResult)
	s.order = s.order[:0]
	s.runCtx = core.NewContext()

	for _, step := range s.steps {
		if _, done := s.results[step.Name]; done {
			// Duplicate registration: the earlier result stands.
			continue
		}

		result := s.executor.ExecuteStep(ctx, step, s.results, s.runCtx)
		s.results[step.Name] = result
		s.order = append(s.order, step.Name)

		if !result.Success && !step.ContinueOnFailure {
			break
		}
	}
	return s.results
}

// Results returns the results of the most recent run.
func (s *Sequence) Results() map[string]*core.StepResult {
	return s.results
}

// Order returns the names of the steps attempted in the most recent run, in
// execution order.
func (s *Sequence) Order() []string {
	return s.order
}

// Context returns the shared run context of the most recent run.
func (s *Sequence) Context() core.Context {
	return s.runCtx
}
